package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/idx"
	"github.com/probatio/probatio/pkg/slogx"
)

// AuthorityStamp is what the trusted timestamp authority returns for a hash.
type AuthorityStamp struct {
	Timestamp  time.Time
	ProofToken string
	URL        string
}

// AuthorityClient is the synchronous half of dual anchoring. A confirming
// transition cannot complete without a stamp, so callers treat its errors as
// fatal to the transition.
type AuthorityClient interface {
	Stamp(ctx context.Context, hash string) (AuthorityStamp, error)
}

// LedgerClient is the deferred half: submission may fail and be retried from
// the outbox without blocking the workflow.
type LedgerClient interface {
	Submit(ctx context.Context, documentID, hash string) (proofBlob string, err error)
}

// AnchorService binds a confirmed document hash to the two independent
// timestamp sources. The authority stamp is acquired before the confirming
// transaction commits; the ledger proof is captured through a durable outbox
// so a crash or ledger outage never loses the obligation.
type AnchorService struct {
	Store     store.Store
	Authority AuthorityClient
	Ledger    LedgerClient
}

// Stamp obtains the authority half for a hash. Called before the confirming
// transaction: if the authority is down, the whole transition fails and the
// caller may retry.
func (s *AnchorService) Stamp(ctx context.Context, hash string) (AuthorityStamp, error) {
	stamp, err := s.Authority.Stamp(ctx, hash)
	if err != nil {
		return AuthorityStamp{}, fmt.Errorf("%w: %w", ErrAnchorUnavailable, err)
	}
	return stamp, nil
}

// RecordWithin persists the proof row and the ledger outbox entry inside the
// caller's confirming transaction. The unique document constraint on proofs
// makes anchoring exactly-once even under a concurrent confirm.
func (s *AnchorService) RecordWithin(
	ctx context.Context,
	tx store.Tx,
	documentID, hash string,
	stamp AuthorityStamp,
	now time.Time,
) error {
	proof := domain.TimestampProof{
		ID:                 idx.New().String(),
		DocumentID:         documentID,
		Hash:               hash,
		AuthorityTimestamp: stamp.Timestamp,
		AuthorityProof:     stamp.ProofToken,
		AuthorityURL:       stamp.URL,
		LedgerState:        domain.LedgerPending,
		CreatedAt:          now,
	}
	if err := tx.Proofs().CreateProof(ctx, proof); err != nil {
		return err
	}

	if err := tx.LedgerOutbox().Enqueue(ctx, domain.OutboxEntry{
		ID:         idx.New().String(),
		DocumentID: documentID,
		Hash:       hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}

	return tx.AuditEvents().Append(ctx, domain.AuditEvent{
		ID:         idx.New().String(),
		DocumentID: documentID,
		Action:     domain.ActionAnchorRequested,
		Metadata:   map[string]any{"hash": hash},
		RecordedAt: now,
	})
}

// SubmitLedger pushes one outbox entry to the ledger and, on success, upgrades
// the proof row and retires the entry. Failures only bump the attempt counter;
// Reconcile picks the entry up again.
func (s *AnchorService) SubmitLedger(ctx context.Context, entry domain.OutboxEntry) error {
	log := slogx.FromContext(ctx)

	blob, err := s.Ledger.Submit(ctx, entry.DocumentID, entry.Hash)
	if err != nil {
		log.Warn("ledger submission failed",
			slog.String("document_id", entry.DocumentID),
			slog.Int("attempts", entry.Attempts+1),
			slog.String("error", err.Error()),
		)
		if rerr := s.Store.LedgerOutbox().RecordAttempt(ctx, entry.ID, err.Error()); rerr != nil {
			return rerr
		}
		return fmt.Errorf("%w: %w", ErrAnchorUnavailable, err)
	}

	now := time.Now().UTC()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Proofs().MarkLedgerAnchored(ctx, entry.DocumentID, blob, now); err != nil {
			// A concurrent submitter already captured the proof; retire the
			// entry anyway.
			if !errors.Is(err, store.ErrConflict) {
				return err
			}
		}
		if err := tx.LedgerOutbox().MarkDone(ctx, entry.ID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil
			}
			return err
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: entry.DocumentID,
			Action:     domain.ActionLedgerAnchored,
			RecordedAt: now,
		})
	})
}

// Reconcile drains pending outbox entries, oldest first. Invoked right after
// a confirming transition for the common immediate-success path, and by the
// background sweep for retries.
func (s *AnchorService) Reconcile(ctx context.Context) error {
	entries, err := s.Store.LedgerOutbox().ListPending(ctx, 50)
	if err != nil {
		return fmt.Errorf("failed to list pending anchors: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Keep going on per-entry failures; each one has its own retry state.
		_ = s.SubmitLedger(ctx, entry)
	}
	return nil
}
