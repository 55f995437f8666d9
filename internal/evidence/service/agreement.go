package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/canonhash"
	"github.com/probatio/probatio/pkg/idx"
	"github.com/probatio/probatio/pkg/slogx"
)

// AgreementService drives the agreement-signing workflow:
// pending -> terms_accepted -> otp_verified -> signed.
//
// Every mutating method follows the same shape: resolve the token, apply the
// pure transition to the freshly-read aggregate, then commit the mutation and
// its audit event in one transaction with a compare-and-swap on the
// precondition status.
type AgreementService struct {
	Store  store.Store
	OTP    *OTPService
	Anchor *AnchorService
}

// SignatureResult is what a finalized signature hands back to the signer.
type SignatureResult struct {
	DocumentID string
	Hash       string
	SignedAt   time.Time
}

func (s *AgreementService) load(ctx context.Context, raw string, actor domain.Actor, now time.Time) (domain.Document, domain.Token, error) {
	doc, token, err := loadByToken(ctx, s.Store, raw, now)
	if err != nil {
		return domain.Document{}, domain.Token{}, err
	}
	if doc.Kind != domain.KindAgreement {
		return domain.Document{}, domain.Token{}, ErrValidation
	}
	if err := guardExpiry(ctx, s.Store, doc, token, actor, now); err != nil {
		return domain.Document{}, domain.Token{}, err
	}
	return doc, token, nil
}

// AcceptTerms records the signer's acceptance. Re-acceptance is idempotent
// and preserves the original timestamp, but every invocation lands in the
// audit trail; the repeat is marked with already_accepted.
func (s *AgreementService) AcceptTerms(ctx context.Context, raw string, actor domain.Actor) (domain.Document, bool, error) {
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return domain.Document{}, false, err
	}

	mutated, already, err := doc.AcceptTerms(now)
	if err != nil {
		return domain.Document{}, false, err
	}
	if already {
		// No state change to commit, but the access itself is evidence.
		if aerr := s.Store.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionTermsAccepted,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata:   map[string]any{"already_accepted": true},
			RecordedAt: now,
		}); aerr != nil {
			return domain.Document{}, false, aerr
		}
		return doc, true, nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionTermsAccepted,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, false, err
	}

	return mutated, false, nil
}

// RequestOTP dispatches a fresh passcode to the signer's out-of-band address.
// Only valid once terms are accepted and before verification; re-requesting
// supersedes the previous code.
func (s *AgreementService) RequestOTP(ctx context.Context, raw string, actor domain.Actor) error {
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusTermsAccepted {
		return domain.ErrStateConflict
	}

	return s.OTP.Issue(ctx, doc, actor)
}

// VerifyOTP redeems a submitted passcode and advances the document to
// otp_verified. The redemption and the transition commit atomically so a
// code can never be consumed without the state advancing, or vice versa.
func (s *AgreementService) VerifyOTP(ctx context.Context, raw, code string, actor domain.Actor) (domain.Document, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return domain.Document{}, err
	}

	mutated, err := doc.MarkOTPVerified(now)
	if err != nil {
		return domain.Document{}, err
	}

	record, err := s.OTP.Check(ctx, doc.ID, code, now)
	if err != nil {
		if errors.Is(err, ErrOTPInvalid) {
			// The rejection itself is evidence; record it outside the
			// (never-started) transition transaction.
			if aerr := s.Store.AuditEvents().Append(ctx, domain.AuditEvent{
				ID:         idx.New().String(),
				DocumentID: doc.ID,
				Action:     domain.ActionOTPRejected,
				Origin:     actor.Origin,
				Agent:      actor.Agent,
				RecordedAt: now,
			}); aerr != nil {
				return domain.Document{}, aerr
			}
		}
		return domain.Document{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPs().MarkOTPUsed(ctx, record.ID); err != nil {
			// Concurrent redemption of the same code.
			if errors.Is(err, store.ErrConflict) {
				return ErrOTPInvalid
			}
			return err
		}
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionOTPVerified,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, err
	}

	log.Info("otp verified", slog.String("document_id", doc.ID))
	return mutated, nil
}

// FinalizeSignature is the terminal transition of the agreement flow. It
// computes the canonical document hash, obtains the authority timestamp (a
// hard precondition: no stamp, no signature), then commits the signed state,
// the consumed token, the proof row, and the outbox entry in one transaction.
func (s *AgreementService) FinalizeSignature(ctx context.Context, raw string, actor domain.Actor) (SignatureResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	doc, token, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return SignatureResult{}, err
	}

	// 1. Idempotent replay: hand the recorded result back unchanged.
	if doc.Status == domain.StatusSigned {
		return SignatureResult{DocumentID: doc.ID, Hash: doc.DocumentHash, SignedAt: *doc.SignedAt}, nil
	}

	// 2. Canonical hash over the evidentiary fields, bound to the bearer
	// credential that authorized the signature.
	fields := doc.EvidentiaryFields()
	fields["signature_token_fingerprint"] = token.TokenHash
	hash, err := canonhash.Hash(fields)
	if err != nil {
		return SignatureResult{}, fmt.Errorf("failed to compute document hash: %w", err)
	}

	mutated, _, err := doc.FinalizeSignature(now, hash)
	if err != nil {
		return SignatureResult{}, err
	}

	// 3. Authority stamp before the commit. Failure aborts the transition.
	stamp, err := s.Anchor.Stamp(ctx, hash)
	if err != nil {
		return SignatureResult{}, err
	}

	// 4. Commit state, token consumption, audit, proof, and outbox together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		if err := tx.Tokens().ConsumeToken(ctx, token.ID); err != nil {
			return mapCASError(err)
		}
		if err := tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionSignatureFinalized,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata:   map[string]any{"hash": hash},
			RecordedAt: now,
		}); err != nil {
			return err
		}
		return s.Anchor.RecordWithin(ctx, tx, doc.ID, hash, stamp, now)
	})
	if err != nil {
		return SignatureResult{}, err
	}

	log.Info("signature finalized",
		slog.String("document_id", doc.ID),
		slog.String("hash", hash),
	)

	// 5. Best-effort immediate ledger submission; the sweep retries the rest.
	if err := s.Anchor.Reconcile(ctx); err != nil {
		log.Warn("post-signature ledger reconcile failed", slog.String("error", err.Error()))
	}

	return SignatureResult{DocumentID: doc.ID, Hash: hash, SignedAt: now}, nil
}

// mapCASError converts a compare-and-swap miss into the domain's conflict
// sentinel so callers see one error for "someone got there first".
func mapCASError(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return domain.ErrStateConflict
	}
	return err
}
