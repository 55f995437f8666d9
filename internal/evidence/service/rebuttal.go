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

// RebuttalService drives the disciplinary-rebuttal workflow:
// pending -> identity_validated -> decision_recorded -> confirmed.
type RebuttalService struct {
	Store  store.Store
	Anchor *AnchorService
}

// ConfirmResult is what the confirming transition hands back.
type ConfirmResult struct {
	DocumentID  string
	Hash        string
	Decision    domain.Decision
	ConfirmedAt time.Time
}

func (s *RebuttalService) load(ctx context.Context, raw string, actor domain.Actor, now time.Time) (domain.Document, domain.Token, error) {
	doc, token, err := loadByToken(ctx, s.Store, raw, now)
	if err != nil {
		return domain.Document{}, domain.Token{}, err
	}
	if doc.Kind != domain.KindRebuttal {
		return domain.Document{}, domain.Token{}, ErrValidation
	}
	if err := guardExpiry(ctx, s.Store, doc, token, actor, now); err != nil {
		return domain.Document{}, domain.Token{}, err
	}
	return doc, token, nil
}

// ValidateIdentity proves the token bearer is the addressed employee by
// matching the submitted tax id. A mismatch changes no state but is itself
// committed to the audit trail.
func (s *RebuttalService) ValidateIdentity(ctx context.Context, raw, taxID string, actor domain.Actor) (domain.Document, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return domain.Document{}, err
	}

	mutated, err := doc.ValidateIdentity(taxID, now)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityMismatch) {
			log.Warn("identity mismatch", slog.String("document_id", doc.ID))
			if aerr := s.Store.AuditEvents().Append(ctx, domain.AuditEvent{
				ID:         idx.New().String(),
				DocumentID: doc.ID,
				Action:     domain.ActionIdentityMismatch,
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
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionIdentityValidated,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, err
	}

	return mutated, nil
}

// SaveDraft stores work-in-progress rebuttal text. Repeatable, no state
// change; each save replaces the previous draft and leaves an audit line.
func (s *RebuttalService) SaveDraft(ctx context.Context, raw, text string, actor domain.Actor) (domain.Document, error) {
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return domain.Document{}, err
	}

	mutated, err := doc.SaveDraft(text)
	if err != nil {
		return domain.Document{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionDraftSaved,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata:   map[string]any{"draft_length": len(text)},
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, err
	}

	return mutated, nil
}

// RecordDecision fixes the employee's choice: exercise the rebuttal right or
// decline it. Only reachable after identity validation.
func (s *RebuttalService) RecordDecision(ctx context.Context, raw string, decision domain.Decision, actor domain.Actor) (domain.Document, error) {
	now := time.Now().UTC()

	doc, _, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return domain.Document{}, err
	}

	mutated, err := doc.RecordDecision(decision, now)
	if err != nil {
		return domain.Document{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().UpdateDocumentCAS(ctx, mutated, doc.Status); err != nil {
			return mapCASError(err)
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionDecisionRecorded,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata:   map[string]any{"decision": string(decision)},
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, err
	}

	return mutated, nil
}

// Confirm is the terminal transition of the rebuttal flow. It fingerprints
// the affidavit (the sworn statement together with the declared decision and
// its supporting draft), computes the whole-document canonical hash over it,
// obtains the authority stamp, and commits everything atomically. Replays on
// a confirmed document return the recorded result; a replay's affidavit text
// is discarded, the sworn record is whatever was committed first.
func (s *RebuttalService) Confirm(ctx context.Context, raw, affidavitText string, actor domain.Actor) (ConfirmResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	doc, token, err := s.load(ctx, raw, actor, now)
	if err != nil {
		return ConfirmResult{}, err
	}

	if doc.Status == domain.StatusConfirmed {
		return ConfirmResult{
			DocumentID:  doc.ID,
			Hash:        doc.DocumentHash,
			Decision:    doc.Decision,
			ConfirmedAt: *doc.ConfirmedAt,
		}, nil
	}

	// 1. Affidavit fingerprint: the sworn statement and what it attests to.
	affidavitHash, err := canonhash.Hash(map[string]any{
		"document_id":           doc.ID,
		"employee_id":           doc.EmployeeID,
		"decision":              string(doc.Decision),
		"affidavit_text":        affidavitText,
		"draft_text":            doc.DraftText,
		"identity_validated_at": timestampOrEmpty(doc.IdentityValidatedAt),
	})
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to compute affidavit hash: %w", err)
	}

	// 2. Whole-document hash covers the affidavit fingerprint.
	fields := doc.EvidentiaryFields()
	fields["affidavit_hash"] = affidavitHash
	docHash, err := canonhash.Hash(fields)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to compute document hash: %w", err)
	}

	mutated, _, err := doc.Confirm(now, affidavitText, affidavitHash, docHash)
	if err != nil {
		return ConfirmResult{}, err
	}

	// 3. Authority stamp is a hard precondition of confirmation.
	stamp, err := s.Anchor.Stamp(ctx, docHash)
	if err != nil {
		return ConfirmResult{}, err
	}

	// 4. One transaction: state, token consumption, audit, proof, outbox.
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
			Action:     domain.ActionConfirmed,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata: map[string]any{
				"decision": string(doc.Decision),
				"hash":     docHash,
			},
			RecordedAt: now,
		}); err != nil {
			return err
		}
		return s.Anchor.RecordWithin(ctx, tx, doc.ID, docHash, stamp, now)
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	log.Info("rebuttal confirmed",
		slog.String("document_id", doc.ID),
		slog.String("decision", string(doc.Decision)),
		slog.String("hash", docHash),
	)

	if err := s.Anchor.Reconcile(ctx); err != nil {
		log.Warn("post-confirm ledger reconcile failed", slog.String("error", err.Error()))
	}

	return ConfirmResult{
		DocumentID:  doc.ID,
		Hash:        docHash,
		Decision:    doc.Decision,
		ConfirmedAt: now,
	}, nil
}

func timestampOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
