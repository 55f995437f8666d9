package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/cryptox"
	"github.com/probatio/probatio/pkg/idx"
	"github.com/probatio/probatio/pkg/slogx"
)

// DefaultOTPTTL is the passcode redemption window.
const DefaultOTPTTL = 10 * time.Minute

type OTPService struct {
	Store    store.Store
	Notifier Notifier
	TTL      time.Duration
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

// Issue generates a fresh 6-digit passcode for the document, supersedes any
// earlier live code, and dispatches it out-of-band to the recipient address.
// The raw code is never persisted and never returned to the caller.
func (s *OTPService) Issue(ctx context.Context, doc domain.Document, actor domain.Actor) error {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Generate the code and its stored fingerprint.
	code, err := cryptox.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp code: %w", err)
	}

	record := domain.OTPRecord{
		ID:         idx.New().String(),
		DocumentID: doc.ID,
		CodeHash:   cryptox.FingerprintToken(code),
		ExpiresAt:  now.Add(s.ttl()),
		CreatedAt:  now,
	}

	// 2. Commit supersede + insert + audit atomically so at most one code is
	// redeemable at any moment.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPs().SupersedeActive(ctx, doc.ID); err != nil {
			return err
		}
		if err := tx.OTPs().CreateOTP(ctx, record); err != nil {
			return err
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionOTPIssued,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			Metadata:   map[string]any{"expires_at": record.ExpiresAt.Format(time.RFC3339)},
			RecordedAt: now,
		})
	})
	if err != nil {
		return err
	}

	// 3. Dispatch after commit. The committed code stays redeemable even if
	// dispatch fails; the caller may simply request a new one.
	err = s.Notifier.Notify(ctx, Notification{
		Recipient:  doc.Recipient,
		DocumentID: doc.ID,
		Template:   TemplateOTPCode,
		Variables:  map[string]string{"code": code},
	})
	if err != nil {
		log.Error("otp dispatch failed",
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to dispatch otp: %w", err)
	}

	log.Debug("otp issued", slog.String("document_id", doc.ID))
	return nil
}

// Check compares a submitted code against the document's live passcode record
// without consuming it. Every failure collapses to ErrOTPInvalid so the caller
// cannot distinguish wrong, expired, and already-used codes; the true reason
// is logged. The returned record id is what the caller marks used inside its
// transition transaction.
func (s *OTPService) Check(ctx context.Context, documentID, code string, now time.Time) (domain.OTPRecord, error) {
	log := slogx.FromContext(ctx)

	record, err := s.Store.OTPs().GetRedeemableByDocument(ctx, documentID, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("otp check failed, no redeemable code",
				slog.String("document_id", documentID),
			)
			return domain.OTPRecord{}, ErrOTPInvalid
		}
		return domain.OTPRecord{}, fmt.Errorf("failed to fetch otp record: %w", err)
	}

	if !cryptox.FingerprintsEqual(record.CodeHash, cryptox.FingerprintToken(code)) {
		log.Warn("otp check failed, code mismatch",
			slog.String("document_id", documentID),
		)
		return domain.OTPRecord{}, ErrOTPInvalid
	}

	return record, nil
}
