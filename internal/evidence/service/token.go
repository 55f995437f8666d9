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

// DefaultTokenTTL is the access window when the caller does not specify one.
const DefaultTokenTTL = 7 * 24 * time.Hour

type TokenService struct {
	Store store.Store
}

// Issue mints the single access token for a document and returns the raw
// value once; only its fingerprint is stored. A document with a live token
// cannot get a second one.
func (s *TokenService) Issue(ctx context.Context, documentID string, ttl time.Duration) (string, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	// 1. The owning document must exist and be open.
	doc, err := s.Store.Documents().GetDocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	if doc.Status.Terminal() {
		return "", domain.ErrDocumentTerminal
	}

	// 2. One active token per document at a time.
	if _, err := s.Store.Tokens().GetActiveTokenByDocument(ctx, documentID, now); err == nil {
		log.Warn("token issuance refused, active token exists",
			slog.String("document_id", documentID),
		)
		return "", ErrTokenAlreadyActive
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to check active token: %w", err)
	}

	// 3. Generate random value and persist the fingerprint.
	raw, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := domain.Token{
		ID:         idx.New().String(),
		DocumentID: documentID,
		TokenHash:  cryptox.FingerprintToken(raw),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().CreateToken(ctx, token); err != nil {
			return err
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: documentID,
			Action:     domain.ActionTokenIssued,
			Metadata:   map[string]any{"expires_at": token.ExpiresAt.Format(time.RFC3339)},
			RecordedAt: now,
		})
	})
	if err != nil {
		return "", err
	}

	log.Debug("token issued",
		slog.String("document_id", documentID),
		slog.Time("expires_at", token.ExpiresAt),
	)

	// 4. Return the raw token (not the fingerprint).
	return raw, nil
}

// Resolve looks a raw token up and returns the owning document. It is
// read-only with respect to workflow state, but every call appends a
// link_opened audit event, successful or not, because every access to the
// private step is itself evidence.
func (s *TokenService) Resolve(ctx context.Context, raw string, actor domain.Actor) (domain.Document, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	token, err := s.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No document to attach an audit event to; the access still
			// leaves a server-side trace.
			log.Warn("unknown token presented", slog.String("origin", actor.Origin))
			return domain.Document{}, ErrTokenNotFound
		}
		return domain.Document{}, fmt.Errorf("failed to fetch token: %w", err)
	}

	doc, err := s.Store.Documents().GetDocumentByID(ctx, token.DocumentID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}

	outcome := "ok"
	var resolveErr error
	switch {
	case now.After(token.ExpiresAt) || doc.Expired(now):
		outcome = "token_expired"
		resolveErr = ErrTokenExpired
	case doc.Status.Terminal():
		outcome = "document_terminal"
		resolveErr = domain.ErrDocumentTerminal
	}

	if err := s.Store.AuditEvents().Append(ctx, domain.AuditEvent{
		ID:         idx.New().String(),
		DocumentID: doc.ID,
		Action:     domain.ActionLinkOpened,
		Origin:     actor.Origin,
		Agent:      actor.Agent,
		Metadata:   map[string]any{"outcome": outcome},
		RecordedAt: now,
	}); err != nil {
		return domain.Document{}, fmt.Errorf("failed to append audit event: %w", err)
	}

	if resolveErr != nil {
		return domain.Document{}, resolveErr
	}
	return doc, nil
}

// loadByToken fetches the token and document pair for a mutating operation.
// Expiry is handled by the caller via expireDocument so the lapse itself is
// committed with an audit entry.
func loadByToken(ctx context.Context, st store.Store, raw string, now time.Time) (domain.Document, domain.Token, error) {
	token, err := st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Document{}, domain.Token{}, ErrTokenNotFound
		}
		return domain.Document{}, domain.Token{}, fmt.Errorf("failed to fetch token: %w", err)
	}

	doc, err := st.Documents().GetDocumentByID(ctx, token.DocumentID)
	if err != nil {
		return domain.Document{}, domain.Token{}, fmt.Errorf("failed to fetch document: %w", err)
	}

	return doc, token, nil
}

// expireDocument flips a lapsed document into the expired sink. The audit
// entry is the only other side effect, per the transition contract. Fails
// softly on a concurrent flip.
func expireDocument(ctx context.Context, st store.Store, doc domain.Document, actor domain.Actor, now time.Time) error {
	expired, err := doc.Expire(now)
	if err != nil {
		// Already terminal; nothing to record.
		return nil
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Documents().UpdateDocumentCAS(ctx, expired, doc.Status); err != nil {
			return err
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionExpired,
			Origin:     actor.Origin,
			Agent:      actor.Agent,
			RecordedAt: now,
		})
	})
	if errors.Is(err, store.ErrConflict) {
		// Another request expired it first.
		return nil
	}
	return err
}

// guardExpiry enforces the access window on every mutating operation: once
// now > expires_at, the operation fails with ErrTokenExpired after lazily
// committing the expired sink.
func guardExpiry(ctx context.Context, st store.Store, doc domain.Document, token domain.Token, actor domain.Actor, now time.Time) error {
	if !now.After(token.ExpiresAt) && !doc.Expired(now) {
		return nil
	}
	if err := expireDocument(ctx, st, doc, actor, now); err != nil {
		return err
	}
	return ErrTokenExpired
}
