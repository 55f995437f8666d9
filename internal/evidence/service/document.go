package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/idx"
	"github.com/probatio/probatio/pkg/slogx"
)

// DocumentService is the staff-facing surface: creating documents, issuing
// access tokens, inspecting trails and proofs, and revoking.
type DocumentService struct {
	Store  store.Store
	Tokens *TokenService
}

// CreateDocumentParams carries the staff-supplied material for a new document.
type CreateDocumentParams struct {
	Kind          domain.Kind
	EmployeeID    string
	EmployeeTaxID string
	Recipient     string
	Subject       string
	Body          string
	TokenTTL      time.Duration
}

func (p CreateDocumentParams) validate() error {
	if p.Kind != domain.KindAgreement && p.Kind != domain.KindRebuttal {
		return ErrValidation
	}
	if strings.TrimSpace(p.EmployeeID) == "" ||
		strings.TrimSpace(p.Recipient) == "" ||
		strings.TrimSpace(p.Subject) == "" ||
		strings.TrimSpace(p.Body) == "" {
		return ErrValidation
	}
	// Identity validation needs something to validate against.
	if p.Kind == domain.KindRebuttal && strings.TrimSpace(p.EmployeeTaxID) == "" {
		return ErrValidation
	}
	return nil
}

// CreateResult pairs the new document with its raw access token, the one and
// only time the raw value is available.
type CreateResult struct {
	Document domain.Document
	Token    string
}

// Create registers a new evidentiary document in pending state and issues its
// access token. The document's own expiry equals the token window: once it
// lapses, the workflow can only end in the expired sink.
func (s *DocumentService) Create(ctx context.Context, p CreateDocumentParams) (CreateResult, error) {
	log := slogx.FromContext(ctx)

	if err := p.validate(); err != nil {
		return CreateResult{}, err
	}

	ttl := p.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:            idx.New().String(),
		Kind:          p.Kind,
		Status:        domain.StatusPending,
		EmployeeID:    p.EmployeeID,
		EmployeeTaxID: p.EmployeeTaxID,
		Recipient:     p.Recipient,
		Subject:       p.Subject,
		Body:          p.Body,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Documents().CreateDocument(ctx, doc); err != nil {
		return CreateResult{}, fmt.Errorf("failed to create document: %w", err)
	}

	raw, err := s.Tokens.Issue(ctx, doc.ID, ttl)
	if err != nil {
		return CreateResult{}, err
	}

	log.Info("document created",
		slog.String("document_id", doc.ID),
		slog.String("kind", string(doc.Kind)),
	)

	return CreateResult{Document: doc, Token: raw}, nil
}

// Get returns a document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.Store.Documents().GetDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Document{}, ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	return doc, nil
}

// ListAudit returns the document's full audit trail in insertion order.
func (s *DocumentService) ListAudit(ctx context.Context, documentID string) ([]domain.AuditEvent, error) {
	if _, err := s.Get(ctx, documentID); err != nil {
		return nil, err
	}
	events, err := s.Store.AuditEvents().ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, nil
}

// GetProof returns the timestamp proof for a document. Absent until the
// terminal confirming transition has run.
func (s *DocumentService) GetProof(ctx context.Context, documentID string) (domain.TimestampProof, error) {
	if _, err := s.Get(ctx, documentID); err != nil {
		return domain.TimestampProof{}, err
	}
	proof, err := s.Store.Proofs().GetProofByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TimestampProof{}, ErrProofNotFound
		}
		return domain.TimestampProof{}, fmt.Errorf("failed to fetch proof: %w", err)
	}
	return proof, nil
}

// Revoke is the explicit staff-side terminal transition. The acting staff
// subject goes into the audit metadata, not the aggregate.
func (s *DocumentService) Revoke(ctx context.Context, documentID, staffID string) (domain.Document, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return domain.Document{}, err
	}

	mutated, err := doc.Revoke(now)
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
			Action:     domain.ActionRevoked,
			Metadata:   map[string]any{"staff_id": staffID},
			RecordedAt: now,
		})
	})
	if err != nil {
		return domain.Document{}, err
	}

	log.Info("document revoked",
		slog.String("document_id", doc.ID),
		slog.String("staff_id", staffID),
	)
	return mutated, nil
}
