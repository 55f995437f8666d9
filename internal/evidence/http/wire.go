package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/pkg/httpx"
	"github.com/probatio/probatio/pkg/slogx"
)

// DocumentResponse is the wire shape of a document aggregate. The recipient
// address and tax id never leave the service.
type DocumentResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Decision string `json:"decision,omitempty"`

	TermsAcceptedAt     *time.Time `json:"terms_accepted_at,omitempty"`
	OTPVerifiedAt       *time.Time `json:"otp_verified_at,omitempty"`
	SignedAt            *time.Time `json:"signed_at,omitempty"`
	IdentityValidatedAt *time.Time `json:"identity_validated_at,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`

	DraftText    string `json:"draft_text,omitempty"`
	DocumentHash string `json:"document_hash,omitempty"`

	EscalationTier string `json:"escalation_tier,omitempty"`
	DeliveryStatus string `json:"delivery_status,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toDocumentResponse(d domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:                  d.ID,
		Kind:                string(d.Kind),
		Status:              string(d.Status),
		Subject:             d.Subject,
		Body:                d.Body,
		Decision:            string(d.Decision),
		TermsAcceptedAt:     d.TermsAcceptedAt,
		OTPVerifiedAt:       d.OTPVerifiedAt,
		SignedAt:            d.SignedAt,
		IdentityValidatedAt: d.IdentityValidatedAt,
		ConfirmedAt:         d.ConfirmedAt,
		DraftText:           d.DraftText,
		DocumentHash:        d.DocumentHash,
		DeliveryStatus:      string(d.Delivery),
		ExpiresAt:           d.ExpiresAt,
		CreatedAt:           d.CreatedAt,
	}
	if d.EscalationTier != domain.TierNone {
		resp.EscalationTier = d.EscalationTier.Label()
	}
	return resp
}

// AuditEventResponse is one line of the audit trail on the wire.
type AuditEventResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Origin     string         `json:"origin,omitempty"`
	Agent      string         `json:"agent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

func toAuditResponse(events []domain.AuditEvent) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			ID:         e.ID,
			Action:     e.Action,
			Origin:     e.Origin,
			Agent:      e.Agent,
			Metadata:   e.Metadata,
			RecordedAt: e.RecordedAt,
		})
	}
	return out
}

// requestActor captures the network peer for the audit trail.
func requestActor(r *http.Request) domain.Actor {
	return domain.Actor{
		Origin: httpx.IPKeyExtractor(r),
		Agent:  r.UserAgent(),
	}
}

// writeServiceError maps service and domain sentinels onto the stable error
// taxonomy. Anything unmapped is an internal error with a generic body; the
// real cause only goes to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request is malformed or incomplete")
	case errors.Is(err, service.ErrTokenNotFound):
		httpx.WriteError(w, http.StatusNotFound, "token_not_found", "Access token is unknown")
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusGone, "token_expired", "Access window has lapsed")
	case errors.Is(err, service.ErrTokenAlreadyActive):
		httpx.WriteError(w, http.StatusConflict, "token_already_active", "An active token already exists for this document")
	case errors.Is(err, service.ErrOTPInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "otp_invalid", "Verification code was not accepted")
	case errors.Is(err, service.ErrDocumentNotFound):
		httpx.WriteError(w, http.StatusNotFound, "document_not_found", "Document is unknown")
	case errors.Is(err, service.ErrProofNotFound):
		httpx.WriteError(w, http.StatusNotFound, "proof_not_found", "No timestamp proof exists yet")
	case errors.Is(err, service.ErrAnchorUnavailable):
		httpx.WriteError(w, http.StatusBadGateway, "anchor_unavailable", "Timestamp anchoring is temporarily unavailable")
	case errors.Is(err, domain.ErrIdentityMismatch):
		httpx.WriteError(w, http.StatusForbidden, "identity_mismatch", "Submitted identity does not match")
	case errors.Is(err, domain.ErrInvalidDecision):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_decision", "Decision must be exercised or declined")
	case errors.Is(err, domain.ErrDocumentTerminal):
		httpx.WriteError(w, http.StatusConflict, "document_terminal", "Document is in a terminal state")
	case errors.Is(err, domain.ErrStateConflict):
		httpx.WriteError(w, http.StatusConflict, "state_conflict", "Operation is not valid in the document's current state")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal error")
	}
}
