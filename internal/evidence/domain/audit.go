package domain

import "time"

// Action tags recorded in the audit trail. The trail is append-only; no
// update or delete operation exists anywhere in the model.
const (
	ActionTokenIssued        = "token_issued"
	ActionLinkOpened         = "link_opened"
	ActionTermsAccepted      = "terms_accepted"
	ActionOTPIssued          = "otp_issued"
	ActionOTPVerified        = "otp_verified"
	ActionOTPRejected        = "otp_rejected"
	ActionSignatureFinalized = "signature_finalized"
	ActionIdentityValidated  = "identity_validated"
	ActionIdentityMismatch   = "identity_mismatch"
	ActionDraftSaved         = "draft_saved"
	ActionDecisionRecorded   = "decision_recorded"
	ActionConfirmed          = "confirmed"
	ActionRevoked            = "revoked"
	ActionExpired            = "expired"
	ActionAnchorRequested    = "anchor_requested"
	ActionLedgerAnchored     = "ledger_anchored"
	ActionEscalationAlerted  = "escalation_alerted"
)

// AuditEvent is one immutable line of the evidentiary access trail. Events
// are written in the same transaction as the state mutation they document.
type AuditEvent struct {
	ID         string // ULID; lexicographic order is insertion order
	DocumentID string
	Action     string
	Origin     string // actor network origin (IP)
	Agent      string // actor user-agent string
	Metadata   map[string]any
	RecordedAt time.Time
}

// Actor identifies the network peer behind a request, threaded through every
// service operation so each one can append audit events.
type Actor struct {
	Origin string
	Agent  string
}
