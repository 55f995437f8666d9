package domain

import (
	"errors"
	"time"
)

// Kind discriminates the two evidentiary workflows.
type Kind string

const (
	// KindAgreement is the domicile-agreement signing flow:
	// pending -> terms_accepted -> otp_verified -> signed.
	KindAgreement Kind = "agreement"
	// KindRebuttal is the disciplinary-rebuttal flow:
	// pending -> identity_validated -> decision_recorded -> confirmed.
	KindRebuttal Kind = "rebuttal"
)

// Status is the workflow state of a document. Transitions are strictly
// forward; terminal states are sinks.
type Status string

const (
	StatusPending           Status = "pending"
	StatusTermsAccepted     Status = "terms_accepted"
	StatusOTPVerified       Status = "otp_verified"
	StatusSigned            Status = "signed"
	StatusIdentityValidated Status = "identity_validated"
	StatusDecisionRecorded  Status = "decision_recorded"
	StatusConfirmed         Status = "confirmed"
	StatusRevoked           Status = "revoked"
	StatusExpired           Status = "expired"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusSigned, StatusConfirmed, StatusRevoked, StatusExpired:
		return true
	}
	return false
}

// Decision is the employee's recorded choice on a rebuttal.
type Decision string

const (
	DecisionNone      Decision = ""
	DecisionExercised Decision = "exercised"
	DecisionDeclined  Decision = "declined"
)

// DeliveryStatus tracks escalation past the final alert tier.
type DeliveryStatus string

const (
	DeliveryNone            DeliveryStatus = ""
	DeliveryPendingPhysical DeliveryStatus = "pending_physical_delivery"
)

// Transition errors returned by the pure transition functions below. The
// service layer surfaces them unchanged; persistence conflicts map to
// ErrStateConflict as well (compare-and-swap miss).
var (
	ErrStateConflict    = errors.New("domain: transition precondition state mismatch")
	ErrDocumentTerminal = errors.New("domain: document is in a terminal state")
	ErrIdentityMismatch = errors.New("domain: submitted identity does not match")
	ErrInvalidDecision  = errors.New("domain: decision must be exercised or declined")
)

// Document is the evidentiary aggregate. Both workflow variants share one
// aggregate (and one table); variant-specific fields are nil/empty on the
// other kind. Timestamp fields are monotonic: once set they are never cleared
// or rewound except by the terminal revoke/expire transitions.
type Document struct {
	ID            string
	Kind          Kind
	Status        Status
	EmployeeID    string
	EmployeeTaxID string
	Recipient     string // out-of-band address for OTP and alert dispatch
	Subject       string
	Body          string // full notice/agreement text; part of the evidentiary hash

	// Agreement-signing fields.
	TermsAcceptedAt *time.Time
	OTPVerifiedAt   *time.Time
	SignedAt        *time.Time
	RevokedAt       *time.Time

	// Rebuttal fields.
	IdentityValidatedAt *time.Time
	DraftText           string
	Decision            Decision
	ConfirmedAt         *time.Time
	AffidavitText       string // sworn statement submitted at confirmation
	AffidavitHash       string

	// DocumentHash is the canonical fingerprint computed at the terminal
	// confirming transition, immutable afterwards.
	DocumentHash string

	EscalationTier EscalationTier
	Delivery       DeliveryStatus

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the document's access window has lapsed.
func (d Document) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// Expire moves a non-terminal document into the expired sink.
func (d Document) Expire(now time.Time) (Document, error) {
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	d.Status = StatusExpired
	return d, nil
}

// Revoke is the explicit staff-side terminal transition.
func (d Document) Revoke(now time.Time) (Document, error) {
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	d.Status = StatusRevoked
	d.RevokedAt = &now
	return d, nil
}

// EvidentiaryFields returns the named field mapping the canonical document
// hash is computed over. Key order is irrelevant: the hasher canonicalizes.
func (d Document) EvidentiaryFields() map[string]any {
	fields := map[string]any{
		"document_id": d.ID,
		"kind":        string(d.Kind),
		"employee_id": d.EmployeeID,
		"subject":     d.Subject,
		"body":        d.Body,
		"created_at":  d.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	switch d.Kind {
	case KindAgreement:
		if d.TermsAcceptedAt != nil {
			fields["terms_accepted_at"] = d.TermsAcceptedAt.UTC().Format(time.RFC3339Nano)
		}
		if d.OTPVerifiedAt != nil {
			fields["otp_verified_at"] = d.OTPVerifiedAt.UTC().Format(time.RFC3339Nano)
		}
	case KindRebuttal:
		if d.IdentityValidatedAt != nil {
			fields["identity_validated_at"] = d.IdentityValidatedAt.UTC().Format(time.RFC3339Nano)
		}
		fields["decision"] = string(d.Decision)
		fields["draft_text"] = d.DraftText
		if d.AffidavitHash != "" {
			fields["affidavit_hash"] = d.AffidavitHash
		}
	}

	return fields
}
