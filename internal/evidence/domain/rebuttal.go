package domain

import (
	"crypto/subtle"
	"time"
)

// Rebuttal transitions. Same contract as the agreement transitions: pure
// functions over a freshly-read aggregate, committed with a compare-and-swap.

// ValidateIdentity moves pending -> identity_validated when the submitted tax
// id matches the bound employee. A mismatch changes nothing and returns
// ErrIdentityMismatch.
func (d Document) ValidateIdentity(taxID string, now time.Time) (Document, error) {
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	if d.Status != StatusPending {
		return d, ErrStateConflict
	}
	if subtle.ConstantTimeCompare([]byte(taxID), []byte(d.EmployeeTaxID)) != 1 {
		return d, ErrIdentityMismatch
	}

	d.Status = StatusIdentityValidated
	d.IdentityValidatedAt = &now
	return d, nil
}

// SaveDraft persists rebuttal text without a state change. Valid from
// identity_validated onward, repeatable.
func (d Document) SaveDraft(text string) (Document, error) {
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	if d.IdentityValidatedAt == nil {
		return d, ErrStateConflict
	}

	d.DraftText = text
	return d, nil
}

// RecordDecision moves identity_validated -> decision_recorded. It is not
// reachable from pending: identity must be proven first.
func (d Document) RecordDecision(decision Decision, now time.Time) (Document, error) {
	if decision != DecisionExercised && decision != DecisionDeclined {
		return d, ErrInvalidDecision
	}
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	if d.Status != StatusIdentityValidated {
		return d, ErrStateConflict
	}

	d.Status = StatusDecisionRecorded
	d.Decision = decision
	return d, nil
}

// Confirm moves decision_recorded -> confirmed with the sworn statement, the
// affidavit fingerprint over it, and the whole-document canonical hash. A
// repeat call on an already-confirmed document reports already=true and
// leaves the recorded affidavit untouched.
func (d Document) Confirm(now time.Time, affidavitText, affidavitHash, documentHash string) (doc Document, already bool, err error) {
	if d.Status == StatusConfirmed {
		return d, true, nil
	}
	if d.Status.Terminal() {
		return d, false, ErrDocumentTerminal
	}
	if d.Status != StatusDecisionRecorded {
		return d, false, ErrStateConflict
	}

	d.Status = StatusConfirmed
	d.ConfirmedAt = &now
	d.AffidavitText = affidavitText
	d.AffidavitHash = affidavitHash
	d.DocumentHash = documentHash
	return d, false, nil
}
