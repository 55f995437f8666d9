package domain

import "time"

// Agreement-signing transitions. Each is a pure function: it validates the
// precondition state on the freshly-read aggregate and returns the mutated
// copy. The caller commits with a compare-and-swap on the precondition status
// so a concurrent transition surfaces as ErrStateConflict, never a silent
// overwrite.

// AcceptTerms moves pending -> terms_accepted. Re-invocation after acceptance
// is idempotent: it reports already=true and leaves the original acceptance
// timestamp untouched.
func (d Document) AcceptTerms(now time.Time) (doc Document, already bool, err error) {
	if d.Status.Terminal() {
		return d, false, ErrDocumentTerminal
	}
	if d.TermsAcceptedAt != nil {
		return d, true, nil
	}
	if d.Status != StatusPending {
		return d, false, ErrStateConflict
	}

	d.Status = StatusTermsAccepted
	d.TermsAcceptedAt = &now
	return d, false, nil
}

// MarkOTPVerified moves terms_accepted -> otp_verified after a successful
// passcode verification.
func (d Document) MarkOTPVerified(now time.Time) (Document, error) {
	if d.Status.Terminal() {
		return d, ErrDocumentTerminal
	}
	if d.Status != StatusTermsAccepted {
		return d, ErrStateConflict
	}

	d.Status = StatusOTPVerified
	d.OTPVerifiedAt = &now
	return d, nil
}

// FinalizeSignature moves otp_verified -> signed, recording the canonical
// hash computed at confirmation time. A repeat call on an already-signed
// document reports already=true so the caller does not re-anchor or
// re-consume the token.
func (d Document) FinalizeSignature(now time.Time, hash string) (doc Document, already bool, err error) {
	if d.Status == StatusSigned {
		return d, true, nil
	}
	if d.Status.Terminal() {
		return d, false, ErrDocumentTerminal
	}
	if d.Status != StatusOTPVerified {
		return d, false, ErrStateConflict
	}

	d.Status = StatusSigned
	d.SignedAt = &now
	d.DocumentHash = hash
	return d, false, nil
}
