package service

import "errors"

// Caller-visible sentinels. The HTTP layer maps each to a stable error code;
// anything else surfaces as a generic internal error so persistence and
// authority failures never leak detail to an unauthenticated party.
var (
	ErrValidation         = errors.New("service: invalid request")
	ErrTokenNotFound      = errors.New("service: token not found")
	ErrTokenExpired       = errors.New("service: token expired")
	ErrTokenAlreadyActive = errors.New("service: an active token already exists for this document")

	// ErrOTPInvalid is deliberately undifferentiated: the unauthenticated
	// caller never learns whether the code was wrong, already used, or
	// expired. The differentiated reason is logged server-side only.
	ErrOTPInvalid = errors.New("service: otp invalid")

	// ErrAnchorUnavailable wraps timestamp authority or ledger outages. A
	// confirming transition surfaces it so the caller retries; the outbox
	// absorbs it for the deferred ledger half.
	ErrAnchorUnavailable = errors.New("service: anchoring backend unavailable")

	ErrDocumentNotFound = errors.New("service: document not found")
	ErrProofNotFound    = errors.New("service: proof not found")
)
