package domain

import "time"

// OTPRecord stores a dispatched one-time passcode. The raw 6-digit code is
// never persisted, only its fingerprint. Exactly one successful verification
// is permitted per record; verification after use or expiry always fails,
// even with the correct code.
type OTPRecord struct {
	ID         string
	DocumentID string
	CodeHash   string // base64url SHA-256 fingerprint of the zero-padded code
	ExpiresAt  time.Time
	Used       bool
	CreatedAt  time.Time
}

// Redeemable reports whether the record can still be verified against.
func (o OTPRecord) Redeemable(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
