package domain

import "time"

// Token is the opaque bearer secret gating unauthenticated access to a single
// document's workflow. Only the SHA-256 fingerprint is persisted; the raw
// value is handed out exactly once at issuance. One active token per document.
type Token struct {
	ID         string
	DocumentID string
	TokenHash  string // base64url SHA-256 fingerprint of the raw token
	ExpiresAt  time.Time
	Consumed   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active reports whether the token can still open its document: not consumed
// and not past expiry.
func (t Token) Active(now time.Time) bool {
	return !t.Consumed && now.Before(t.ExpiresAt)
}
