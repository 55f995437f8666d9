package domain

import "time"

// LedgerState tracks the deferred half of a timestamp proof.
type LedgerState string

const (
	// LedgerNone: ledger anchoring was not requested for this document.
	LedgerNone LedgerState = "none"
	// LedgerPending: enqueued to the outbox, awaiting submission or upgrade.
	LedgerPending LedgerState = "pending"
	// LedgerAnchored: the ledger proof blob has been captured.
	LedgerAnchored LedgerState = "anchored"
)

// TimestampProof is the dual timestamp evidence for a confirmed document.
// The authority half is always present once the proof row exists: a document
// is not evidentially complete without it, so the confirming transition fails
// outright if the authority call fails. The ledger half may arrive later via
// outbox reconciliation. The embedded hash is immutable and equals the
// document hash computed at confirmation time.
type TimestampProof struct {
	ID         string
	DocumentID string
	Hash       string

	AuthorityTimestamp time.Time
	AuthorityProof     string // opaque proof token returned by the authority
	AuthorityURL       string

	LedgerState LedgerState
	LedgerProof string // base64 proof blob, set once anchored
	LedgerAt    *time.Time

	CreatedAt time.Time
}

// AuthorityProofWire is the authority half of the proof wire shape.
type AuthorityProofWire struct {
	Timestamp    time.Time `json:"timestamp"`
	ProofToken   string    `json:"proofToken"`
	AuthorityURL string    `json:"authorityUrl"`
}

// LedgerProofWire is the ledger half of the proof wire shape.
type LedgerProofWire struct {
	ProofBlobEncoded string `json:"proofBlobEncoded"`
}

// ProofWire is the external representation: either half is null when absent.
type ProofWire struct {
	Authority *AuthorityProofWire `json:"authority"`
	Ledger    *LedgerProofWire    `json:"ledger"`
}

// Wire converts the stored proof to its external shape.
func (p TimestampProof) Wire() ProofWire {
	out := ProofWire{
		Authority: &AuthorityProofWire{
			Timestamp:    p.AuthorityTimestamp,
			ProofToken:   p.AuthorityProof,
			AuthorityURL: p.AuthorityURL,
		},
	}
	if p.LedgerState == LedgerAnchored {
		out.Ledger = &LedgerProofWire{ProofBlobEncoded: p.LedgerProof}
	}
	return out
}
