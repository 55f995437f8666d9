package domain

import "time"

// OutboxEntry is one durable ledger-anchoring job. The confirming transition
// enqueues it in the same transaction that commits the terminal state, so a
// crash between commit and ledger submission loses nothing: the sweep retries
// until the ledger proof is captured.
type OutboxEntry struct {
	ID         string
	DocumentID string
	Hash       string
	Attempts   int
	LastError  string
	Done       bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
