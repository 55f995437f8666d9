package store

import (
	"context"
	"errors"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict reports a compare-and-swap miss: the stored row no longer
	// matches the precondition read at the start of the operation.
	ErrConflict = errors.New("store: concurrent modification")
)

// Store is the root data access interface, implemented by concrete drivers
// (sqlite today). It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx facility because every workflow transition must commit
// its state mutation and its audit event atomically.
type Store interface {
	Documents() Documents
	Tokens() Tokens
	OTPs() OTPs
	AuditEvents() AuditEvents
	Proofs() Proofs
	Escalations() Escalations
	LedgerOutbox() LedgerOutbox

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Documents interface {
	// CreateDocument inserts a new evidentiary document (id is a ULID).
	CreateDocument(ctx context.Context, d domain.Document) error

	// GetDocumentByID returns a document aggregate by id.
	GetDocumentByID(ctx context.Context, id string) (domain.Document, error)

	// UpdateDocumentCAS persists the mutated aggregate only if the stored
	// status still equals expected; a miss returns ErrConflict. This is the
	// commit half of every workflow transition.
	UpdateDocumentCAS(ctx context.Context, d domain.Document, expected domain.Status) error

	// UpdateEscalationCAS bumps the escalation tier (and optionally the
	// delivery status) only if the stored tier still equals expectedTier.
	UpdateEscalationCAS(ctx context.Context, documentID string,
		expectedTier, newTier domain.EscalationTier, delivery domain.DeliveryStatus) error

	// ListEscalatable returns non-terminal documents created before the
	// cutoff, oldest first. Consumed by the escalation sweep.
	ListEscalatable(ctx context.Context, cutoff time.Time) ([]domain.Document, error)

	// ListOverdue returns non-terminal documents whose expires_at has passed,
	// for lazy expiry by the sweep.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Document, error)
}

type Tokens interface {
	// CreateToken stores a new access token record (fingerprint only).
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByHash returns the token by its fingerprint.
	GetTokenByHash(ctx context.Context, hash string) (domain.Token, error)

	// GetActiveTokenByDocument returns the unconsumed, unexpired token for a
	// document, or ErrNotFound. At most one exists at a time.
	GetActiveTokenByDocument(ctx context.Context, documentID string, now time.Time) (domain.Token, error)

	// ConsumeToken flips consumed=1 exactly once; a second call returns
	// ErrConflict.
	ConsumeToken(ctx context.Context, id string) error
}

type OTPs interface {
	// CreateOTP stores a freshly issued passcode record (fingerprint only).
	CreateOTP(ctx context.Context, o domain.OTPRecord) error

	// GetRedeemableByDocument returns the single live (unused, unexpired)
	// record for a document, or ErrNotFound.
	GetRedeemableByDocument(ctx context.Context, documentID string, now time.Time) (domain.OTPRecord, error)

	// MarkOTPUsed flips used=1 exactly once; a second call returns ErrConflict.
	MarkOTPUsed(ctx context.Context, id string) error

	// SupersedeActive marks any live records for the document as used, so a
	// newly issued code is the only redeemable one.
	SupersedeActive(ctx context.Context, documentID string) error
}

// AuditEvents is append-only by construction: no update or delete is exposed,
// and reads are limited to per-document iteration in insertion order.
type AuditEvents interface {
	Append(ctx context.Context, e domain.AuditEvent) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEvent, error)
}

type Proofs interface {
	// CreateProof stores the timestamp proof for a document. The unique
	// document constraint makes anchoring exactly-once: a duplicate returns
	// ErrAlreadyExists.
	CreateProof(ctx context.Context, p domain.TimestampProof) error

	// GetProofByDocument returns the proof for a document.
	GetProofByDocument(ctx context.Context, documentID string) (domain.TimestampProof, error)

	// MarkLedgerAnchored upgrades a pending ledger half with the proof blob.
	MarkLedgerAnchored(ctx context.Context, documentID, proofBlob string, at time.Time) error
}

type Escalations interface {
	// CreateAlert writes the per-tier marker; (document, tier) uniqueness
	// returns ErrAlreadyExists on the second concurrent sweep.
	CreateAlert(ctx context.Context, a domain.EscalationAlert) error

	// ListAlertsByDocument returns the markers for a document, oldest first.
	ListAlertsByDocument(ctx context.Context, documentID string) ([]domain.EscalationAlert, error)
}

type LedgerOutbox interface {
	// Enqueue adds a document hash for deferred ledger anchoring. One entry
	// per document.
	Enqueue(ctx context.Context, e domain.OutboxEntry) error

	// ListPending returns undone entries, oldest first, capped at limit.
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEntry, error)

	// MarkDone flags an entry as completed.
	MarkDone(ctx context.Context, id string) error

	// RecordAttempt bumps the attempt counter and stores the last error.
	RecordAttempt(ctx context.Context, id string, lastError string) error
}
