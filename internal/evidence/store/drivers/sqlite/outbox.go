package sqlite

import (
	"context"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type outboxRepo struct {
	db dbtx
}

func (r *outboxRepo) Enqueue(ctx context.Context, e domain.OutboxEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_outbox (id, document_id, hash, attempts, last_error, done, created_at, updated_at)
		VALUES (?, ?, ?, 0, '', 0, ?, ?)`,
		e.ID, e.DocumentID, e.Hash, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *outboxRepo) ListPending(ctx context.Context, limit int) ([]domain.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, hash, attempts, last_error, done, created_at, updated_at
		FROM ledger_outbox WHERE done = 0 ORDER BY created_at ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OutboxEntry
	for rows.Next() {
		var e domain.OutboxEntry
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Hash, &e.Attempts,
			&e.LastError, &e.Done, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *outboxRepo) MarkDone(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE ledger_outbox SET done = 1, updated_at = ? WHERE id = ? AND done = 0`,
		time.Now().UTC(), id,
	))
}

func (r *outboxRepo) RecordAttempt(ctx context.Context, id string, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ledger_outbox SET attempts = attempts + 1, last_error = ?, updated_at = ?
		WHERE id = ?`,
		lastError, time.Now().UTC(), id,
	)
	return err
}
