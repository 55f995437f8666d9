package sqlite

import (
	"context"
	"encoding/json"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type auditRepo struct {
	db dbtx
}

func (r *auditRepo) Append(ctx context.Context, e domain.AuditEvent) error {
	metadata := "{}"
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = string(raw)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, document_id, action, origin, agent, metadata, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DocumentID, e.Action, e.Origin, e.Agent, metadata, e.RecordedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *auditRepo) ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEvent, error) {
	// ULID ids sort in insertion order.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, action, origin, agent, metadata, recorded_at
		FROM audit_events WHERE document_id = ? ORDER BY id ASC`,
		documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			e        domain.AuditEvent
			metadata string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Action, &e.Origin,
			&e.Agent, &metadata, &e.RecordedAt); err != nil {
			return nil, err
		}
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
