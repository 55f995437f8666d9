package sqlite

import (
	"context"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type escalationsRepo struct {
	db dbtx
}

func (r *escalationsRepo) CreateAlert(ctx context.Context, a domain.EscalationAlert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO escalation_alerts (id, document_id, tier, sent_at)
		VALUES (?, ?, ?, ?)`,
		a.ID, a.DocumentID, int(a.Tier), a.SentAt.UTC(),
	)
	return mapUnique(err)
}

func (r *escalationsRepo) ListAlertsByDocument(
	ctx context.Context,
	documentID string,
) ([]domain.EscalationAlert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, tier, sent_at
		FROM escalation_alerts WHERE document_id = ? ORDER BY tier ASC`,
		documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EscalationAlert
	for rows.Next() {
		var (
			a    domain.EscalationAlert
			tier int
		)
		if err := rows.Scan(&a.ID, &a.DocumentID, &tier, &a.SentAt); err != nil {
			return nil, err
		}
		a.Tier = domain.EscalationTier(tier)
		out = append(out, a)
	}
	return out, rows.Err()
}
