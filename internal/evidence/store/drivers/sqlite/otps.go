package sqlite

import (
	"context"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type otpsRepo struct {
	db dbtx
}

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OTPRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otps (id, document_id, code_hash, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.DocumentID, o.CodeHash, o.ExpiresAt.UTC(), o.Used, o.CreatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *otpsRepo) GetRedeemableByDocument(
	ctx context.Context,
	documentID string,
	now time.Time,
) (domain.OTPRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, code_hash, expires_at, used, created_at
		FROM otps
		WHERE document_id = ? AND used = 0 AND expires_at > ?
		ORDER BY created_at DESC LIMIT 1`,
		documentID, now.UTC())

	var o domain.OTPRecord
	if err := row.Scan(&o.ID, &o.DocumentID, &o.CodeHash, &o.ExpiresAt,
		&o.Used, &o.CreatedAt); err != nil {
		return domain.OTPRecord{}, mapNotFound(err)
	}
	return o, nil
}

func (r *otpsRepo) MarkOTPUsed(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE otps SET used = 1 WHERE id = ? AND used = 0`, id,
	))
}

func (r *otpsRepo) SupersedeActive(ctx context.Context, documentID string) error {
	// Not requireRow: having no live record to supersede is fine.
	_, err := r.db.ExecContext(ctx, `
		UPDATE otps SET used = 1 WHERE document_id = ? AND used = 0`, documentID)
	return err
}
