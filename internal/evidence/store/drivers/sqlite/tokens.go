package sqlite

import (
	"context"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, document_id, token_hash, expires_at, consumed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DocumentID, t.TokenHash, t.ExpiresAt.UTC(), t.Consumed,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *tokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, token_hash, expires_at, consumed, created_at, updated_at
		FROM tokens WHERE token_hash = ?`, hash)

	var t domain.Token
	if err := row.Scan(&t.ID, &t.DocumentID, &t.TokenHash, &t.ExpiresAt,
		&t.Consumed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) GetActiveTokenByDocument(
	ctx context.Context,
	documentID string,
	now time.Time,
) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, token_hash, expires_at, consumed, created_at, updated_at
		FROM tokens
		WHERE document_id = ? AND consumed = 0 AND expires_at > ?
		ORDER BY created_at DESC LIMIT 1`,
		documentID, now.UTC())

	var t domain.Token
	if err := row.Scan(&t.ID, &t.DocumentID, &t.TokenHash, &t.ExpiresAt,
		&t.Consumed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) ConsumeToken(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE tokens SET consumed = 1, updated_at = ? WHERE id = ? AND consumed = 0`,
		time.Now().UTC(), id,
	))
}
