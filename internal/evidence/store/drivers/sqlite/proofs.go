package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type proofsRepo struct {
	db dbtx
}

func (r *proofsRepo) CreateProof(ctx context.Context, p domain.TimestampProof) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timestamp_proofs (
			id, document_id, hash, authority_timestamp, authority_proof,
			authority_url, ledger_state, ledger_proof, ledger_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.DocumentID, p.Hash, p.AuthorityTimestamp.UTC(), p.AuthorityProof,
		p.AuthorityURL, string(p.LedgerState), p.LedgerProof,
		mapOptionalTime(p.LedgerAt), p.CreatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *proofsRepo) GetProofByDocument(ctx context.Context, documentID string) (domain.TimestampProof, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, hash, authority_timestamp, authority_proof,
		       authority_url, ledger_state, ledger_proof, ledger_at, created_at
		FROM timestamp_proofs WHERE document_id = ?`, documentID)

	var (
		p           domain.TimestampProof
		ledgerState string
		ledgerAt    sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.DocumentID, &p.Hash, &p.AuthorityTimestamp,
		&p.AuthorityProof, &p.AuthorityURL, &ledgerState, &p.LedgerProof,
		&ledgerAt, &p.CreatedAt); err != nil {
		return domain.TimestampProof{}, mapNotFound(err)
	}
	p.LedgerState = domain.LedgerState(ledgerState)
	p.LedgerAt = mapNullTimePtr(ledgerAt)
	return p, nil
}

func (r *proofsRepo) MarkLedgerAnchored(ctx context.Context, documentID, proofBlob string, at time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE timestamp_proofs
		SET ledger_state = ?, ledger_proof = ?, ledger_at = ?
		WHERE document_id = ? AND ledger_state = ?`,
		string(domain.LedgerAnchored), proofBlob, at.UTC(),
		documentID, string(domain.LedgerPending),
	))
}
