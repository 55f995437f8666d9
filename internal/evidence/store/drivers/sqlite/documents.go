package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
)

type documentsRepo struct {
	db dbtx
}

const documentColumns = `
	id, kind, status, employee_id, employee_tax_id, recipient, subject, body,
	terms_accepted_at, otp_verified_at, signed_at, revoked_at,
	identity_validated_at, draft_text, decision, confirmed_at,
	affidavit_text, affidavit_hash,
	document_hash, escalation_tier, delivery_status,
	expires_at, created_at, updated_at`

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, kind, status, employee_id, employee_tax_id, recipient, subject, body,
			draft_text, decision, affidavit_text, affidavit_hash, document_hash,
			escalation_tier, delivery_status, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, string(d.Kind), string(d.Status), d.EmployeeID, d.EmployeeTaxID,
		d.Recipient, d.Subject, d.Body,
		d.DraftText, string(d.Decision), d.AffidavitText, d.AffidavitHash, d.DocumentHash,
		int(d.EscalationTier), string(d.Delivery),
		d.ExpiresAt.UTC(), d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *documentsRepo) GetDocumentByID(ctx context.Context, id string) (domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func (r *documentsRepo) UpdateDocumentCAS(
	ctx context.Context,
	d domain.Document,
	expected domain.Status,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE documents SET
			status = ?,
			terms_accepted_at = ?, otp_verified_at = ?, signed_at = ?, revoked_at = ?,
			identity_validated_at = ?, draft_text = ?, decision = ?,
			confirmed_at = ?, affidavit_text = ?, affidavit_hash = ?, document_hash = ?,
			updated_at = ?
		WHERE id = ? AND status = ?`,
		string(d.Status),
		mapOptionalTime(d.TermsAcceptedAt), mapOptionalTime(d.OTPVerifiedAt),
		mapOptionalTime(d.SignedAt), mapOptionalTime(d.RevokedAt),
		mapOptionalTime(d.IdentityValidatedAt), d.DraftText, string(d.Decision),
		mapOptionalTime(d.ConfirmedAt), d.AffidavitText, d.AffidavitHash, d.DocumentHash,
		time.Now().UTC(),
		d.ID, string(expected),
	))
}

func (r *documentsRepo) UpdateEscalationCAS(
	ctx context.Context,
	documentID string,
	expectedTier, newTier domain.EscalationTier,
	delivery domain.DeliveryStatus,
) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE documents SET escalation_tier = ?, delivery_status = ?, updated_at = ?
		WHERE id = ? AND escalation_tier = ?`,
		int(newTier), string(delivery), time.Now().UTC(),
		documentID, int(expectedTier),
	))
}

func (r *documentsRepo) ListEscalatable(ctx context.Context, cutoff time.Time) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE status NOT IN ('signed', 'confirmed', 'revoked', 'expired')
		  AND created_at <= ?
		ORDER BY created_at ASC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *documentsRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE status NOT IN ('signed', 'confirmed', 'revoked', 'expired')
		  AND expires_at < ?
		ORDER BY created_at ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var (
		d                                                   domain.Document
		kind, status, decision, delivery                    string
		tier                                                int
		termsAcceptedAt, otpVerifiedAt, signedAt, revokedAt sql.NullTime
		identityValidatedAt, confirmedAt                    sql.NullTime
	)

	err := row.Scan(
		&d.ID, &kind, &status, &d.EmployeeID, &d.EmployeeTaxID,
		&d.Recipient, &d.Subject, &d.Body,
		&termsAcceptedAt, &otpVerifiedAt, &signedAt, &revokedAt,
		&identityValidatedAt, &d.DraftText, &decision, &confirmedAt,
		&d.AffidavitText, &d.AffidavitHash,
		&d.DocumentHash, &tier, &delivery,
		&d.ExpiresAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, mapNotFound(err)
	}

	d.Kind = domain.Kind(kind)
	d.Status = domain.Status(status)
	d.Decision = domain.Decision(decision)
	d.Delivery = domain.DeliveryStatus(delivery)
	d.EscalationTier = domain.EscalationTier(tier)
	d.TermsAcceptedAt = mapNullTimePtr(termsAcceptedAt)
	d.OTPVerifiedAt = mapNullTimePtr(otpVerifiedAt)
	d.SignedAt = mapNullTimePtr(signedAt)
	d.RevokedAt = mapNullTimePtr(revokedAt)
	d.IdentityValidatedAt = mapNullTimePtr(identityValidatedAt)
	d.ConfirmedAt = mapNullTimePtr(confirmedAt)
	return d, nil
}

func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
