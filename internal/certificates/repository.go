// Package certificates issues, stores and delivers participation certificates.
package certificates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
)

const detailColumns = `c.id, c.participant_id, c.course_id, c.session_start, c.session_end,
	c.duration_hours, c.manager_id, c.specialist_id, c.verification_code, c.issued_at,
	c.is_webinar, c.expires_at, c.survey_token, c.created_at,
	p.full_name, COALESCE(p.title,''), p.email,
	co.name,
	m.full_name, COALESCE(m.job_title,''), COALESCE(m.signature_key,''),
	s.full_name, COALESCE(s.job_title,''), COALESCE(s.signature_key,'')`

const detailJoins = `FROM certificates c
	JOIN participants p ON p.id = c.participant_id
	JOIN courses co ON co.id = c.course_id
	JOIN evaluators m ON m.id = c.manager_id
	JOIN evaluators s ON s.id = c.specialist_id`

// Repository handles certificate persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a certificates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

func scanDetail(row pgx.Row) (*models.CertificateDetail, error) {
	var d models.CertificateDetail
	err := row.Scan(&d.ID, &d.ParticipantID, &d.CourseID, &d.SessionStart, &d.SessionEnd,
		&d.DurationHours, &d.ManagerID, &d.SpecialistID, &d.VerificationCode, &d.IssuedAt,
		&d.IsWebinar, &d.ExpiresAt, &d.SurveyToken, &d.CreatedAt,
		&d.ParticipantName, &d.ParticipantTitle, &d.ParticipantEmail,
		&d.CourseName,
		&d.ManagerName, &d.ManagerJobTitle, &d.ManagerSignature,
		&d.SpecialistName, &d.SpecialistJobTitle, &d.SpecialistSignature)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDetails(rows pgx.Rows) ([]models.CertificateDetail, error) {
	defer rows.Close()
	var list []models.CertificateDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// CreateIfAbsent inserts a certificate unless one already exists for the same
// participant, course and session start. It reports whether a new row was
// created and fills cert with the stored row either way.
func (r *Repository) CreateIfAbsent(ctx context.Context, cert *models.Certificate) (bool, error) {
	const insert = `INSERT INTO certificates
		(participant_id, course_id, session_start, session_end, duration_hours,
		 manager_id, specialist_id, verification_code, issued_at, is_webinar, expires_at, survey_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (participant_id, course_id, session_start) DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, insert,
		cert.ParticipantID, cert.CourseID, cert.SessionStart, cert.SessionEnd, cert.DurationHours,
		cert.ManagerID, cert.SpecialistID, cert.VerificationCode, cert.IssuedAt,
		cert.IsWebinar, cert.ExpiresAt, cert.SurveyToken).
		Scan(&cert.ID, &cert.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const existing = `SELECT id, manager_id, specialist_id, verification_code, issued_at,
			is_webinar, expires_at, survey_token, created_at
		FROM certificates
		WHERE participant_id = $1 AND course_id = $2 AND session_start = $3`
	err = r.db.QueryRow(ctx, existing, cert.ParticipantID, cert.CourseID, cert.SessionStart).
		Scan(&cert.ID, &cert.ManagerID, &cert.SpecialistID, &cert.VerificationCode, &cert.IssuedAt,
			&cert.IsWebinar, &cert.ExpiresAt, &cert.SurveyToken, &cert.CreatedAt)
	return false, err
}

// GetDetail fetches one certificate with the joined names needed for rendering.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.CertificateDetail, error) {
	return scanDetail(r.db.QueryRow(ctx, `SELECT `+detailColumns+` `+detailJoins+` WHERE c.id = $1`, id))
}

// GetDetailByCode fetches a certificate by its public verification code.
func (r *Repository) GetDetailByCode(ctx context.Context, code string) (*models.CertificateDetail, error) {
	return scanDetail(r.db.QueryRow(ctx,
		`SELECT `+detailColumns+` `+detailJoins+` WHERE c.verification_code = upper($1)`, code))
}

// GetDetailBySurveyToken fetches a certificate by its survey access token.
func (r *Repository) GetDetailBySurveyToken(ctx context.Context, token string) (*models.CertificateDetail, error) {
	return scanDetail(r.db.QueryRow(ctx,
		`SELECT `+detailColumns+` `+detailJoins+` WHERE c.survey_token = $1`, token))
}

// ListDetails fetches the given certificates, newest first.
func (r *Repository) ListDetails(ctx context.Context, ids []uuid.UUID) ([]models.CertificateDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+detailColumns+` `+detailJoins+` WHERE c.id = ANY($1) ORDER BY c.issued_at DESC`, ids)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// ListAll returns the issuance history, newest first.
func (r *Repository) ListAll(ctx context.Context, limit int) ([]models.CertificateDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+detailColumns+` `+detailJoins+` ORDER BY c.issued_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// ListByParticipant returns one participant's certificates, newest first.
func (r *Repository) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]models.CertificateDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+detailColumns+` `+detailJoins+` WHERE c.participant_id = $1 ORDER BY c.issued_at DESC`, participantID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// ListRecentByEmail returns certificates for the email issued at or after the
// cutoff, newest first. The email match is case-insensitive.
func (r *Repository) ListRecentByEmail(ctx context.Context, email string, since time.Time) ([]models.CertificateDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+detailColumns+` `+detailJoins+`
		WHERE lower(p.email) = lower($1) AND c.issued_at >= $2
		ORDER BY c.issued_at DESC`, email, since)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// DeleteByIDs removes the given certificates and returns how many were deleted.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM certificates WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
