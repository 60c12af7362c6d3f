// Package emaillog records outbound certificate and survey mail for auditing.
package emaillog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
)

// Repository handles email log persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create records one delivery attempt.
func (r *Repository) Create(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs
		(certificate_id, email_type, recipient_email, subject, status, sent_at, error_message)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, NULLIF($7,''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.CertificateID, log.EmailType, log.RecipientEmail,
		log.Subject, log.Status, log.SentAt, log.ErrorMessage).
		Scan(&log.ID, &log.CreatedAt)
}

// List returns recent delivery attempts, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.EmailLog, error) {
	const q = `SELECT id, certificate_id, email_type, recipient_email, COALESCE(subject,''),
			status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.CertificateID, &l.EmailType, &l.RecipientEmail, &l.Subject,
			&l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Now returns the current UTC instant as a sent_at value.
func Now() *time.Time {
	t := time.Now().UTC()
	return &t
}
