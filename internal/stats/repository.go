// Package stats aggregates issuance and engagement counters for the
// dashboard.
package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Overview is the dashboard counter set.
type Overview struct {
	Participants      int64            `json:"participants"`
	Institutions      int64            `json:"institutions"`
	Courses           int64            `json:"courses"`
	Certificates      int64            `json:"certificates"`
	CertificatesWeek  int64            `json:"certificates_last_7_days"`
	SurveyResponses   int64            `json:"survey_responses"`
	Leads             int64            `json:"leads"`
	EmailsSent        int64            `json:"emails_sent"`
	EmailsFailed      int64            `json:"emails_failed"`
	SurveyRatingCount map[string]int64 `json:"survey_content_ratings"`
}

// Repository computes aggregate statistics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOverview runs the counter queries.
func (r *Repository) GetOverview(ctx context.Context) (*Overview, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM participants),
		(SELECT COUNT(*) FROM institutions),
		(SELECT COUNT(*) FROM courses),
		(SELECT COUNT(*) FROM certificates),
		(SELECT COUNT(*) FROM certificates WHERE issued_at >= NOW() - INTERVAL '7 days'),
		(SELECT COUNT(*) FROM survey_responses),
		(SELECT COUNT(*) FROM leads),
		(SELECT COUNT(*) FROM email_logs WHERE status = 'sent'),
		(SELECT COUNT(*) FROM email_logs WHERE status = 'failed')`

	var o Overview
	err := r.pool.QueryRow(ctx, q).Scan(&o.Participants, &o.Institutions, &o.Courses,
		&o.Certificates, &o.CertificatesWeek, &o.SurveyResponses, &o.Leads,
		&o.EmailsSent, &o.EmailsFailed)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT content_rating, COUNT(*) FROM survey_responses GROUP BY content_rating`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	o.SurveyRatingCount = make(map[string]int64)
	for rows.Next() {
		var rating string
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		o.SurveyRatingCount[rating] = count
	}
	return &o, rows.Err()
}
