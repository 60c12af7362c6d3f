// Package surveys stores post-event questionnaire responses and the sales
// leads they generate.
package surveys

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
)

// LeadSourceSurvey marks leads created by a survey opt-in.
const LeadSourceSurvey = "survey_opt_in"

// Repository handles survey and lead persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a surveys repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// CreateResponse stores a response unless the certificate already has one.
// It reports whether a new row was created.
func (r *Repository) CreateResponse(ctx context.Context, resp *models.SurveyResponse) (bool, error) {
	const q = `INSERT INTO survey_responses
		(certificate_id, content_rating, speaker_rating, comments, topics_of_interest, contact_opt_in)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6)
		ON CONFLICT (certificate_id) DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, q, resp.CertificateID, resp.ContentRating, resp.SpeakerRating,
		resp.Comments, resp.TopicsOfInterest, resp.ContactOptIn).
		Scan(&resp.ID, &resp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetResponseByCertificate returns the response for a certificate, if any.
func (r *Repository) GetResponseByCertificate(ctx context.Context, certificateID uuid.UUID) (*models.SurveyResponse, error) {
	const q = `SELECT id, certificate_id, content_rating, speaker_rating,
			COALESCE(comments,''), COALESCE(topics_of_interest,''), contact_opt_in, created_at
		FROM survey_responses WHERE certificate_id = $1`
	var resp models.SurveyResponse
	err := r.db.QueryRow(ctx, q, certificateID).Scan(&resp.ID, &resp.CertificateID,
		&resp.ContentRating, &resp.SpeakerRating, &resp.Comments, &resp.TopicsOfInterest,
		&resp.ContactOptIn, &resp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLead records sales interest once per participant and course.
func (r *Repository) CreateLead(ctx context.Context, participantID, courseID uuid.UUID, source string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO leads (participant_id, course_id, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, course_id) DO NOTHING`, participantID, courseID, source)
	return err
}

// ListLeads returns captured leads with participant contact details, newest first.
func (r *Repository) ListLeads(ctx context.Context) ([]LeadDetail, error) {
	const q = `SELECT l.id, l.participant_id, l.course_id, l.source, l.created_at,
			p.full_name, p.email, co.name
		FROM leads l
		JOIN participants p ON p.id = l.participant_id
		JOIN courses co ON co.id = l.course_id
		ORDER BY l.created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []LeadDetail
	for rows.Next() {
		var d LeadDetail
		if err := rows.Scan(&d.ID, &d.ParticipantID, &d.CourseID, &d.Source, &d.CreatedAt,
			&d.ParticipantName, &d.ParticipantEmail, &d.CourseName); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// LeadDetail is a lead joined with contact and course names.
type LeadDetail struct {
	models.Lead
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
	CourseName       string `json:"course_name"`
}
