package participants

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
)

const participantColumns = `p.id, p.full_name, p.email, COALESCE(p.title,''), p.institution_id,
	COALESCE(i.name,''), p.created_at, p.updated_at`

// Repository handles participant persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a participants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Title, &p.InstitutionID,
		&p.Institution, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new participant. A duplicate email surfaces as a
// unique-violation error rather than returning the existing record.
func (r *Repository) Create(ctx context.Context, fullName, email, title string, institutionID *uuid.UUID) (*models.Participant, error) {
	const query = `WITH inserted AS (
			INSERT INTO participants (full_name, email, title, institution_id)
			VALUES ($1, lower($2), NULLIF($3,''), $4)
			RETURNING id, full_name, email, title, institution_id, created_at, updated_at
		)
		SELECT p.id, p.full_name, p.email, COALESCE(p.title,''), p.institution_id,
			COALESCE(i.name,''), p.created_at, p.updated_at
		FROM inserted p
		LEFT JOIN institutions i ON i.id = p.institution_id`
	return scanParticipant(r.db.QueryRow(ctx, query, strings.TrimSpace(fullName), strings.TrimSpace(email), title, institutionID))
}

// UpsertByEmail creates a participant or returns the existing record for the
// email. The first-seen name, title and institution are kept on conflict.
func (r *Repository) UpsertByEmail(ctx context.Context, fullName, email, title string, institutionID *uuid.UUID) (*models.Participant, error) {
	const query = `WITH upserted AS (
			INSERT INTO participants (full_name, email, title, institution_id)
			VALUES ($1, lower($2), NULLIF($3,''), $4)
			ON CONFLICT ((lower(email))) DO UPDATE SET updated_at = NOW()
			RETURNING id, full_name, email, title, institution_id, created_at, updated_at
		)
		SELECT p.id, p.full_name, p.email, COALESCE(p.title,''), p.institution_id,
			COALESCE(i.name,''), p.created_at, p.updated_at
		FROM upserted p
		LEFT JOIN institutions i ON i.id = p.institution_id`
	return scanParticipant(r.db.QueryRow(ctx, query, strings.TrimSpace(fullName), strings.TrimSpace(email), title, institutionID))
}

// GetByID fetches one participant.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants p
		LEFT JOIN institutions i ON i.id = p.institution_id
		WHERE p.id = $1`
	return scanParticipant(r.db.QueryRow(ctx, query, id))
}

// GetByEmail fetches one participant by case-insensitive email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants p
		LEFT JOIN institutions i ON i.id = p.institution_id
		WHERE lower(p.email) = lower($1)`
	return scanParticipant(r.db.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// List returns all participants ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants p
		LEFT JOIN institutions i ON i.id = p.institution_id
		ORDER BY p.full_name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Update changes a participant's editable fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fullName, title string, institutionID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE participants SET full_name = $2, title = NULLIF($3,''), institution_id = $4, updated_at = NOW() WHERE id = $1`,
		id, fullName, title, institutionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
