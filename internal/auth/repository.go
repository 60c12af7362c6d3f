package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
)

// ErrNoManager is returned when no evaluator holds the manager flag.
var ErrNoManager = errors.New("no manager designated")

// Repository handles evaluator persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const evaluatorColumns = `id, email, password_hash, full_name, role,
	COALESCE(job_title,''), COALESCE(photo_key,''), COALESCE(signature_key,''), is_manager,
	created_at, updated_at`

func scanEvaluator(row pgx.Row) (*models.Evaluator, error) {
	var e models.Evaluator
	err := row.Scan(&e.ID, &e.Email, &e.Password, &e.FullName, &e.Role,
		&e.JobTitle, &e.PhotoKey, &e.SignatureKey, &e.IsManager, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns an evaluator by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluator, error) {
	return scanEvaluator(r.pool.QueryRow(ctx, `SELECT `+evaluatorColumns+` FROM evaluators WHERE id = $1`, id))
}

// GetByEmail returns an evaluator by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Evaluator, error) {
	return scanEvaluator(r.pool.QueryRow(ctx, `SELECT `+evaluatorColumns+` FROM evaluators WHERE lower(email) = lower($1)`, email))
}

// GetManager returns the single evaluator holding the manager flag, or ErrNoManager.
func (r *Repository) GetManager(ctx context.Context) (*models.Evaluator, error) {
	e, err := scanEvaluator(r.pool.QueryRow(ctx, `SELECT `+evaluatorColumns+` FROM evaluators WHERE is_manager`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoManager
	}
	return e, err
}

// List returns all evaluators for signer selection.
func (r *Repository) List(ctx context.Context) ([]models.EvaluatorPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, role, COALESCE(job_title,''), is_manager, created_at
		FROM evaluators ORDER BY full_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EvaluatorPublic
	for rows.Next() {
		var e models.EvaluatorPublic
		if err := rows.Scan(&e.ID, &e.Email, &e.FullName, &e.Role, &e.JobTitle, &e.IsManager, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Create inserts a new evaluator.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName, jobTitle string, role models.Role) (*models.Evaluator, error) {
	const q = `INSERT INTO evaluators (email, password_hash, full_name, role, job_title)
		VALUES ($1, $2, $3, $4, NULLIF($5,''))
		RETURNING ` + evaluatorColumns
	return scanEvaluator(r.pool.QueryRow(ctx, q, email, passwordHash, fullName, string(role), jobTitle))
}

// SetManager designates the evaluator as the default signing manager,
// clearing the flag from any previous holder in the same transaction so
// the at-most-one invariant holds.
func (r *Repository) SetManager(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE evaluators SET is_manager = FALSE, updated_at = NOW() WHERE is_manager`); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE evaluators SET is_manager = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// UpdateSignatureKey stores the S3 object key of the evaluator's signature image.
func (r *Repository) UpdateSignatureKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx, `UPDATE evaluators SET signature_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	return err
}

// UpdatePhotoKey stores the S3 object key of the evaluator's profile photo.
func (r *Repository) UpdatePhotoKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx, `UPDATE evaluators SET photo_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	return err
}
