package courses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
)

// Repository handles course-definition persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a courses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// GetOrCreateByName looks up a course case-insensitively by name, creating it when absent.
func (r *Repository) GetOrCreateByName(ctx context.Context, name string) (*models.Course, error) {
	const insert = `INSERT INTO courses (name) VALUES ($1)
		ON CONFLICT ((lower(name))) DO NOTHING
		RETURNING id, name, created_at`
	var course models.Course
	err := r.db.QueryRow(ctx, insert, name).Scan(&course.ID, &course.Name, &course.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.db.QueryRow(ctx, `SELECT id, name, created_at FROM courses WHERE lower(name) = lower($1)`, name).
			Scan(&course.ID, &course.Name, &course.CreatedAt)
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns all course definitions ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM courses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(&course.ID, &course.Name, &course.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, course)
	}
	return list, rows.Err()
}
