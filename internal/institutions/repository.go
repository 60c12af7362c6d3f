package institutions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/constancia-hub/backend/internal/models"
	"github.com/constancia-hub/backend/pkg/database"
)

// Repository handles institution persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an institutions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// GetOrCreateByName looks up an institution case-insensitively by name,
// creating it when absent.
func (r *Repository) GetOrCreateByName(ctx context.Context, name, location string) (*models.Institution, error) {
	const insert = `INSERT INTO institutions (name, location)
		VALUES ($1, NULLIF($2,''))
		ON CONFLICT ((lower(name))) DO NOTHING
		RETURNING id, name, COALESCE(location,''), created_at`
	var inst models.Institution
	err := r.db.QueryRow(ctx, insert, name, location).Scan(&inst.ID, &inst.Name, &inst.Location, &inst.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		const sel = `SELECT id, name, COALESCE(location,''), created_at FROM institutions WHERE lower(name) = lower($1)`
		err = r.db.QueryRow(ctx, sel, name).Scan(&inst.ID, &inst.Name, &inst.Location, &inst.CreatedAt)
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// List returns all institutions ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Institution, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(location,''), created_at FROM institutions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Institution
	for rows.Next() {
		var inst models.Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Location, &inst.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inst)
	}
	return list, rows.Err()
}
