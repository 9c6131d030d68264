package postgres

import (
	"context"
	"database/sql"

	"prdapi/internal/model"
	"prdapi/internal/repository"
)

// PRDPostgres is a PostgreSQL implementation of repository.PRDRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PRDPostgres struct {
	db *sql.DB
}

// NewPRDPostgres creates a new PRDPostgres repository.
func NewPRDPostgres(db *sql.DB) *PRDPostgres {
	return &PRDPostgres{db: db}
}

var _ repository.PRDRepository = (*PRDPostgres)(nil)

// Create inserts a new prds row and returns the stored record.
func (r *PRDPostgres) Create(ctx context.Context, prd *model.PRD) (*model.PRD, error) {
	const q = `
		INSERT INTO prds (id, user_id, title, file_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, file_url
	`
	row := r.db.QueryRowContext(ctx, q,
		prd.ID,
		prd.UserID,
		prd.Title,
		prd.FileURL,
	)
	var out model.PRD
	if err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Title,
		&out.FileURL,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
