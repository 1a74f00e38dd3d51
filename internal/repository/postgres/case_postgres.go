package postgres

import (
	"context"
	"database/sql"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

// CasePostgres is a PostgreSQL implementation of repository.CaseRepository.
type CasePostgres struct {
	db *sql.DB
}

// NewCasePostgres creates a new CasePostgres repository.
func NewCasePostgres(db *sql.DB) *CasePostgres {
	return &CasePostgres{db: db}
}

var _ repository.CaseRepository = (*CasePostgres)(nil)

// Create inserts a new case row and returns the stored record.
func (r *CasePostgres) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	const q = `
		INSERT INTO cases (id, case_number, title, status, open_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, case_number, title, status, open_date, created_at
	`
	row := r.db.QueryRowContext(ctx, q, c.ID, c.CaseNumber, c.Title, c.Status, c.OpenDate)

	var out model.Case
	if err := row.Scan(&out.ID, &out.CaseNumber, &out.Title, &out.Status, &out.OpenDate, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single case by its ID.
func (r *CasePostgres) FindByID(ctx context.Context, id string) (*model.Case, error) {
	const q = `
		SELECT id, case_number, title, status, open_date, created_at
		FROM cases
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)

	var c model.Case
	if err := row.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Status, &c.OpenDate, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all cases, newest first.
func (r *CasePostgres) List(ctx context.Context) ([]model.Case, error) {
	const q = `
		SELECT id, case_number, title, status, open_date, created_at
		FROM cases
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := make([]model.Case, 0)
	for rows.Next() {
		var c model.Case
		if err := rows.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Status, &c.OpenDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
