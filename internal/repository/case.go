package repository

import (
	"context"

	"casedocs/internal/model"
)

// CaseRepository is the minimal persistence surface the document pipeline
// needs from the case subsystem: resolving case references and creating
// the rows they resolve to.
type CaseRepository interface {
	// Create inserts a new case row and returns the stored record.
	Create(ctx context.Context, c *model.Case) (*model.Case, error)

	// FindByID returns a case by its ID.
	FindByID(ctx context.Context, id string) (*model.Case, error)

	// List returns all cases, newest first.
	List(ctx context.Context) ([]model.Case, error)
}
