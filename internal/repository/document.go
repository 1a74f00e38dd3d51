package repository

import (
	"context"

	"casedocs/internal/model"
)

// DocumentFilter narrows document listings. Nil pointers mean "no filter";
// Search matches against filenames, description and extracted OCR text.
type DocumentFilter struct {
	CaseID       *string
	DocumentType *model.DocumentType
	IsTemplate   *bool
	Search       string
}

// DocumentRepository defines data access for document metadata records
// using SQL queries only. No business logic here — strictly persistence
// operations.
type DocumentRepository interface {
	// Create inserts a new document metadata row and returns the stored
	// record (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a filtered, paginated list of documents and the total
	// row count for the filter.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Update applies the non-nil fields of upd to the row and returns the
	// updated record.
	Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.Document, error)

	// UpdateOCRText overwrites the row's extracted-text field. Re-running
	// OCR replaces any previous text; no versioning of OCR text is kept.
	UpdateOCRText(ctx context.Context, id string, text string) error

	// Delete removes a document row by ID. It returns nil if the row was
	// deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
