package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"casedocs/internal/model"
	"casedocs/internal/repository"
)

// documentColumns is the canonical select list for document rows.
const documentColumns = `id, case_id, document_type, filename, original_filename, storage_path,
		size, content_type, file_format, upload_date, document_date, description,
		ocr_text, tags, version, is_template, created_by`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// scanDocument reads one document row. Tags are stored as JSONB.
func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var (
		d            model.Document
		caseID       sql.NullString
		documentDate sql.NullTime
		description  sql.NullString
		ocrText      sql.NullString
		tags         []byte
	)
	if err := row.Scan(
		&d.ID,
		&caseID,
		&d.DocumentType,
		&d.Filename,
		&d.OriginalFilename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.FileFormat,
		&d.UploadDate,
		&documentDate,
		&description,
		&ocrText,
		&tags,
		&d.Version,
		&d.IsTemplate,
		&d.CreatedBy,
	); err != nil {
		return nil, err
	}

	if caseID.Valid {
		d.CaseID = &caseID.String
	}
	if documentDate.Valid {
		t := documentDate.Time
		d.DocumentDate = &t
	}
	if description.Valid {
		d.Description = &description.String
	}
	if ocrText.Valid {
		d.OCRText = &ocrText.String
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, case_id, document_type, filename, original_filename,
			storage_path, size, content_type, file_format, upload_date, document_date,
			description, tags, version, is_template, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + documentColumns

	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.CaseID,
		doc.DocumentType,
		doc.Filename,
		doc.OriginalFilename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.FileFormat,
		doc.UploadDate,
		doc.DocumentDate,
		doc.Description,
		tags,
		doc.Version,
		doc.IsTemplate,
		doc.CreatedBy,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents matching the filter using LIMIT/OFFSET pagination
// and a total count for the same filter.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where, args := buildDocumentWhere(f)

	// Count total rows for the filter
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page, newest first
	q := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(` ORDER BY upload_date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// buildDocumentWhere turns a filter into a WHERE clause and its arguments.
func buildDocumentWhere(f repository.DocumentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.CaseID != nil {
		args = append(args, *f.CaseID)
		conds = append(conds, fmt.Sprintf("case_id = $%d", len(args)))
	}
	if f.DocumentType != nil {
		args = append(args, *f.DocumentType)
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if f.IsTemplate != nil {
		args = append(args, *f.IsTemplate)
		conds = append(conds, fmt.Sprintf("is_template = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(filename ILIKE $%d OR original_filename ILIKE $%d OR description ILIKE $%d OR ocr_text ILIKE $%d)",
			n, n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update applies the non-nil fields of upd and returns the updated record.
func (r *DocumentPostgres) Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.Document, error) {
	var (
		sets []string
		args []any
	)
	if upd.DocumentType != nil {
		args = append(args, *upd.DocumentType)
		sets = append(sets, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if upd.DocumentDate != nil {
		args = append(args, *upd.DocumentDate)
		sets = append(sets, fmt.Sprintf("document_date = $%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if upd.Tags != nil {
		tags, err := encodeTags(upd.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		args = append(args, tags)
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	if upd.IsTemplate != nil {
		args = append(args, *upd.IsTemplate)
		sets = append(sets, fmt.Sprintf("is_template = $%d", len(args)))
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING `+documentColumns,
		strings.Join(sets, ", "), len(args))

	return scanDocument(r.db.QueryRowContext(ctx, q, args...))
}

// UpdateOCRText overwrites the extracted-text field of a document row.
func (r *DocumentPostgres) UpdateOCRText(ctx context.Context, id string, text string) error {
	const q = `UPDATE documents SET ocr_text = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, text, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Ignore rows affected; deleting an absent row is not an error here.
	_, _ = res.RowsAffected()
	return nil
}
