package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"casedocs/internal/filetype"
	"casedocs/internal/model"
	"casedocs/internal/repository"
	"casedocs/internal/storage"
)

// OCRGateway is the slice of the OCR client the document service depends
// on. The client is injected, never reached through a global.
type OCRGateway interface {
	// Enabled reports whether OCR is switched on by configuration.
	Enabled() bool
	// CheckAvailability reports whether the model server answers. Never
	// returns an error; unreachable simply means false.
	CheckAvailability(ctx context.Context) bool
	// OCRDocument extracts text from a PDF file on disk.
	OCRDocument(ctx context.Context, pdfPath string) (string, error)
}

// UploadInput carries everything needed to ingest one document.
type UploadInput struct {
	Content          []byte
	OriginalFilename string
	CaseID           *string
	DocumentType     model.DocumentType
	DocumentDate     *time.Time
	Description      *string
	// Tags is the raw client value: a JSON array or a comma-separated string.
	Tags       string
	IsTemplate bool
	// AutoOCR requests text extraction after the upload commits. Extraction
	// failures never fail the upload.
	AutoOCR   bool
	CreatedBy string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// OCRStatus reports the state of the OCR subsystem.
type OCRStatus struct {
	Enabled   bool `json:"enabled"`
	Available bool `json:"available"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the content, persists the blob and the metadata row,
	// and optionally extracts text from PDFs. The metadata insert is the
	// commit point: once the row exists the upload has succeeded, whatever
	// OCR does afterwards.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents matching the filter using limit/offset and a
	// total count.
	List(ctx context.Context, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// Update applies a partial metadata update and returns the new record.
	Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.Document, error)

	// Delete removes a document's metadata row and, best effort, its blob.
	Delete(ctx context.Context, id string) error

	// Download returns the document record and a reader over its blob.
	Download(ctx context.Context, id string) (*model.Document, io.ReadCloser, error)

	// RunOCR re-runs text extraction for a stored PDF and persists the
	// result, replacing any previous text.
	RunOCR(ctx context.Context, id string) (string, error)

	// OCRHealth reports whether OCR is enabled and the model server reachable.
	OCRHealth(ctx context.Context) OCRStatus
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	validator *filetype.Validator
	store     storage.Store
	docs      repository.DocumentRepository
	cases     repository.CaseRepository
	ocr       OCRGateway
	log       *logrus.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	validator *filetype.Validator,
	store storage.Store,
	docs repository.DocumentRepository,
	cases repository.CaseRepository,
	ocr OCRGateway,
	log *logrus.Logger,
) DocumentService {
	return &documentService{
		validator: validator,
		store:     store,
		docs:      docs,
		cases:     cases,
		ocr:       ocr,
		log:       log,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if len(in.Content) == 0 {
		return nil, ErrEmptyFile
	}
	if !in.DocumentType.Valid() {
		return nil, ErrInvalidDocumentType
	}

	// Resolve the case reference before touching storage so a bad reference
	// leaves no partial state behind.
	if in.CaseID != nil && *in.CaseID != "" {
		if _, err := s.cases.FindByID(ctx, *in.CaseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrCaseNotFound
			}
			return nil, fmt.Errorf("resolve case: %w", err)
		}
	} else {
		in.CaseID = nil
	}

	info, err := s.validator.Validate(in.Content, in.OriginalFilename)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	name := storage.StorageName(in.Content, in.OriginalFilename, now)
	key := storage.Key(storage.Namespace(in.CaseID), name)
	if err := s.store.Save(ctx, key, in.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	doc := &model.Document{
		ID:               uuid.New().String(),
		CaseID:           in.CaseID,
		DocumentType:     in.DocumentType,
		Filename:         name,
		OriginalFilename: in.OriginalFilename,
		StoragePath:      key,
		Size:             int64(len(in.Content)),
		ContentType:      info.MIME,
		FileFormat:       info.Format,
		UploadDate:       now,
		DocumentDate:     in.DocumentDate,
		Description:      in.Description,
		Tags:             ParseTags(in.Tags),
		Version:          1,
		IsTemplate:       in.IsTemplate,
		CreatedBy:        in.CreatedBy,
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the blob so storage does not drift from the DB.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Past the commit point. OCR is strictly additive from here on.
	if in.AutoOCR && info.MIME == filetype.MIMEPDF && s.ocr.Enabled() {
		if text := s.tryOCR(ctx, stored); text != "" {
			stored.OCRText = &text
		}
	}
	return stored, nil
}

// tryOCR extracts and persists text for a freshly uploaded PDF. Every
// failure is logged and swallowed: the upload has already succeeded.
func (s *documentService) tryOCR(ctx context.Context, doc *model.Document) string {
	path, cleanup, err := s.materialize(ctx, doc.StoragePath)
	if err != nil {
		s.log.WithError(err).WithField("document_id", doc.ID).Warn("automatic ocr: fetch blob failed")
		return ""
	}
	defer cleanup()

	text, err := s.ocr.OCRDocument(ctx, path)
	if err != nil {
		s.log.WithError(err).WithField("document_id", doc.ID).Warn("automatic ocr failed")
		return ""
	}
	if text == "" {
		return ""
	}
	if err := s.docs.UpdateOCRText(ctx, doc.ID, text); err != nil {
		s.log.WithError(err).WithField("document_id", doc.ID).Warn("automatic ocr: persist text failed")
		return ""
	}
	return text
}

// materialize copies a blob to a local temp file so the rasterizer can
// read it, regardless of which store backend holds it. The returned
// cleanup removes the file.
func (s *documentService) materialize(ctx context.Context, key string) (string, func(), error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	f, err := os.CreateTemp("", "casedocs_ocr_*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("copy blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns filtered, paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.docs.List(ctx, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Update applies a partial metadata update.
func (s *documentService) Update(ctx context.Context, id string, upd model.DocumentUpdate) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if upd.DocumentType != nil && !upd.DocumentType.Valid() {
		return nil, ErrInvalidDocumentType
	}
	doc, err := s.docs.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes the metadata row and tries to remove the blob. A blob
// that cannot be removed is logged and left behind rather than keeping the
// record alive.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"document_id":  id,
			"storage_path": doc.StoragePath,
		}).Warn("delete blob failed, removing record anyway")
	}
	return s.docs.Delete(ctx, id)
}

// Download returns the record and a reader over the stored blob. The
// caller owns the reader.
func (s *documentService) Download(ctx context.Context, id string) (*model.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return doc, rc, nil
}

// RunOCR re-runs extraction for a stored PDF. Unlike the automatic pass
// during upload, failures here are reported to the caller.
func (s *documentService) RunOCR(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.ContentType != filetype.MIMEPDF {
		return "", ErrNotPDF
	}
	if !s.ocr.Enabled() {
		return "", ErrOCRUnavailable
	}

	path, cleanup, err := s.materialize(ctx, doc.StoragePath)
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := s.ocr.OCRDocument(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text recognized", ErrOCRFailed)
	}
	if err := s.docs.UpdateOCRText(ctx, id, text); err != nil {
		return "", fmt.Errorf("persist ocr text: %w", err)
	}
	return text, nil
}

// OCRHealth reports the state of the OCR subsystem.
func (s *documentService) OCRHealth(ctx context.Context) OCRStatus {
	st := OCRStatus{Enabled: s.ocr.Enabled()}
	if st.Enabled {
		st.Available = s.ocr.CheckAvailability(ctx)
	}
	return st
}
