package service

import "errors"

var (
	// ErrIDRequired is returned when an operation is called without an id.
	ErrIDRequired = errors.New("id is required")
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrCaseNotFound is returned when a supplied case reference does not
	// resolve to an existing case. Checked before any I/O.
	ErrCaseNotFound = errors.New("case not found")
	// ErrInvalidDocumentType is returned for a category outside the closed set.
	ErrInvalidDocumentType = errors.New("invalid document type")
	// ErrEmptyFile is returned when the upload carries no bytes.
	ErrEmptyFile = errors.New("file is empty")
	// ErrStorageWrite wraps blob store failures during upload. When it is
	// returned no metadata row has been written.
	ErrStorageWrite = errors.New("store blob")

	// ErrNotPDF is returned by the explicit OCR re-run for non-PDF documents.
	ErrNotPDF = errors.New("ocr is only available for PDF documents")
	// ErrOCRUnavailable means the OCR feature is disabled by configuration
	// or the external model server is down. Non-fatal during upload.
	ErrOCRUnavailable = errors.New("ocr unavailable")
	// ErrOCRFailed means the gateway returned a failure for an explicit
	// re-run. Non-fatal during upload.
	ErrOCRFailed = errors.New("ocr failed")
)
