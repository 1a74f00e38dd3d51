// Package filetype validates uploaded file content against the accepted
// format set. Detection is done on the raw bytes via magic-number
// signatures; the client-supplied filename extension is never trusted.
package filetype

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// allowedFormats maps accepted MIME types to their canonical extension.
var allowedFormats = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/msword": ".doc",
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"text/plain":         ".txt",
}

// MIMEPDF is the detected MIME type that makes a document eligible for OCR.
const MIMEPDF = "application/pdf"

// UnsupportedTypeError is returned when the detected content type is not in
// the accepted set. Detected carries the sniffed MIME type.
type UnsupportedTypeError struct {
	Detected string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %s (allowed: PDF, DOCX, DOC, JPG, PNG, TXT)", e.Detected)
}

// TooLargeError is returned when the payload exceeds the configured size
// ceiling. Limit carries the ceiling in bytes.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large, maximum size is %d bytes", e.Limit)
}

// Info describes a validated file.
type Info struct {
	// MIME is the detected content type, e.g. "application/pdf".
	MIME string
	// Extension is the canonical extension for the detected type, e.g. ".pdf".
	Extension string
	// Format is the upper-cased format label used in metadata, e.g. "PDF".
	Format string
}

// Validator checks raw upload content against the accepted formats and the
// configured size ceiling. It performs pure inspection and has no side effects.
type Validator struct {
	maxSize int64
}

// NewValidator creates a Validator with the given size ceiling in bytes.
func NewValidator(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured size ceiling in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate determines the true content type of the payload and checks it
// against the size ceiling and the accepted set. The filename is only used
// for error context; detection is signature-based.
func (v *Validator) Validate(content []byte, filename string) (Info, error) {
	if v.maxSize > 0 && int64(len(content)) > v.maxSize {
		return Info{}, &TooLargeError{Limit: v.maxSize}
	}

	detected := mimetype.Detect(content)

	// mimetype appends parameters for text types (e.g. "text/plain; charset=utf-8").
	mime := detected.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	ext, ok := allowedFormats[mime]
	if !ok {
		return Info{}, &UnsupportedTypeError{Detected: mime}
	}

	return Info{
		MIME:      mime,
		Extension: ext,
		Format:    strings.ToUpper(strings.TrimPrefix(ext, ".")),
	}, nil
}

// FormatFromName derives the metadata format label from a filename, e.g.
// "scan.PDF" -> "PDF". Used for display fields only, never for validation.
func FormatFromName(filename string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
}
