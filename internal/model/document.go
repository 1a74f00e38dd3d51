package model

import "time"

// DocumentType is the closed set of document categories.
type DocumentType string

const (
	DocumentTypeContract       DocumentType = "contract"
	DocumentTypeCourtFiling    DocumentType = "court_filing"
	DocumentTypeEvidence       DocumentType = "evidence"
	DocumentTypeCorrespondence DocumentType = "correspondence"
	DocumentTypeInvoice        DocumentType = "invoice"
	DocumentTypeOther          DocumentType = "other"
)

// Valid reports whether t is one of the known document categories.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeContract, DocumentTypeCourtFiling, DocumentTypeEvidence,
		DocumentTypeCorrespondence, DocumentTypeInvoice, DocumentTypeOther:
		return true
	}
	return false
}

// Document represents the metadata record of a stored file. The blob itself
// lives in the storage backend under StoragePath; this row is created only
// after the bytes are durably written.
//
// Filename is the generated storage name and is unique within its storage
// namespace; OriginalFilename is user-supplied and may collide.
type Document struct {
	ID               string       `json:"id"`
	CaseID           *string      `json:"case_id,omitempty"`
	DocumentType     DocumentType `json:"document_type"`
	Filename         string       `json:"filename"`
	OriginalFilename string       `json:"original_filename"`
	StoragePath      string       `json:"storage_path"`
	Size             int64        `json:"size"`
	ContentType      string       `json:"content_type"`
	FileFormat       string       `json:"file_format"`
	UploadDate       time.Time    `json:"upload_date"`
	DocumentDate     *time.Time   `json:"document_date,omitempty"`
	Description      *string      `json:"description,omitempty"`
	OCRText          *string      `json:"ocr_text,omitempty"`
	Tags             []string     `json:"tags"`
	Version          int          `json:"version"`
	IsTemplate       bool         `json:"is_template"`
	CreatedBy        string       `json:"created_by"`
}

// DocumentUpdate carries the mutable metadata fields of a document.
// Nil pointers mean "leave unchanged".
type DocumentUpdate struct {
	DocumentType *DocumentType `json:"document_type,omitempty"`
	DocumentDate *time.Time    `json:"document_date,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	IsTemplate   *bool         `json:"is_template,omitempty"`
}
