// Package storage contains the blob store abstraction and the
// content-addressed naming scheme for uploaded documents. Blobs are
// addressed by a relative key scoped to a storage namespace: documents
// that belong to a case live under "case_<id>/", everything else under
// "general/".
package storage

import (
	"context"
	"io"
)

// GeneralNamespace is the namespace for documents without a case reference.
const GeneralNamespace = "general"

// Store is the blob store interface. Implementations must be safe for
// concurrent use; namespace directories are created on demand and the
// creation must be idempotent.
type Store interface {
	// Save writes the full content under the given relative key and
	// returns only when the bytes are durably written.
	Save(ctx context.Context, key string, content []byte) error
	// Open returns a reader over the blob stored under key.
	// The caller is responsible for closing it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob under key. Deleting a missing blob is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// Namespace returns the storage namespace for an optional case id.
func Namespace(caseID *string) string {
	if caseID != nil && *caseID != "" {
		return "case_" + *caseID
	}
	return GeneralNamespace
}

// Key joins a namespace and a storage filename into a relative blob key.
func Key(namespace, filename string) string {
	return namespace + "/" + filename
}
