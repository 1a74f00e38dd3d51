package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ContentHash returns the hex SHA-256 of the content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SanitizeFilename replaces spaces and path separators in a user-supplied
// filename so the result is safe to embed in a storage name.
func SanitizeFilename(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

// StorageName derives the storage filename for an upload:
// <timestamp>_<hash8>_<sanitized original name>.
//
// The 8-character hash prefix keeps names human-debuggable while making
// collisions between concurrent uploads practically impossible. This is a
// naming scheme, not deduplication: identical content uploaded under
// different original names yields different storage names.
func StorageName(content []byte, originalFilename string, now time.Time) string {
	ts := now.Format("20060102_150405")
	hash8 := ContentHash(content)[:8]
	return ts + "_" + hash8 + "_" + SanitizeFilename(originalFilename)
}
