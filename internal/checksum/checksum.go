// Package checksum computes the content fingerprints used for change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/starford/docbrief/internal/apperr"
)

// chunkSize bounds how much of a document is held in memory while hashing.
const chunkSize = 1 << 20

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File streams the file at path through SHA-256 and returns the hex digest.
// Any read failure is reported as an apperr.ErrIO; a partial digest is never
// returned.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperr.IO("checksum: open "+path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", apperr.IO("checksum: read "+path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
