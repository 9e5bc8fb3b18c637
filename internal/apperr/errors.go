// Package apperr defines the error taxonomy shared by the build engine and its
// collaborators. Callers classify failures with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks unreadable documents and unreadable or corrupt manifests.
	ErrIO = errors.New("io error")
	// ErrConfiguration marks malformed scan, extract or summarize options.
	ErrConfiguration = errors.New("configuration error")
	// ErrExtraction marks a document that could not be turned into text.
	ErrExtraction = errors.New("extraction error")
	// ErrNotFound marks a lookup for an identity the manifest does not track.
	ErrNotFound = errors.New("not found")
)

// IO wraps err as an ErrIO, prefixing it with op.
func IO(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

// Configuration returns an ErrConfiguration describing the problem.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Extraction wraps err as an ErrExtraction for the given document.
func Extraction(path string, err error) error {
	return fmt.Errorf("extract %s: %w: %w", path, ErrExtraction, err)
}
