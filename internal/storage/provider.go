// Package storage defines the state-directory file abstraction.
package storage

// Provider is the interface for files kept under a project's state directory.
type Provider interface {
	// Root returns the absolute path of the state directory.
	Root() string
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// Exists reports whether a regular file exists at path (relative to root).
	Exists(path string) bool
}
