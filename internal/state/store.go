// Package state persists the project manifest. Two backends share the Store
// interface: a JSON file (default) and a SQLite database. Both persist a
// manifest atomically.
package state

import (
	"fmt"
	"path/filepath"

	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/storage"
)

// Backend names accepted in configuration.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// File names inside the state directory.
const (
	ManifestFile = "manifest.json"
	DatabaseFile = "manifest.db"
)

// Store loads and saves the manifest. Load on a fresh project returns an
// empty manifest; Save replaces the persisted state in one atomic step.
type Store interface {
	Load() (*models.Manifest, error)
	Save(m *models.Manifest) error
	Close() error
}

// Open returns the Store for backend rooted in the state directory.
func Open(backend string, dir storage.Provider) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(dir), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir.Root(), DatabaseFile))
	default:
		return nil, fmt.Errorf("state: unknown backend %q", backend)
	}
}
