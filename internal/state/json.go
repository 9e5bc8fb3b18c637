package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/storage"
)

// JSONStore keeps the manifest as an indented JSON document.
type JSONStore struct {
	dir storage.Provider
}

// NewJSONStore creates a JSONStore writing ManifestFile under dir.
func NewJSONStore(dir storage.Provider) *JSONStore {
	return &JSONStore{dir: dir}
}

// Load reads the manifest. A missing file yields an empty manifest; an
// unreadable or corrupt file is an apperr.ErrIO.
func (s *JSONStore) Load() (*models.Manifest, error) {
	data, err := s.dir.Read(ManifestFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewManifest(), nil
		}
		return nil, apperr.IO("state: load manifest", err)
	}

	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperr.IO("state: decode manifest", err)
	}
	m.Normalize()
	return &m, nil
}

// Save encodes m and atomically replaces the manifest file.
func (s *JSONStore) Save(m *models.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return apperr.IO("state: encode manifest", err)
	}
	if err := s.dir.Write(ManifestFile, data); err != nil {
		return apperr.IO("state: save manifest", err)
	}
	return nil
}

// Close is a no-op for the JSON backend.
func (s *JSONStore) Close() error { return nil }

// Encode renders m the way it is stored on disk: two-space indent and
// non-ASCII text kept verbatim.
func Encode(m *models.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
