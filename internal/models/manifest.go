// Package models defines the persisted manifest types for docbrief.
package models

import (
	"maps"
	"slices"
	"time"
)

// ManifestVersion is the schema tag written into new manifests.
const ManifestVersion = 1

// TargetAll is the changelog target used for events covering every document.
const TargetAll = "(all)"

// Manifest is the durable build state of one project.
type Manifest struct {
	Version     int                   `json:"version"`
	GeneratedAt string                `json:"generated_at"`
	Files       map[string]FileRecord `json:"files"`
	Changelog   []ChangeEntry         `json:"changelog"`
}

// FileRecord is the per-document entry of the manifest.
type FileRecord struct {
	Fingerprint string    `json:"fingerprint"`
	MTime       time.Time `json:"mtime"`
	Summary     []string  `json:"summary"`
}

// ChangeEntry is one row of the append-only changelog.
type ChangeEntry struct {
	Date    string `json:"date"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

// NewManifest returns an empty manifest at the current schema version.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		Files:     map[string]FileRecord{},
		Changelog: []ChangeEntry{},
	}
}

// Normalize replaces nil collections so that an empty manifest always
// serializes the same way.
func (m *Manifest) Normalize() {
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	if m.Files == nil {
		m.Files = map[string]FileRecord{}
	}
	if m.Changelog == nil {
		m.Changelog = []ChangeEntry{}
	}
	for k, rec := range m.Files {
		if rec.Summary == nil {
			rec.Summary = []string{}
			m.Files[k] = rec
		}
	}
}

// Clone returns a deep copy of m. Summary slices are copied so the clone can
// be mutated without touching the original.
func (m *Manifest) Clone() *Manifest {
	out := &Manifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Files:       make(map[string]FileRecord, len(m.Files)),
		Changelog:   slices.Clone(m.Changelog),
	}
	for k, rec := range m.Files {
		rec.Summary = slices.Clone(rec.Summary)
		out.Files[k] = rec
	}
	out.Normalize()
	return out
}

// Tracked reports whether the manifest holds any FileRecord.
func (m *Manifest) Tracked() bool {
	return len(m.Files) > 0
}

// Paths returns the tracked identities in sorted order.
func (m *Manifest) Paths() []string {
	return slices.Sorted(maps.Keys(m.Files))
}

// Summaries returns identity -> summary for every tracked document.
func (m *Manifest) Summaries() map[string][]string {
	out := make(map[string][]string, len(m.Files))
	for k, rec := range m.Files {
		out[k] = rec.Summary
	}
	return out
}
