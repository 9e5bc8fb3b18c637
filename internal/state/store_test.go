package state

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/storage"
)

func testDir(t *testing.T) *storage.FS {
	t.Helper()
	dir, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func sampleManifest() *models.Manifest {
	m := models.NewManifest()
	m.GeneratedAt = "2026-10-18T01:02:03Z"
	m.Files["docs/a.docx"] = models.FileRecord{
		Fingerprint: strings.Repeat("a", 64),
		MTime:       time.Date(2026, 10, 17, 9, 30, 0, 500, time.UTC),
		Summary:     []string{"結論 — リスクは低い。", "概要"},
	}
	m.Files["docs/b.docx"] = models.FileRecord{
		Fingerprint: strings.Repeat("b", 64),
		MTime:       time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Summary:     []string{},
	}
	m.Changelog = append(m.Changelog,
		models.ChangeEntry{Date: "2026-10-17", Target: "docs/a.docx", Message: "Added (new file)."},
		models.ChangeEntry{Date: "2026-10-17", Target: models.TargetAll, Message: "Initial build: 2 file(s) processed."},
	)
	return m
}

func mustEncode(t *testing.T, m *models.Manifest) []byte {
	t.Helper()
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	want := sampleManifest()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(mustEncode(t, got), mustEncode(t, want)) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", mustEncode(t, got), mustEncode(t, want))
	}
}

func TestJSONStore_RoundTrip(t *testing.T) {
	roundTrip(t, NewJSONStore(testDir(t)))
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), DatabaseFile))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	roundTrip(t, s)
}

func TestJSONStore_MissingIsEmpty(t *testing.T) {
	m, err := NewJSONStore(testDir(t)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Tracked() || len(m.Changelog) != 0 || m.Version != models.ManifestVersion {
		t.Errorf("expected empty manifest, got %+v", m)
	}
}

func TestJSONStore_CorruptIsIOError(t *testing.T) {
	dir := testDir(t)
	_ = dir.Write(ManifestFile, []byte("{not json"))
	_, err := NewJSONStore(dir).Load()
	if !errors.Is(err, apperr.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestJSONStore_KeepsNonASCII(t *testing.T) {
	dir := testDir(t)
	if err := NewJSONStore(dir).Save(sampleManifest()); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir.Root(), ManifestFile))
	if !strings.Contains(string(raw), "リスクは低い") {
		t.Errorf("expected verbatim UTF-8 in manifest, got %s", raw)
	}
	if !strings.Contains(string(raw), "\n  \"version\": 1") {
		t.Errorf("expected indented manifest, got %s", raw)
	}
}

func TestSQLiteStore_ChangelogAppendOnly(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), DatabaseFile))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := sampleManifest()
	if err := s.Save(m); err != nil {
		t.Fatal(err)
	}
	m.Changelog = append(m.Changelog, models.ChangeEntry{Date: "2026-10-18", Target: "docs/b.docx", Message: "Removed from scan scope."})
	delete(m.Files, "docs/b.docx")
	if err := s.Save(m); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, _ := s.Load()
	if len(got.Changelog) != 3 || got.Changelog[2].Message != "Removed from scan scope." {
		t.Errorf("changelog = %+v", got.Changelog)
	}
	if _, ok := got.Files["docs/b.docx"]; ok {
		t.Error("removed file still stored")
	}

	m.Changelog = m.Changelog[:1]
	if err := s.Save(m); !errors.Is(err, apperr.ErrIO) {
		t.Errorf("truncating the changelog should fail, got %v", err)
	}
	got, _ = s.Load()
	if len(got.Changelog) != 3 {
		t.Errorf("failed save must not change stored rows, got %d", len(got.Changelog))
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := testDir(t)
	s, err := Open(BackendJSON, dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Errorf("json backend = %T", s)
	}

	s, err = Open(BackendSQLite, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("sqlite backend = %T", s)
	}

	if _, err := Open("bolt", dir); err == nil {
		t.Error("expected error for unknown backend")
	}
}
