package checksum

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docbrief/internal/apperr"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSum_KnownVector(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Sum(abc) = %q, want %q", got, want)
	}
}

func TestFile_MatchesSum(t *testing.T) {
	dir := t.TempDir()
	// Larger than one chunk so the streaming path is exercised.
	data := []byte(strings.Repeat("docbrief", chunkSize/4))
	p := writeFile(t, dir, "big.bin", data)

	got, err := File(p)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != Sum(data) {
		t.Errorf("File digest %q != Sum digest %q", got, Sum(data))
	}
	if len(got) != 64 {
		t.Errorf("digest length = %d, want 64", len(got))
	}
}

func TestFile_SingleByteFlipChangesDigest(t *testing.T) {
	dir := t.TempDir()
	data := []byte("結論\nリスクは低い。")
	a := writeFile(t, dir, "a.txt", data)

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0x01
	b := writeFile(t, dir, "b.txt", flipped)

	da, _ := File(a)
	db, _ := File(b)
	if da == db {
		t.Error("flipping one byte should change the digest")
	}
}

func TestFile_IdenticalContentDistinctPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", []byte("same"))
	b := writeFile(t, dir, "b.txt", []byte("same"))

	da, _ := File(a)
	db, _ := File(b)
	if da != db {
		t.Errorf("identical content should hash equal: %q vs %q", da, db)
	}
}

func TestFile_MissingIsIOError(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.docx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, apperr.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}
