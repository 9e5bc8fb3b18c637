package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Limit < 0 {
		return errors.New("limit must be >= 0")
	}
	return nil
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("DOCBRIEF_TEST_NAME", "expanded")
	p := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(p, []byte("name: ${DOCBRIEF_TEST_NAME}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := sample{Limit: 7}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "expanded" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Limit != 7 {
		t.Errorf("limit = %d, default should survive", s.Limit)
	}
}

func TestLoad_RunsValidation(t *testing.T) {
	s := sample{}
	err := Decode([]byte("limit: -1\n"), "inline", &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := sample{}
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults_Fallback(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yaml")
	_ = os.WriteFile(def, []byte("name: fallback\n"), 0o644)

	s := sample{}
	if err := LoadWithDefaults(filepath.Join(dir, "missing.yaml"), def, &s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.Name != "fallback" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "c.yaml")
	if err := Save(p, &sample{Name: "日本語", Limit: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var got sample
	if err := Load(p, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "日本語" || got.Limit != 3 {
		t.Errorf("round trip = %+v", got)
	}
}
