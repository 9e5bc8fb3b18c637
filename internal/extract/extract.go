// Package extract turns documents into plain paragraph text for the
// summarizer. Paragraphs are trimmed, empty ones dropped, and the rest joined
// with "\n".
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/docbrief/internal/apperr"
)

// DefaultMaxChars is the per-document character budget.
const DefaultMaxChars = 12000

// Extractor returns the paragraph text of the document at path.
type Extractor interface {
	Extract(path string) (string, error)
}

// Func adapts a function returning paragraphs to a single-format reader.
type Func func(path string) ([]string, error)

// Registry dispatches to a format reader by file extension and applies the
// character budget.
type Registry struct {
	maxChars int
	readers  map[string]Func
}

// NewRegistry returns a Registry with the built-in readers for .docx,
// .html/.htm, .txt and .md/.markdown. maxChars <= 0 selects DefaultMaxChars.
func NewRegistry(maxChars int) *Registry {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	r := &Registry{maxChars: maxChars, readers: map[string]Func{}}
	r.Register(".docx", Docx)
	r.Register(".html", HTML)
	r.Register(".htm", HTML)
	r.Register(".txt", Text)
	r.Register(".md", Markdown)
	r.Register(".markdown", Markdown)
	return r
}

// Register installs fn for files ending in ext (case-insensitive).
func (r *Registry) Register(ext string, fn Func) {
	r.readers[strings.ToLower(ext)] = fn
}

// Extract reads path with the reader for its extension. Any failure is an
// apperr.ErrExtraction.
func (r *Registry) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := r.readers[ext]
	if !ok {
		return "", apperr.Extraction(path, fmt.Errorf("unsupported file type %q", ext))
	}
	paras, err := fn(path)
	if err != nil {
		return "", apperr.Extraction(path, err)
	}
	return Truncate(Join(paras), r.maxChars), nil
}

// Join trims paragraphs, drops empty ones and joins the rest with "\n".
func Join(paras []string) string {
	kept := make([]string, 0, len(paras))
	for _, p := range paras {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n")
}

// Truncate cuts s to at most n characters (runes).
func Truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
