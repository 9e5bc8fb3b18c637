// Package render writes the AsciiDoc report from the manifest.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/storage"
)

//go:embed templates/summary.adoc.tmpl
var templates embed.FS

const defaultTemplate = "templates/summary.adoc.tmpl"

// mtimeLayout is local time to the second, without a zone.
const mtimeLayout = "2006-01-02T15:04:05"

// Project carries the report header.
type Project struct {
	Name        string
	Description string
}

// Renderer renders the report to Output.
type Renderer struct {
	project Project
	output  string
	tmpl    *template.Template
}

// New parses the template and returns a Renderer. An empty templatePath
// selects the built-in template.
func New(project Project, output, templatePath string) (*Renderer, error) {
	var (
		src []byte
		err error
	)
	if templatePath == "" {
		src, err = templates.ReadFile(defaultTemplate)
	} else {
		src, err = os.ReadFile(templatePath)
	}
	if err != nil {
		return nil, fmt.Errorf("render: read template: %w", err)
	}

	tmpl, err := template.New("summary").Funcs(template.FuncMap{"cell": cell}).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	return &Renderer{project: project, output: output, tmpl: tmpl}, nil
}

// Output returns the report path.
func (r *Renderer) Output() string {
	return r.output
}

// FileRow is one document in the report.
type FileRow struct {
	Path        string
	Modified    string
	Fingerprint string
	Summary     []string
}

// Data is the template input.
type Data struct {
	Name        string
	Description string
	GeneratedAt string
	Files       []FileRow
	Changelog   []models.ChangeEntry
}

// Render writes the report. Documents appear in docs order; summaries are
// looked up by identity.
func (r *Renderer) Render(docs []string, summaries map[string][]string, m *models.Manifest) error {
	content, err := r.Bytes(docs, summaries, m)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(r.output, content); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Bytes renders the report into memory.
func (r *Renderer) Bytes(docs []string, summaries map[string][]string, m *models.Manifest) ([]byte, error) {
	data := Data{
		Name:        r.project.Name,
		Description: r.project.Description,
		GeneratedAt: m.GeneratedAt,
		Files:       make([]FileRow, 0, len(docs)),
		Changelog:   m.Changelog,
	}
	for _, p := range docs {
		rec := m.Files[p]
		mtime := rec.MTime
		if mtime.IsZero() {
			if info, err := os.Stat(p); err == nil {
				mtime = info.ModTime()
			}
		}
		row := FileRow{
			Path:        p,
			Fingerprint: rec.Fingerprint,
			Summary:     summaries[p],
		}
		if !mtime.IsZero() {
			row.Modified = mtime.Local().Format(mtimeLayout)
		}
		data.Files = append(data.Files, row)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// cell escapes the AsciiDoc table separator.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
