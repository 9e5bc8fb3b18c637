// Package status reports the state of a project without modifying it.
package status

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/starford/docbrief/internal/models"
)

// DefaultRecent is how many changelog entries Write shows.
const DefaultRecent = 5

// Paths names the project locations shown in the header.
type Paths struct {
	Config   string
	InputDir string
	Output   string
	StateDir string
	Backend  string
}

// Report is the read-only view of one project.
type Report struct {
	Paths
	Version       int
	Tracked       int
	ChangelogRows int
	Bullets       int
	GeneratedAt   time.Time
	Recent        []models.ChangeEntry
}

// New summarizes m. At most recent changelog entries are kept, newest last.
func New(paths Paths, m *models.Manifest, recent int) Report {
	r := Report{
		Paths:         paths,
		Version:       m.Version,
		Tracked:       len(m.Files),
		ChangelogRows: len(m.Changelog),
	}
	for _, rec := range m.Files {
		r.Bullets += len(rec.Summary)
	}
	if t, err := time.Parse(time.RFC3339, m.GeneratedAt); err == nil {
		r.GeneratedAt = t
	}
	if recent > 0 && len(m.Changelog) > 0 {
		r.Recent = m.Changelog[max(0, len(m.Changelog)-recent):]
	}
	return r
}

// Write prints r to w. now anchors the relative build time.
func Write(w io.Writer, r Report, now time.Time) {
	title := color.New(color.FgHiCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	ok := color.New(color.FgHiGreen)
	warn := color.New(color.FgHiYellow)

	title.Fprintln(w, "DocBrief Status")
	fmt.Fprintf(w, "  config          : %s\n", r.Config)
	fmt.Fprintf(w, "  input_dir       : %s\n", r.InputDir)
	fmt.Fprintf(w, "  output          : %s\n", r.Output)
	fmt.Fprintf(w, "  state           : %s (%s)\n", r.StateDir, r.Backend)
	fmt.Fprintf(w, "  manifest version: %d\n", r.Version)
	fmt.Fprintf(w, "  tracked files   : %s\n", humanize.Comma(int64(r.Tracked)))
	fmt.Fprintf(w, "  summary bullets : %s\n", humanize.Comma(int64(r.Bullets)))
	fmt.Fprintf(w, "  changelog rows  : %s\n", humanize.Comma(int64(r.ChangelogRows)))

	if r.GeneratedAt.IsZero() {
		warn.Fprintln(w, "  last build      : never")
	} else {
		fmt.Fprint(w, "  last build      : ")
		ok.Fprintf(w, "%s", humanize.RelTime(r.GeneratedAt, now, "ago", "from now"))
		dim.Fprintf(w, " (%s)\n", r.GeneratedAt.Format(time.RFC3339))
	}

	if len(r.Recent) == 0 {
		return
	}
	fmt.Fprintln(w)
	title.Fprintln(w, "Recent changes")
	for _, e := range r.Recent {
		dim.Fprintf(w, "  %s ", e.Date)
		fmt.Fprintf(w, "%s: %s\n", e.Target, e.Message)
	}
}
