// Package build runs the incremental summarization pass: it reconciles the
// current scan with the manifest, re-summarizes new and changed documents,
// appends changelog entries, persists the manifest once and renders the
// report.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/checksum"
	"github.com/starford/docbrief/internal/diff"
	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/state"
	"github.com/starford/docbrief/internal/summarize"
)

// Changelog messages.
const (
	MsgAdded   = "Added (new file)."
	MsgRemoved = "Removed from scan scope."
)

// MsgUpdated formats the changelog message for a re-summarized document.
func MsgUpdated(s diff.Stats) string {
	return fmt.Sprintf("Updated summary (+%d/-%d bullets).", s.Added, s.Removed)
}

// MsgInitial formats the synthetic entry closing a full pass.
func MsgInitial(n int) string {
	return fmt.Sprintf("Initial build: %d file(s) processed.", n)
}

// Scanner lists the documents currently in scope.
type Scanner interface {
	Scan() ([]string, error)
}

// Extractor turns a document into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// Renderer produces the report from the scan list, the per-document summaries
// and the persisted manifest.
type Renderer interface {
	Render(docs []string, summaries map[string][]string, m *models.Manifest) error
}

// Result describes a finished run.
type Result struct {
	RunID     string
	Initial   bool
	Scanned   int
	Added     int
	Updated   int
	Removed   int
	Skipped   int
	Manifest  *models.Manifest
	Documents []string
}

// Changed reports whether the run touched any FileRecord.
func (r *Result) Changed() bool {
	return r.Added+r.Updated+r.Removed > 0
}

// Engine wires the collaborators of a run. Callers must not run two
// engines against the same state concurrently.
type Engine struct {
	scanner   Scanner
	extractor Extractor
	store     state.Store
	renderer  Renderer
	opts      summarize.Options
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRenderer sets the report renderer. Without one, runs only persist the
// manifest.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an Engine.
func New(scanner Scanner, extractor Extractor, store state.Store, opts summarize.Options, options ...Option) *Engine {
	e := &Engine{
		scanner:   scanner,
		extractor: extractor,
		store:     store,
		opts:      opts,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, o := range options {
		o(e)
	}
	e.logger = e.logger.With(slog.String("component", "build"))
	return e
}

// Build runs a full pass when force is set or nothing is tracked yet: every
// scanned document is summarized and an "Initial build" entry closes the
// changelog. On a populated manifest without force it reconciles like
// Update(ctx, false).
func (e *Engine) Build(ctx context.Context, force bool) (*Result, error) {
	m, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if force || !m.Tracked() {
		return e.run(ctx, m, true, true)
	}
	return e.run(ctx, m, false, false)
}

// Update reconciles the scan with the manifest. When nothing is tracked yet
// it falls back to Build(ctx, true); an empty scan then adds no changelog
// entry.
func (e *Engine) Update(ctx context.Context, force bool) (*Result, error) {
	m, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if !m.Tracked() {
		return e.run(ctx, m, true, true)
	}
	return e.run(ctx, m, force, false)
}

// run plans and applies one pass on a clone of loaded. initial adds the
// closing "Initial build" entry. Nothing is persisted unless every step
// succeeds.
func (e *Engine) run(ctx context.Context, loaded *models.Manifest, force, initial bool) (*Result, error) {
	runID := uuid.New().String()
	logger := e.logger.With(slog.String("run_id", runID))
	logger.Info("build: started", slog.Bool("force", force), slog.Bool("initial", initial))

	docs, err := e.scanner.Scan()
	if err != nil {
		return nil, err
	}

	fingerprints := make(map[string]string, len(docs))
	for _, p := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fp, err := checksum.File(p)
		if err != nil {
			return nil, err
		}
		fingerprints[p] = fp
	}

	next := loaded.Clone()
	res := &Result{RunID: runID, Initial: initial, Scanned: len(docs), Documents: docs}
	now := e.now()
	date := now.Format(time.DateOnly)

	for _, step := range Plan(docs, fingerprints, next, force) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stepLog := logger.With(slog.String("path", step.Path), slog.String("action", step.Action.String()))

		switch step.Action {
		case ActionSkip:
			res.Skipped++
			stepLog.Debug("build: unchanged")
			continue

		case ActionRemove:
			delete(next.Files, step.Path)
			next.Changelog = append(next.Changelog, models.ChangeEntry{Date: date, Target: step.Path, Message: MsgRemoved})
			res.Removed++
			stepLog.Debug("build: removed")
			continue
		}

		rec, err := e.summarizeFile(step)
		if err != nil {
			logger.Error("build: aborted", slog.String("path", step.Path), slog.String("error", err.Error()))
			return nil, err
		}

		msg := MsgAdded
		if step.Action == ActionUpdate {
			stats := diff.Bullets(next.Files[step.Path].Summary, rec.Summary)
			msg = MsgUpdated(stats)
			res.Updated++
		} else {
			res.Added++
		}
		next.Files[step.Path] = rec
		next.Changelog = append(next.Changelog, models.ChangeEntry{Date: date, Target: step.Path, Message: msg})
		stepLog.Debug("build: summarized", slog.Int("bullets", len(rec.Summary)))
	}

	// An empty scan over an empty manifest records nothing, so repeated
	// no-op runs keep the changelog unchanged.
	if initial && (len(docs) > 0 || loaded.Tracked()) {
		next.Changelog = append(next.Changelog, models.ChangeEntry{Date: date, Target: models.TargetAll, Message: MsgInitial(len(docs))})
	}
	next.GeneratedAt = now.UTC().Format(time.RFC3339)

	if err := e.store.Save(next); err != nil {
		return nil, err
	}
	res.Manifest = next

	logger.Info("build: finished",
		slog.Int("scanned", res.Scanned),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated),
		slog.Int("removed", res.Removed),
		slog.Int("skipped", res.Skipped))

	if e.renderer != nil {
		if err := e.renderer.Render(docs, next.Summaries(), next); err != nil {
			return res, fmt.Errorf("render: %w", err)
		}
	}
	return res, nil
}

// summarizeFile extracts and summarizes one document into a fresh record.
func (e *Engine) summarizeFile(step Step) (models.FileRecord, error) {
	info, err := os.Stat(step.Path)
	if err != nil {
		return models.FileRecord{}, apperr.IO("stat "+step.Path, err)
	}
	text, err := e.extractor.Extract(step.Path)
	if err != nil {
		return models.FileRecord{}, err
	}
	return models.FileRecord{
		Fingerprint: step.Fingerprint,
		MTime:       info.ModTime().UTC(),
		Summary:     summarize.Summarize(text, e.opts),
	}, nil
}
