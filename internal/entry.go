// Package internal wires configuration, state and the build engine into the
// commands of the docbrief CLI.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/build"
	"github.com/starford/docbrief/internal/extract"
	"github.com/starford/docbrief/internal/mcpserver"
	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/render"
	"github.com/starford/docbrief/internal/scan"
	"github.com/starford/docbrief/internal/state"
	"github.com/starford/docbrief/internal/status"
	"github.com/starford/docbrief/internal/storage"
	"github.com/starford/docbrief/internal/watcher"
	pkgconfig "github.com/starford/docbrief/pkg/config"
)

// Version is reported by the CLI and the MCP server.
var Version = "dev"

// App runs docbrief commands against one validated configuration.
type App struct {
	cfg        *Config
	configPath string
	stdout     io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// New validates the configuration and returns an App. Without WithLogger a
// JSON logger on stderr becomes the process default.
func New(opts ...Option) (*App, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, err
	}

	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.now == nil {
		app.now = time.Now
	}
	if app.logger == nil {
		app.logger = NewLogger(os.Stderr, app.config.App.LogLevel)
		slog.SetDefault(app.logger)
	}

	cfg := app.config
	app.logger.Debug("Configuration loaded",
		slog.String("config", app.configPath),
		slog.String("input_dir", cfg.Project.InputDir),
		slog.String("output", cfg.Project.Output),
		slog.String("state_dir", cfg.Project.StateDir),
		slog.String("backend", cfg.State.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &App{
		cfg:        cfg,
		configPath: app.configPath,
		stdout:     app.stdout,
		logger:     app.logger,
		now:        app.now,
	}, nil
}

// Build runs a full build (see build.Engine.Build) and prints the outcome.
func (a *App) Build(ctx context.Context, force bool) error {
	return a.withEngine(func(e *build.Engine) error {
		res, err := e.Build(ctx, force)
		a.printResult(res)
		return err
	})
}

// Update runs an incremental update and prints the outcome.
func (a *App) Update(ctx context.Context, force bool) error {
	return a.withEngine(func(e *build.Engine) error {
		res, err := e.Update(ctx, force)
		a.printResult(res)
		return err
	})
}

// Scan prints the documents currently in scope, one per line or as a JSON
// array.
func (a *App) Scan(asJSON bool) error {
	s, err := a.scanner()
	if err != nil {
		return err
	}
	docs, err := s.Scan()
	if err != nil {
		return err
	}
	if asJSON {
		if docs == nil {
			docs = []string{}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(docs)
	}
	for _, d := range docs {
		fmt.Fprintln(a.stdout, d)
	}
	return nil
}

// Status prints the read-only project overview.
func (a *App) Status() error {
	m, err := a.loadManifest()
	if err != nil {
		return err
	}
	paths := status.Paths{
		Config:   a.configPath,
		InputDir: a.cfg.Project.InputDir,
		Output:   a.cfg.Project.Output,
		StateDir: a.cfg.Project.StateDir,
		Backend:  a.cfg.State.Backend,
	}
	status.Write(a.stdout, status.New(paths, m, status.DefaultRecent), a.now())
	return nil
}

// Reset deletes the state directory and, with removeSummary, the report.
// It is used when the document set is swapped and the old changelog no
// longer applies.
func (a *App) Reset(removeSummary bool) error {
	dir := filepath.Clean(a.cfg.Project.StateDir)
	if dir == "." || dir == string(filepath.Separator) {
		return apperr.Configuration("refusing to reset state_dir %q", a.cfg.Project.StateDir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return apperr.IO("reset: remove state dir", err)
	}
	fmt.Fprintf(a.stdout, "Removed state: %s\n", dir)

	if removeSummary {
		if err := os.Remove(a.cfg.Project.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperr.IO("reset: remove report", err)
		}
		fmt.Fprintf(a.stdout, "Removed report: %s\n", a.cfg.Project.Output)
	}
	a.logger.Info("project reset", slog.String("state_dir", dir), slog.Bool("summary", removeSummary))
	return nil
}

// Watch runs one update, then keeps the report current as documents change
// until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Watch(ctx context.Context, debounce time.Duration) error {
	return a.withEngine(func(e *build.Engine) error {
		res, err := e.Update(ctx, false)
		a.printResult(res)
		if err != nil {
			return err
		}

		skip, err := a.watchSkip()
		if err != nil {
			return err
		}

		g, gCtx := errgroup.WithContext(ctx)
		wctx, stop := context.WithCancel(gCtx)
		defer stop()

		g.Go(func() error {
			defer stop()
			return watcher.Watch(wctx, e, watcher.Options{
				Root:     a.cfg.Project.InputDir,
				Debounce: debounce,
				Skip:     skip,
			}, a.logger, func(res *build.Result, err error) {
				if err == nil && res.Changed() {
					a.printResult(res)
				}
			})
		})

		// Handle shutdown signals.
		g.Go(func() error {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				a.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			case <-wctx.Done():
			}
			stop()
			return nil
		})

		return g.Wait()
	})
}

// ServeMCP serves the read-only MCP tools on stdin/stdout.
func (a *App) ServeMCP() error {
	a.logger.Info("MCP server starting", slog.String("transport", "stdio"))
	return mcpserver.New(manifestLoader{a}, Version).ServeStdio()
}

// Init writes a default configuration to path when it is missing, applies
// the inputDir and output overrides, creates the state directory and an
// empty report.
func Init(path, inputDir, output string, stdout io.Writer) error {
	cfg := NewDefaultConfig()
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if exists {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return err
		}
	}

	if inputDir != "" {
		cfg.Project.InputDir = inputDir
	}
	if output != "" {
		cfg.Project.Output = output
	}
	if !exists || inputDir != "" || output != "" {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := pkgconfig.Save(path, cfg); err != nil {
			return err
		}
	}

	if _, err := storage.NewFS(cfg.Project.StateDir); err != nil {
		return apperr.IO("init: state dir", err)
	}

	if _, err := os.Stat(cfg.Project.Output); errors.Is(err, os.ErrNotExist) {
		r, err := render.New(render.Project{Name: cfg.Project.Name, Description: cfg.Project.Description}, cfg.Project.Output, cfg.Render.Template)
		if err != nil {
			return err
		}
		if err := r.Render(nil, nil, models.NewManifest()); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Initialized docbrief project (config: %s)\n", path)
	return nil
}

func (a *App) scanner() (*scan.Scanner, error) {
	return scan.New(a.cfg.Scan.Options(a.cfg.Project.InputDir), a.logger)
}

// withEngine assembles the build engine for one command and closes its
// store afterwards.
func (a *App) withEngine(fn func(e *build.Engine) error) error {
	dir, err := storage.NewFS(a.cfg.Project.StateDir)
	if err != nil {
		return apperr.IO("state dir", err)
	}
	store, err := state.Open(a.cfg.State.Backend, dir)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := a.scanner()
	if err != nil {
		return err
	}
	r, err := render.New(render.Project{
		Name:        a.cfg.Project.Name,
		Description: a.cfg.Project.Description,
	}, a.cfg.Project.Output, a.cfg.Render.Template)
	if err != nil {
		return err
	}

	e := build.New(s, extract.NewRegistry(a.cfg.Extract.MaxCharsPerFile), store, a.cfg.Summarize.Options(),
		build.WithRenderer(r),
		build.WithLogger(a.logger),
		build.WithClock(a.now),
	)
	return fn(e)
}

// loadManifest reads the manifest without creating any state on disk.
func (a *App) loadManifest() (*models.Manifest, error) {
	dir := a.cfg.Project.StateDir
	file := state.ManifestFile
	if a.cfg.State.Backend == state.BackendSQLite {
		file = state.DatabaseFile
	}
	if _, err := os.Stat(filepath.Join(dir, file)); errors.Is(err, os.ErrNotExist) {
		return models.NewManifest(), nil
	}

	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, apperr.IO("state dir", err)
	}
	store, err := state.Open(a.cfg.State.Backend, fs)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load()
}

type manifestLoader struct {
	app *App
}

func (l manifestLoader) Load() (*models.Manifest, error) {
	return l.app.loadManifest()
}

// watchSkip ignores events for the state directory and the report when they
// live inside the input directory.
func (a *App) watchSkip() (func(string) bool, error) {
	stateDir, err := filepath.Abs(a.cfg.Project.StateDir)
	if err != nil {
		return nil, err
	}
	output, err := filepath.Abs(a.cfg.Project.Output)
	if err != nil {
		return nil, err
	}
	return func(p string) bool {
		abs, err := filepath.Abs(p)
		if err != nil {
			return false
		}
		return abs == output || abs == stateDir || strings.HasPrefix(abs, stateDir+string(filepath.Separator))
	}, nil
}

func (a *App) printResult(res *build.Result) {
	if res == nil {
		return
	}
	verb := "Updated"
	if res.Initial {
		verb = "Built"
	}
	fmt.Fprintf(a.stdout, "%s summary: %d added, %d updated, %d removed, %d unchanged -> %s\n",
		verb, res.Added, res.Updated, res.Removed, res.Skipped, a.cfg.Project.Output)
}
