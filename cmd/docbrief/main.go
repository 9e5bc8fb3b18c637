package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docbrief/internal"
	"github.com/starford/docbrief/internal/watcher"
	pkgconfig "github.com/starford/docbrief/pkg/config"
)

// loadApp reads the config named by --config and builds the application.
func loadApp(cmd *cli.Command) (*internal.App, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return internal.New(
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
	)
}

// withApp adapts an App method into a command action.
func withApp(fn func(ctx context.Context, cmd *cli.Command, app *internal.App) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, app)
	}
}

func forceFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:  "force",
		Usage: usage,
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "docbrief",
		Usage:   "Incrementally summarize Word/HTML/text documents into an AsciiDoc report",
		Version: internal.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "docbrief.yaml",
				Value:       "docbrief.yaml",
				Sources:     cli.EnvVars("DOCBRIEF_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the config, state dir and an empty report if missing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "Override project.input_dir"},
					&cli.StringFlag{Name: "out", Usage: "Override project.output"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return internal.Init(cmd.String("config"), cmd.String("dir"), cmd.String("out"), os.Stdout)
				},
			},
			{
				Name:  "scan",
				Usage: "List the documents currently in scope",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print a JSON array"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Scan(cmd.Bool("json"))
				}),
			},
			{
				Name:  "build",
				Usage: "Summarize every document in scope (initial build)",
				Flags: []cli.Flag{forceFlag("Rebuild even if a manifest exists")},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Build(ctx, cmd.Bool("force"))
				}),
			},
			{
				Name:  "update",
				Usage: "Re-summarize new and changed documents and append to the changelog",
				Flags: []cli.Flag{forceFlag("Reprocess every document in scope")},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Update(ctx, cmd.Bool("force"))
				}),
			},
			{
				Name:  "status",
				Usage: "Show the configuration and manifest overview",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Status()
				}),
			},
			{
				Name:  "reset",
				Usage: "Delete the state dir so the next build starts fresh",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "summary", Usage: "Also delete the generated report"},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Reset(cmd.Bool("summary"))
				}),
			},
			{
				Name:  "watch",
				Usage: "Update the report whenever documents change",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before an update runs",
						Value: watcher.DefaultDebounce,
					},
				},
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.Watch(ctx, cmd.Duration("debounce"))
				}),
			},
			{
				Name:  "mcp",
				Usage: "Serve read-only MCP tools over stdio",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
					return app.ServeMCP()
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
