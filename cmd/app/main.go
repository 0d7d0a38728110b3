package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/munin/internal"
	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/mcpserver"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/router"
	"github.com/starford/munin/internal/search"
	"github.com/starford/munin/internal/storage"
	pkgconfig "github.com/starford/munin/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runRoute(ctx context.Context, cmd *cli.Command) error {
	store, err := storage.NewFS(cmd.String("root"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var when time.Time
	if v := cmd.String("when"); v != "" {
		when, err = time.ParseInLocation("2006-01-02T15:04", v, time.Local)
		if err != nil {
			when, err = time.Parse(time.RFC3339, v)
		}
		if err != nil {
			return fmt.Errorf("invalid --when timestamp: %s", v)
		}
	}

	rt := router.New(store, nil)
	res, err := rt.Route(models.Note{
		Text:   cmd.String("text"),
		Source: cmd.String("source"),
		When:   when,
	})
	if err != nil {
		return err
	}

	fmt.Println(res.AbsPath)
	return nil
}

func runFind(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: munin find <query>")
	}

	hits, err := search.Find(cmd.String("root"), query, int(cmd.Int("limit")))
	if err != nil {
		if errors.Is(err, apperr.ErrRootMissing) {
			// Diagnostic goes to stdout; the non-nil return still exits 1.
			fmt.Printf("memory root %s does not exist, route a note first\n", cmd.String("root"))
			return fmt.Errorf("find: %w", apperr.ErrRootMissing)
		}
		return err
	}

	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("[%d] %s: %s\n", h.Score, h.Path, h.Excerpt)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	// MCP speaks JSON-RPC on stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	rt := router.New(store, nil)
	return mcpserver.New(rt, store, db).ServeStdio()
}

func runReindex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	counts, err := db.CategoryCounts()
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("indexed %d files\n", total)
	return nil
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "munin",
		Usage: "Route free-text notes into a Markdown memory tree and search them back out",
		Commands: []*cli.Command{
			{
				Name:   "route",
				Usage:  "Classify a note and append it to the memory tree",
				Action: runRoute,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"t"},
						Usage:    "Raw note text",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source surface label",
						Value: "manual",
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Memory root directory",
						Value: "memory",
					},
					&cli.StringFlag{
						Name:  "when",
						Usage: "Timestamp override (2006-01-02T15:04 or RFC 3339)",
					},
				},
			},
			{
				Name:      "find",
				Usage:     "Score memory files by occurrence count and print the top matches",
				ArgsUsage: "<query>",
				Action:    runFind,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "root",
						Usage: "Memory root directory",
						Value: "memory",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultLimit,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with the SQLite catalog and file watcher",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the SQLite catalog from the memory tree",
				Action: runReindex,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}
	return cmd
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
