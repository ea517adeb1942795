package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/mediahub/internal/api/v1"
	"github.com/vmunix/mediahub/internal/config"
	"github.com/vmunix/mediahub/internal/configstore"
	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/migrations"
	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers"
	"github.com/vmunix/mediahub/internal/script"
	"github.com/vmunix/mediahub/internal/search"
	"github.com/vmunix/mediahub/internal/server"
	"github.com/vmunix/mediahub/internal/tasks"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the config at path, or the discovered one when path is
// empty. With nothing to discover the defaults are used.
func loadConfig(path string) (*config.Config, string, error) {
	resolved, err := config.Resolve(path)
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return nil, resolved, err
	}
	return cfg, resolved, nil
}

// app holds every wired component of the daemon.
type app struct {
	db        *sql.DB
	registry  *plugin.Registry
	bus       *events.Bus
	eventLog  *events.EventLog
	tasks     *tasks.Manager
	downloads *download.Manager
	handler   http.Handler
}

func (a *app) Close() error {
	var errs []error
	if a.registry != nil {
		errs = append(errs, a.registry.Close())
	}
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// buildApp wires storage, plugins, search, tasks, downloads and the HTTP API.
func buildApp(ctx context.Context, cfg *config.Config, fs afero.Fs, logger *slog.Logger) (_ *app, err error) {
	db, err := openDB(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a := &app{db: db}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	configs := configstore.New(db)
	if err := plugin.MigrateLegacyConfig(ctx, configs, logger.With("component", "migrate")); err != nil {
		logger.Warn("legacy config migration failed", "error", err)
	}

	builtins := plugin.NewBuiltins()
	if err := providers.Register(builtins, cfg.Plugins.Builtins, logger); err != nil {
		return nil, fmt.Errorf("builtins: %w", err)
	}
	scripts := script.NewLoader(fs, cfg.Plugins.Dir, logger)

	a.eventLog = events.NewEventLog(db)
	a.bus = events.NewBus(a.eventLog, logger.With("component", "events"))

	a.registry = plugin.NewRegistry(configs, plugin.ChainLoader{scripts, builtins}, logger.With("component", "registry"))
	a.registry.SetPublisher(a.bus)

	if cfg.Plugins.DiscoverOnStart {
		res := a.registry.Discover(ctx)
		logger.Info("plugin discovery finished", "succeeded", res.Succeeded, "failed", res.Failed)
	} else if err := loadBuiltins(ctx, a.registry, builtins); err != nil {
		return nil, err
	}

	pool := search.NewPool(a.registry, search.Options{
		Concurrency: cfg.Search.Concurrency,
		Timeout:     cfg.Search.Timeout,
		Rank:        cfg.Search.Rank,
	}, logger)

	a.tasks = tasks.NewManager(tasks.Options{
		Retention:     cfg.Tasks.Retention,
		SweepInterval: cfg.Tasks.SweepInterval,
	}, logger)
	a.tasks.SetPublisher(a.bus)

	a.downloads = download.NewManager(a.registry, download.NewStore(db), logger)
	a.downloads.SetPublisher(a.bus)

	api, err := v1.New(v1.ServerDeps{
		Registry:  a.registry,
		Search:    pool,
		Tasks:     a.tasks,
		Downloads: a.downloads,
		EventLog:  a.eventLog,
	}, version, logger)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	a.handler = v1.LogRequests(mux, logger)

	return a, nil
}

// loadBuiltins registers every compiled-in provider without scanning the
// script directory.
func loadBuiltins(ctx context.Context, reg *plugin.Registry, builtins *plugin.Builtins) error {
	var errs []error
	for _, t := range plugin.Types {
		names, err := builtins.Candidates(ctx, t)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := reg.HotLoad(ctx, t, name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func runServer(configPath string) error {
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(os.Stdout, cfg.Server.LogLevel)
	if path == "" {
		logger.Warn("no config file found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	runner := server.NewRunner(server.Config{
		Addr:           cfg.Addr(),
		PollInterval:   cfg.Downloads.PollInterval,
		EventRetention: cfg.Events.Retention,
	}, server.Components{
		Handler:   a.handler,
		Tasks:     a.tasks,
		Downloads: a.downloads,
		Events:    a.eventLog,
	}, logger)

	logger.Info("server starting",
		"addr", cfg.Addr(),
		"config", path,
		"database", cfg.Database.Path,
		"plugin_dir", cfg.Plugins.Dir,
		"log_level", cfg.Server.LogLevel,
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}
