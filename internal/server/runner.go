// Package server supervises the daemon's long-running components.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Defaults for Config.
const (
	DefaultPollInterval    = 30 * time.Second
	DefaultPruneInterval   = time.Hour
	DefaultShutdownTimeout = 30 * time.Second
)

// Config for the runner.
type Config struct {
	Addr            string
	PollInterval    time.Duration
	EventRetention  time.Duration // zero disables pruning
	PruneInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Sweeper expires old search tasks in the background.
type Sweeper interface {
	StartSweeper(ctx context.Context)
}

// Refresher polls download providers for progress.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Pruner drops old events.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Components are the background parts the runner drives. Nil parts are skipped.
type Components struct {
	Handler   http.Handler
	Tasks     Sweeper
	Downloads Refresher
	Events    Pruner
}

// Runner manages the HTTP server and background jobs.
type Runner struct {
	config Config
	comps  Components
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, comps Components, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = DefaultPruneInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Runner{config: cfg, comps: comps, logger: logger}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve runs every component on ln. It blocks until ctx is canceled or a
// component fails, then shuts the HTTP server down gracefully. A clean
// shutdown returns nil.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	if r.comps.Tasks != nil {
		r.comps.Tasks.StartSweeper(ctx)
	}
	if r.comps.Downloads != nil {
		g.Go(func() error {
			r.runPoller(ctx)
			return nil
		})
	}
	if r.comps.Events != nil && r.config.EventRetention > 0 {
		g.Go(func() error {
			r.runPruner(ctx)
			return nil
		})
	}

	handler := r.comps.Handler
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		r.logger.Info("http server stopped")
		return nil
	})

	return g.Wait()
}

func (r *Runner) runPoller(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	log := r.logger.With("component", "poller")
	log.Info("poller started", "interval", r.config.PollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info("poller stopped")
			return
		case <-ticker.C:
			if err := r.comps.Downloads.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Error("refresh failed", "error", err)
			}
		}
	}
}

func (r *Runner) runPruner(ctx context.Context) {
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	log := r.logger.With("component", "pruner")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.comps.Events.Prune(ctx, r.config.EventRetention)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("prune events failed", "error", err)
				}
				continue
			}
			if n > 0 {
				log.Info("pruned events", "count", n, "retention", r.config.EventRetention)
			}
		}
	}
}
