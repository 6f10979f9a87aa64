package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"gavel/internal/catalog"
	"gavel/internal/config"
	"gavel/internal/jobs"
	"gavel/internal/logging"
	"gavel/internal/pipeline"
	"gavel/internal/workspace"
)

// Daemon coordinates the API server and background maintenance and
// enforces single-instance execution.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        jobs.Store
	catalog      *catalog.Catalog
	orchestrator *pipeline.Orchestrator
	workspaces   *workspace.Manager

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store jobs.Store, cat *catalog.Catalog, orchestrator *pipeline.Orchestrator, workspaces *workspace.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || cat == nil || orchestrator == nil || workspaces == nil {
		return nil, errors.New("daemon requires config, store, catalog, orchestrator, and workspaces")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "gaveld.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		catalog:      cat,
		orchestrator: orchestrator,
		workspaces:   workspaces,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and begins the
// stale workspace sweep.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gavel daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	go d.sweepLoop(runCtx)

	d.running.Store(true)
	d.logger.Info("gavel daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server, waits for in-flight jobs, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.orchestrator.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("gavel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr returns the bound API address once the daemon has started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	maxAge := time.Duration(d.cfg.Workspace.StaleAfterHours) * time.Hour
	if maxAge <= 0 {
		return
	}

	d.sweepOnce(ctx, maxAge)
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweepOnce(ctx, maxAge)
		}
	}
}

func (d *Daemon) sweepOnce(ctx context.Context, maxAge time.Duration) {
	result := d.workspaces.CleanStale(ctx, maxAge, d.logger)
	if len(result.Removed) > 0 {
		d.logger.Info("stale workspace sweep finished",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
		)
	}
}
