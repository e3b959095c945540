// Package daemon ties the intake server, the workflow manager, and the
// journal store into a single lifecycle with flock-based locking to prevent
// multiple instances from double-processing platform events.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scribe/internal/config"
	"scribe/internal/journal"
	"scribe/internal/logging"
	"scribe/internal/server"
	"scribe/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *journal.Store
	manager  *workflow.Manager
	intake   *server.Server
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The journal store
// may be nil when journaling is disabled.
func New(cfg *config.Config, store *journal.Store, manager *workflow.Manager, intake *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || manager == nil || intake == nil {
		return nil, errors.New("daemon requires config, workflow manager, and intake server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockDir := cfg.Journal.Dir
	if lockDir == "" {
		lockDir = cfg.Logging.Dir
	}
	lockPath := filepath.Join(lockDir, "scribed.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		intake:   intake,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Start acquires the instance lock and launches the workers and the intake
// server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.manager.Start(runCtx)
	if err := d.intake.Start(runCtx); err != nil {
		d.manager.Stop()
		cancel()
		d.cancel = nil
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("scribe daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.intake.Addr()))
	return nil
}

// Stop shuts down the intake server and workers and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Close stops the daemon and closes the journal store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Running reports whether Start has succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
