package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"pelotarr/internal/config"
	"pelotarr/internal/feedcache"
	"pelotarr/internal/logging"
	"pelotarr/internal/notifications"
	"pelotarr/internal/races"
	"pelotarr/internal/scanner"
	"pelotarr/internal/status"
)

// Daemon coordinates the scan loop, the periodic schedule and the HTTP
// API, and enforces single-instance execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *races.Store
	scanner  *scanner.Scanner
	cache    *feedcache.Cache
	checker  *status.Checker
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock
	cron     *cron.Cron
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *races.Store, sc *scanner.Scanner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || sc == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, scanner, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "pelotarrd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		scanner:  sc,
		cache:    feedcache.New(cfg, logger),
		checker:  status.New(cfg, store),
		notifier: notifications.NewService(cfg),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the instance lock, launches the scan loop and schedule,
// starts the API listener and requests an initial scan.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another pelotarr daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		if err := d.scanner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("scan loop exited", logging.Error(err))
		}
	}()

	if interval := d.cfg.Scanner.Interval; interval > 0 {
		d.cron = cron.New()
		if _, err := d.cron.AddFunc(fmt.Sprintf("@every %dm", interval), d.scanner.RequestScan); err != nil {
			d.Stop()
			return fmt.Errorf("schedule scan: %w", err)
		}
		d.cron.Start()
		d.logger.Info("periodic scan scheduled", logging.Int("interval_minutes", interval))
	} else {
		d.logger.Info("periodic scan disabled")
	}

	if err := d.api.start(); err != nil {
		d.Stop()
		return err
	}

	d.running.Store(true)
	d.logger.Info("pelotarr daemon started", "lock", d.lockPath, "bind", d.cfg.Paths.APIBind)
	d.scanner.RequestScan()
	return nil
}

// Stop shuts down the schedule, the API server and the scan loop, and
// releases the instance lock.
func (d *Daemon) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
		d.cron = nil
	}
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	if d.running.Swap(false) {
		d.logger.Info("pelotarr daemon stopped")
	}
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
