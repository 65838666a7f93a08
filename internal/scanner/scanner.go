package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pelotarr/internal/config"
	"pelotarr/internal/feedcache"
	"pelotarr/internal/logging"
	"pelotarr/internal/matcher"
	"pelotarr/internal/metadata"
	"pelotarr/internal/notifications"
	"pelotarr/internal/organizer"
	"pelotarr/internal/races"
	"pelotarr/internal/resolver"
	"pelotarr/internal/services/jellyfin"
	"pelotarr/internal/transfer"
)

// URLResolver finds a reachable download URL for a matched title.
type URLResolver interface {
	Resolve(ctx context.Context, displayTitle string) (string, bool)
}

// Downloader streams a remote file into staging.
type Downloader interface {
	Download(ctx context.Context, rawURL, destPath string, opts transfer.Options) (int64, error)
}

// Scanner owns the acquisition pipeline: it refreshes feeds, walks the
// unacquired races sequentially and drives each one through match,
// resolve, transfer, metadata and library placement.
type Scanner struct {
	cfg       *config.Config
	store     *races.Store
	cache     *feedcache.Cache
	matcher   *matcher.Matcher
	resolver  URLResolver
	engine    Downloader
	organizer *organizer.Organizer
	jellyfin  jellyfin.Service
	notifier  notifications.Service
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	pending bool
	wake    chan struct{}
}

// New wires a scanner from configuration with default collaborators.
func New(cfg *config.Config, store *races.Store, logger *slog.Logger) *Scanner {
	cache := feedcache.New(cfg, logger)
	return NewWithDependencies(cfg, store, cache,
		matcher.New(cache, cfg, logger),
		resolver.New(cfg, logger),
		transfer.New(logger),
		organizer.New(cfg, logger),
		jellyfin.NewConfiguredService(cfg),
		notifications.NewService(cfg),
		logger)
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(
	cfg *config.Config,
	store *races.Store,
	cache *feedcache.Cache,
	m *matcher.Matcher,
	res URLResolver,
	engine Downloader,
	org *organizer.Organizer,
	jf jellyfin.Service,
	notifier notifications.Service,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		matcher:   m,
		resolver:  res,
		engine:    engine,
		organizer: org,
		jellyfin:  jf,
		notifier:  notifier,
		logger:    logging.WithComponent(logger, "scanner"),
		now:       time.Now,
		wake:      make(chan struct{}, 1),
	}
}

// RequestScan records a scan request. If a scan is already running the
// request is drained after the current pass; concurrent requests coalesce
// into a single rerun.
func (s *Scanner) RequestScan() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Running reports whether a scan pass is currently executing.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run blocks on scan requests until the context is cancelled. Only one
// pass ever executes at a time.
func (s *Scanner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
		for s.takePending() {
			s.setRunning(true)
			s.runOnce(ctx)
			s.setRunning(false)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (s *Scanner) takePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return false
	}
	s.pending = false
	return true
}

func (s *Scanner) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// runOnce refreshes every feed category and then walks the stored races.
// Per-race failures are logged and never abort the batch.
func (s *Scanner) runOnce(ctx context.Context) {
	started := s.now()
	s.logger.Info("scan starting")
	s.cache.RefreshAll(ctx)

	all, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("listing races failed", logging.Error(err))
		return
	}

	var due []races.Race
	for _, race := range all {
		if !race.Acquired {
			due = append(due, race)
		}
	}
	if err := s.notifier.NotifyScanStarted(ctx, len(due)); err != nil {
		s.logger.Debug("notification failed", logging.Error(err))
	}

	var acquired, failed int
	for i := range due {
		if ctx.Err() != nil {
			return
		}
		got, err := s.processRace(ctx, &due[i])
		if err != nil {
			failed++
			s.logger.Warn("race left unacquired", "race", due[i].Name, logging.Error(err))
			if nerr := s.notifier.NotifyError(ctx, err, "acquisition of "+due[i].Name); nerr != nil {
				s.logger.Debug("notification failed", logging.Error(nerr))
			}
			continue
		}
		if got {
			acquired++
		}
	}

	s.logger.Info("scan complete",
		logging.Int("acquired", acquired), logging.Int("failed", failed),
		logging.Duration("elapsed", s.now().Sub(started)))
	if err := s.notifier.NotifyScanCompleted(ctx, acquired, failed, s.now().Sub(started)); err != nil {
		s.logger.Debug("notification failed", logging.Error(err))
	}
}

func (s *Scanner) processRace(ctx context.Context, race *races.Race) (bool, error) {
	logger := s.logger.With("race", race.Name, "id", race.ID)

	if race.StartDate.After(s.now().UTC()) {
		logger.Debug("race in the future, skipping")
		return false, nil
	}

	match, ok := s.matcher.Match(race)
	if !ok {
		logger.Debug("no feed match")
		return false, nil
	}
	logger.Info("matched feed item", "title", match.Title, logging.Float64("score", match.Score))

	url, ok := s.resolver.Resolve(ctx, match.Title)
	if !ok {
		logger.Info("no reachable file for match", "title", match.Title)
		return false, nil
	}

	fileName := organizer.VideoFileName(race)
	staged := filepath.Join(s.cfg.Paths.DownloadDir, fileName)

	if _, err := s.engine.Download(ctx, url, staged, transfer.Options{
		Overwrite:  s.cfg.Transfer.Overwrite,
		Timeout:    time.Duration(s.cfg.Transfer.Timeout) * time.Second,
		AllowedDir: s.cfg.Paths.DownloadDir,
		UserAgent:  s.cfg.Transfer.UserAgent,
	}); err != nil {
		return false, err
	}

	sidecar, err := metadata.WriteSidecar(staged, s.episodeFor(race, ExtractPlot(match.BodyHTML)))
	if err != nil {
		os.Remove(staged)
		return false, err
	}

	destVideo, sizeGB, err := s.organizer.Place(race, staged, sidecar)
	if err != nil {
		os.Remove(staged)
		os.Remove(sidecar)
		return false, err
	}

	// The store is touched only after everything downstream succeeded.
	now := s.now().UTC()
	if _, err := s.store.Update(ctx, race.ID, races.Fields{
		Acquired:     races.Bool(true),
		DateAcquired: races.Time(now),
		FileName:     races.String(fileName),
		FilePath:     races.String(destVideo),
		FileSizeGB:   races.Float64(sizeGB),
	}); err != nil {
		return false, err
	}

	os.Remove(staged)
	os.Remove(sidecar)

	if s.jellyfin.Enabled() {
		if err := s.jellyfin.Refresh(ctx); err != nil {
			logger.Warn("library refresh failed", logging.Error(err))
		}
	}
	if err := s.notifier.NotifyRaceAcquired(ctx, race.Name, destVideo, sizeGB); err != nil {
		logger.Debug("notification failed", logging.Error(err))
	}

	logger.Info("race acquired", "file", destVideo, logging.Float64("size_gb", sizeGB))
	return true, nil
}

// episodeFor derives the sidecar numbering: season is the start year;
// single-day episodes encode month and day, stages use the stage index.
func (s *Scanner) episodeFor(race *races.Race, plot string) metadata.Episode {
	episode := 0
	if race.Kind == races.KindMultiStage {
		if _, stage, err := races.ParseID(race.ID); err == nil {
			episode = stage
		}
	} else {
		start := race.StartDate.UTC()
		episode = (int(start.Month())-1)*100 + start.Day()
	}

	kindTag := "One-day"
	if race.Kind == races.KindMultiStage {
		kindTag = "Stage-race"
	}

	return metadata.Episode{
		Season:    organizer.Season(race),
		Episode:   episode,
		Title:     race.Name,
		ShowTitle: race.Name,
		Plot:      plot,
		Aired:     race.StartDate.UTC().Format("2006-01-02"),
		Genres:    []string{"Cycling", "Sports"},
		Tags:      []string{"UCI", kindTag},
	}
}
