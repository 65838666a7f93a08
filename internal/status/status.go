package status

import (
	"context"
	"path/filepath"
	"time"

	"pelotarr/internal/config"
	"pelotarr/internal/fileutil"
	"pelotarr/internal/organizer"
	"pelotarr/internal/races"
)

// Value is the acquisition state reported for one race.
type Value string

const (
	// Downloaded means the race is acquired and its library file exists.
	Downloaded Value = "downloaded"
	// Downloading means a partial transfer is present in staging.
	Downloading Value = "downloading"
	// Future means the race has not taken place yet.
	Future Value = "future"
	// Missing means the race is due but nothing has been acquired.
	Missing Value = "missing"
)

// RaceStatus pairs a race id with its current state.
type RaceStatus struct {
	ID     string `json:"id"`
	Status Value  `json:"status"`
}

// Checker derives per-race acquisition states from the store and the
// filesystem.
type Checker struct {
	cfg   *config.Config
	store *races.Store
	now   func() time.Time
}

// New creates a checker.
func New(cfg *config.Config, store *races.Store) *Checker {
	return &Checker{cfg: cfg, store: store, now: time.Now}
}

// Check reports the state of every monitored race. An acquired race whose
// library file has since disappeared is reported missing so the next scan
// surface shows the loss.
func (c *Checker) Check(ctx context.Context) ([]RaceStatus, error) {
	all, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	out := make([]RaceStatus, 0, len(all))
	for _, race := range all {
		out = append(out, RaceStatus{ID: race.ID, Status: c.statusOf(&race, now)})
	}
	return out, nil
}

func (c *Checker) statusOf(race *races.Race, now time.Time) Value {
	if race.Acquired {
		if fileutil.FileExists(race.FilePath) {
			return Downloaded
		}
		return Missing
	}

	part := filepath.Join(c.cfg.Paths.DownloadDir, organizer.VideoFileName(race)+".part")
	if fileutil.FileExists(part) {
		return Downloading
	}

	if race.StartDate.After(now) {
		return Future
	}
	return Missing
}
