package organizer

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pelotarr/internal/config"
	"pelotarr/internal/fileutil"
	"pelotarr/internal/logging"
	"pelotarr/internal/races"
	"pelotarr/internal/services"
	"pelotarr/internal/textutil"
)

// Organizer copies staged downloads into the final library layout.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an organizer for the configured library.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{cfg: cfg, logger: logging.WithComponent(logger, "organizer")}
}

// VideoFileName returns the library file name for a race, sanitized for
// the filesystem: "<name> <season>.mp4".
func VideoFileName(race *races.Race) string {
	return textutil.SanitizeFileName(fmt.Sprintf("%s %d.mp4", race.Name, Season(race)))
}

// Season is the library season for a race, its start year in UTC.
func Season(race *races.Race) int {
	return race.StartDate.UTC().Year()
}

// SeriesDirName derives the per-series folder for a stage race: the race
// name up to its stage marker, plus the season year.
func SeriesDirName(race *races.Race) string {
	series, _, _ := strings.Cut(race.Name, " Stage")
	return textutil.SanitizeDirName(strings.TrimSpace(series) + " " + strconv.Itoa(Season(race)))
}

// DestPath computes the final library path for a race's video file.
// Single-day races live under the classics folder by season; stage races
// under a per-series folder.
func (o *Organizer) DestPath(race *races.Race, fileName string) string {
	if race.Kind == races.KindMultiStage {
		return filepath.Join(o.cfg.Paths.LibraryDir, o.cfg.Library.StageRacesDir, SeriesDirName(race), fileName)
	}
	return filepath.Join(o.cfg.Paths.LibraryDir, o.cfg.Library.ClassicsDir, strconv.Itoa(Season(race)), fileName)
}

// Place copies the staged video and its sidecar into the library and
// returns the final video path and its size in gigabytes. Both targets
// are confined to the library root; an existing video fails with a
// conflict unless overwriting is enabled.
func (o *Organizer) Place(race *races.Race, stagedVideo, stagedSidecar string) (string, float64, error) {
	destVideo := o.DestPath(race, filepath.Base(stagedVideo))
	destSidecar := filepath.Join(filepath.Dir(destVideo), filepath.Base(stagedSidecar))

	for _, dest := range []string{destVideo, destSidecar} {
		if err := fileutil.EnsureSubpath(dest, o.cfg.Paths.LibraryDir); err != nil {
			return "", 0, services.Wrap(services.ErrPolicyViolation, "organizer", "place", "library confinement", err)
		}
	}
	if !o.cfg.Library.OverwriteExisting && fileutil.FileExists(destVideo) {
		return "", 0, services.Wrap(services.ErrConflict, "organizer", "place",
			fmt.Sprintf("library file %s already exists", destVideo), nil)
	}

	if err := fileutil.EnsureDir(filepath.Dir(destVideo)); err != nil {
		return "", 0, services.Wrap(services.ErrIntegrity, "organizer", "place", "creating library directory", err)
	}
	if err := fileutil.CopyFileVerified(stagedVideo, destVideo); err != nil {
		return "", 0, services.Wrap(services.ErrIntegrity, "organizer", "place", "copying video", err)
	}
	if err := fileutil.CopyFileVerified(stagedSidecar, destSidecar); err != nil {
		os.Remove(destVideo)
		return "", 0, services.Wrap(services.ErrIntegrity, "organizer", "place", "copying sidecar", err)
	}

	info, err := os.Stat(destVideo)
	if err != nil {
		return "", 0, services.Wrap(services.ErrIntegrity, "organizer", "place", "checking placed video", err)
	}

	o.logger.Info("placed in library", "video", destVideo,
		logging.Float64("size_gb", SizeGB(info.Size())))
	return destVideo, SizeGB(info.Size()), nil
}

// SizeGB converts a byte count to gigabytes rounded to three decimals.
func SizeGB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<30)*1000) / 1000
}
