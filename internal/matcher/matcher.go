package matcher

import (
	"log/slog"
	"regexp"
	"time"

	"pelotarr/internal/config"
	"pelotarr/internal/feedcache"
	"pelotarr/internal/logging"
	"pelotarr/internal/races"
	"pelotarr/internal/textutil"
)

// WomensLevel is the competition level whose races match women's feed
// items. Every other level excludes them.
const WomensLevel = "WWT"

// Result is the best candidate found for a race. It is never persisted;
// the scan uses it immediately to resolve a download URL and a plot.
type Result struct {
	Title    string
	BodyHTML string
	Score    float64
}

// Matcher scores cached feed items against monitored races.
type Matcher struct {
	cache  *feedcache.Cache
	cfg    config.Matching
	logger *slog.Logger
}

// New creates a matcher reading from the given feed cache.
func New(cache *feedcache.Cache, cfg *config.Config, logger *slog.Logger) *Matcher {
	return &Matcher{
		cache:  cache,
		cfg:    cfg.Matching,
		logger: logging.WithComponent(logger, "matcher"),
	}
}

// Short-distance and gender indicators checked against lowercased titles.
var (
	distancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b10[\s-]?km\b|\b10k\b`),
		regexp.MustCompile(`(?i)\b15[\s-]?km\b|\b15k\b`),
		regexp.MustCompile(`(?i)\b20[\s-]?km\b|\b20k\b`),
	}
	ladiesPattern = regexp.MustCompile(`(?i)\bladies?\b|\bwomen'?s\b`)
)

// Match searches the cache partition for the race's kind and returns the
// highest-scoring candidate, or false when nothing clears the threshold.
// Missing names, missing dates and empty caches are clean no-matches.
func (m *Matcher) Match(race *races.Race) (Result, bool) {
	if race.Name == "" || race.StartDate.IsZero() {
		return Result{}, false
	}

	partition := feedcache.PartitionClassics
	threshold := m.cfg.ClassicThreshold
	if race.Kind == races.KindMultiStage {
		partition = feedcache.PartitionStages
		threshold = m.cfg.StageThreshold
	}

	items := m.cache.Load(partition)
	if len(items) == 0 {
		return Result{}, false
	}

	candidates := m.filter(race, items)
	if len(candidates) == 0 {
		return Result{}, false
	}
	if len(candidates) == 1 {
		threshold -= m.cfg.LoneCandidateBonus
	}

	target := textutil.Canonicalize(race.Name)
	targetStage, targetHasStage := textutil.StageNumber(race.Name)

	var best Result
	for _, it := range candidates {
		score := textutil.DiceSimilarity(target, textutil.Canonicalize(it.Title))
		if race.Kind == races.KindMultiStage && targetHasStage {
			if stage, ok := textutil.StageNumber(it.Title); ok {
				if stage == targetStage {
					score += 0.3
				} else {
					score -= 0.3
				}
			}
		}
		if score > best.Score {
			best = Result{Title: it.Title, BodyHTML: it.ContentHTML, Score: score}
		}
	}

	if best.Score < threshold {
		m.logger.Debug("no candidate above threshold",
			"race", race.Name, "best", best.Title,
			logging.Float64("score", best.Score), logging.Float64("threshold", threshold))
		return Result{}, false
	}
	return best, true
}

// filter applies the date window and the textual exclusion filters.
func (m *Matcher) filter(race *races.Race, items []feedcache.Item) []feedcache.Item {
	window := m.cfg.DayWindow
	wantLadies := race.Level == WomensLevel

	var out []feedcache.Item
	for _, it := range items {
		if it.Published.IsZero() {
			continue
		}
		if race.Kind == races.KindMultiStage {
			from := race.StartDate.AddDate(0, 0, -window)
			to := race.EventDate().AddDate(0, 0, window)
			day := dateOnly(it.Published)
			if day.Before(dateOnly(from)) || day.After(dateOnly(to)) {
				continue
			}
		} else {
			if absDays(it.Published, race.EventDate()) > window {
				continue
			}
		}
		if isShortDistance(it.Title) {
			continue
		}
		if ladiesPattern.MatchString(it.Title) != wantLadies {
			continue
		}
		out = append(out, it)
	}
	return out
}

func isShortDistance(title string) bool {
	for _, p := range distancePatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func absDays(a, b time.Time) int {
	d := int(dateOnly(a).Sub(dateOnly(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
