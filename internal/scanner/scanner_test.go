package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"pelotarr/internal/config"
	"pelotarr/internal/feedcache"
	"pelotarr/internal/logging"
	"pelotarr/internal/matcher"
	"pelotarr/internal/notifications"
	"pelotarr/internal/organizer"
	"pelotarr/internal/races"
	"pelotarr/internal/transfer"
)

type stubResolver struct{ url string }

func (r stubResolver) Resolve(context.Context, string) (string, bool) {
	return r.url, r.url != ""
}

type fakeJellyfin struct{ refreshes int }

func (f *fakeJellyfin) Enabled() bool                 { return true }
func (f *fakeJellyfin) Refresh(context.Context) error { f.refreshes++; return nil }

func writeCache(t *testing.T, dir, partition string, items []feedcache.Item) {
	t.Helper()
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "feed_"+partition+".json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testScanner(t *testing.T, fileURL string) (*Scanner, *races.Store, *config.Config, *fakeJellyfin) {
	t.Helper()
	// Feed endpoint that always fails keeps refreshes harmless in tests.
	feedSrv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(feedSrv.Close)

	cfg := config.Default()
	cfg.Paths.DownloadDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.CacheDir = t.TempDir()
	cfg.Feeds.BaseURL = feedSrv.URL
	cfg.Feeds.MaxPages = 1

	store, err := races.OpenPath(filepath.Join(t.TempDir(), "races.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	logger := logging.NewNop()
	cache := feedcache.New(&cfg, logger)
	jf := &fakeJellyfin{}
	s := NewWithDependencies(&cfg, store, cache,
		matcher.New(cache, &cfg, logger),
		stubResolver{url: fileURL},
		transfer.New(logger),
		organizer.New(&cfg, logger),
		jf,
		notifications.NewService(&cfg),
		logger)
	return s, store, &cfg, jf
}

func TestScanAcquiresMatchedRace(t *testing.T) {
	videoBody := "pretend this is a video"
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, videoBody)
	}))
	defer fileSrv.Close()

	s, store, cfg, jf := testScanner(t, fileSrv.URL+"/Ghent-Wevelgem+2025.mp4")

	raceDay := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	writeCache(t, cfg.Paths.CacheDir, feedcache.PartitionClassics, []feedcache.Item{{
		Title:       "Ghent-Wevelgem 2025 [FULL RACE]",
		Link:        "https://example.com/gw25",
		Published:   raceDay,
		ContentHTML: "<p>Intro.</p><p>The crosswinds split the field.</p><p>A late attack stuck.</p>",
	}})

	id := uuid.NewString()
	if err := store.Upsert(context.Background(), id, races.Fields{
		Name: races.String("Ghent-Wevelgem"), Kind: races.KindOf(races.KindSingleDay),
		StartDate: races.Time(raceDay), Acquired: races.Bool(false),
	}); err != nil {
		t.Fatal(err)
	}

	s.runOnce(context.Background())

	got, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Acquired {
		t.Fatal("race not marked acquired")
	}
	if got.FileName != "Ghent-Wevelgem 2025.mp4" {
		t.Errorf("file name %q", got.FileName)
	}
	wantVideo := filepath.Join(cfg.Paths.LibraryDir, cfg.Library.ClassicsDir, "2025", "Ghent-Wevelgem 2025.mp4")
	if got.FilePath != wantVideo {
		t.Errorf("file path %q, want %q", got.FilePath, wantVideo)
	}
	data, err := os.ReadFile(wantVideo)
	if err != nil || string(data) != videoBody {
		t.Fatalf("library video wrong: err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(wantVideo), "Ghent-Wevelgem 2025.nfo")); err != nil {
		t.Errorf("library sidecar missing: %v", err)
	}
	// Staging must be empty after success.
	entries, _ := os.ReadDir(cfg.Paths.DownloadDir)
	if len(entries) != 0 {
		t.Errorf("staging not cleaned: %v", entries)
	}
	if jf.refreshes != 1 {
		t.Errorf("jellyfin refreshed %d times, want 1", jf.refreshes)
	}
}

func TestScanSkipsFutureAndAcquiredRaces(t *testing.T) {
	s, store, _, jf := testScanner(t, "")

	futureID := uuid.NewString()
	acquiredID := uuid.NewString()
	if err := store.Upsert(context.Background(), futureID, races.Fields{
		Name: races.String("Lombardia"), Kind: races.KindOf(races.KindSingleDay),
		StartDate: races.Time(time.Now().UTC().AddDate(0, 0, 30)),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(context.Background(), acquiredID, races.Fields{
		Name: races.String("Sanremo"), Kind: races.KindOf(races.KindSingleDay),
		StartDate: races.Time(time.Now().UTC().AddDate(0, 0, -30)),
		Acquired:  races.Bool(true),
	}); err != nil {
		t.Fatal(err)
	}

	s.runOnce(context.Background())

	future, _ := store.GetByID(context.Background(), futureID)
	if future.Acquired {
		t.Error("future race was acquired")
	}
	if jf.refreshes != 0 {
		t.Error("nothing was acquired but the library was refreshed")
	}
}

func TestScanLeavesRaceUnacquiredOnTransferFailure(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer fileSrv.Close()

	s, store, cfg, _ := testScanner(t, fileSrv.URL+"/x.mp4")

	raceDay := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	writeCache(t, cfg.Paths.CacheDir, feedcache.PartitionClassics, []feedcache.Item{{
		Title: "Ghent-Wevelgem 2025 [FULL RACE]", Link: "l", Published: raceDay,
		ContentHTML: "<p>a</p><p>b</p>",
	}})

	id := uuid.NewString()
	if err := store.Upsert(context.Background(), id, races.Fields{
		Name: races.String("Ghent-Wevelgem"), Kind: races.KindOf(races.KindSingleDay),
		StartDate: races.Time(raceDay),
	}); err != nil {
		t.Fatal(err)
	}

	s.runOnce(context.Background())

	got, _ := store.GetByID(context.Background(), id)
	if got.Acquired {
		t.Fatal("failed transfer still marked the race acquired")
	}
	entries, _ := os.ReadDir(cfg.Paths.DownloadDir)
	if len(entries) != 0 {
		t.Errorf("staging not clean after failure: %v", entries)
	}
}

func TestRequestScanCoalesces(t *testing.T) {
	s, _, _, _ := testScanner(t, "")

	s.RequestScan()
	s.RequestScan()
	s.RequestScan()

	if !s.takePending() {
		t.Fatal("pending flag not set")
	}
	if s.takePending() {
		t.Fatal("multiple requests should drain as one pass")
	}
	if s.Running() {
		t.Fatal("no pass is executing")
	}
}

func TestEpisodeNumbering(t *testing.T) {
	s, _, _, _ := testScanner(t, "")

	classic := &races.Race{
		ID: uuid.NewString(), Name: "Ghent-Wevelgem", Kind: races.KindSingleDay,
		StartDate: time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC),
	}
	ep := s.episodeFor(classic, "plot")
	if ep.Season != 2025 || ep.Episode != 230 {
		t.Errorf("classic numbering S%dE%d, want S2025E230", ep.Season, ep.Episode)
	}

	stage := &races.Race{
		ID: races.StageID(uuid.NewString(), 7), Name: "Vuelta a España Stage 7",
		Kind: races.KindMultiStage, StartDate: time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC),
	}
	ep = s.episodeFor(stage, "plot")
	if ep.Season != 2025 || ep.Episode != 7 {
		t.Errorf("stage numbering S%dE%d, want S2025E7", ep.Season, ep.Episode)
	}
}
