package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"pelotarr/internal/config"
	"pelotarr/internal/logging"
	"pelotarr/internal/races"
	"pelotarr/internal/scanner"
)

const (
	classicID   = "8f14e45f-ceea-467f-a0e7-2b9d4b1e5c3a"
	stageRaceID = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
)

const testCatalog = `{
  "races_men": [
    {"id": "` + classicID + `", "name": "Milano-Sanremo", "type": 1, "level": "1.UWT", "start": "21.03"},
    {"id": "` + stageRaceID + `", "name": "Vuelta a Espana", "type": 2, "level": "2.UWT", "start": "23.08", "end": "14.09", "stages": 21}
  ],
  "races_women": []
}`

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()

	root := t.TempDir()
	feeds := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(feeds.Close)

	cfg := config.Default()
	cfg.Paths.DownloadDir = filepath.Join(root, "downloads")
	cfg.Paths.LibraryDir = filepath.Join(root, "library")
	cfg.Paths.CacheDir = filepath.Join(root, "cache")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.CatalogFile = filepath.Join(root, "races.json")
	cfg.Paths.APIBind = ""
	cfg.Paths.APIKey = ""
	cfg.Feeds.BaseURL = feeds.URL
	cfg.Scanner.Interval = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.CatalogFile, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	store, err := races.OpenPath(filepath.Join(cfg.Paths.DataDir, "races.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := logging.NewNop()
	d, err := New(&cfg, store, scanner.New(&cfg, store, logger), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func doRequest(t *testing.T, d *Daemon, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	d.api.server.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestAPIMonitorSingleDayRace(t *testing.T) {
	d := newTestDaemon(t)

	w := doRequest(t, d, http.MethodPost, "/api/races?id="+classicID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if added := decodeBody(t, w)["added"]; added != float64(1) {
		t.Fatalf("expected 1 row added, got %v", added)
	}

	w = doRequest(t, d, http.MethodGet, "/api/races", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	ids, ok := decodeBody(t, w)["ids"].([]any)
	if !ok || len(ids) != 1 || ids[0] != classicID {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestAPIMonitorStageRaceExpandsAllStages(t *testing.T) {
	d := newTestDaemon(t)

	w := doRequest(t, d, http.MethodPost, "/api/races?id="+stageRaceID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if added := decodeBody(t, w)["added"]; added != float64(21) {
		t.Fatalf("expected 21 rows added, got %v", added)
	}

	all, err := d.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 21 {
		t.Fatalf("expected 21 stored races, got %d", len(all))
	}
}

func TestAPIMonitorOneStage(t *testing.T) {
	d := newTestDaemon(t)

	w := doRequest(t, d, http.MethodPost, "/api/races?id="+stageRaceID+"::4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if added := decodeBody(t, w)["added"]; added != float64(1) {
		t.Fatalf("expected 1 row added, got %v", added)
	}

	all, err := d.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].ID != stageRaceID+"::4" {
		t.Fatalf("unexpected rows: %+v", all)
	}
}

func TestAPIMonitorRejectsBadInput(t *testing.T) {
	d := newTestDaemon(t)

	w := doRequest(t, d, http.MethodPost, "/api/races?id=not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", w.Code)
	}

	w = doRequest(t, d, http.MethodPost, "/api/races?id=4f5e0f9a-9f3a-4d8e-b1e6-1a2b3c4d5e6f", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown race, got %d", w.Code)
	}
}

func TestAPIUnmonitorStageRaceRemovesAllStages(t *testing.T) {
	d := newTestDaemon(t)

	if w := doRequest(t, d, http.MethodPost, "/api/races?id="+stageRaceID, nil); w.Code != http.StatusOK {
		t.Fatalf("seed monitor failed: %d", w.Code)
	}

	w := doRequest(t, d, http.MethodDelete, "/api/races?id="+stageRaceID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if deleted := decodeBody(t, w)["deleted"]; deleted != float64(21) {
		t.Fatalf("expected 21 deleted, got %v", deleted)
	}

	all, err := d.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(all))
	}
}

func TestAPIStatusAndScan(t *testing.T) {
	d := newTestDaemon(t)

	if w := doRequest(t, d, http.MethodPost, "/api/races?id="+classicID, nil); w.Code != http.StatusOK {
		t.Fatalf("seed monitor failed: %d", w.Code)
	}

	w := doRequest(t, d, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	statuses, ok := decodeBody(t, w)["races"].([]any)
	if !ok || len(statuses) != 1 {
		t.Fatalf("unexpected statuses: %v", statuses)
	}

	w = doRequest(t, d, http.MethodPost, "/api/scan", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	d := newTestDaemon(t)
	d.api = newAPIServer(&config.Config{Paths: config.Paths{APIKey: "secret"}}, d, logging.NewNop())

	if w := doRequest(t, d, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health should not require auth, got %d", w.Code)
	}
	if w := doRequest(t, d, http.MethodGet, "/api/races", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
	if w := doRequest(t, d, http.MethodGet, "/api/races", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", w.Code)
	}
	if w := doRequest(t, d, http.MethodGet, "/api/races", map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}
}
