package daemon

import (
	"net/http"
	"strings"
	"time"

	"pelotarr/internal/catalog"
	"pelotarr/internal/feedcache"
	"pelotarr/internal/logging"
	"pelotarr/internal/races"
	"pelotarr/internal/services"
)

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *apiServer) handleListRaces(w http.ResponseWriter, r *http.Request) {
	all, err := s.daemon.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ids := make([]string, 0, len(all))
	for _, race := range all {
		ids = append(ids, race.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ids": ids})
}

// handleMonitorRace adds a catalog race (or one stage of it) to the
// store and requests a scan. The id query parameter accepts a bare
// catalog id or a "<id>::<stage>" composite.
func (s *apiServer) handleMonitorRace(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !races.ValidID(id) {
		writeError(w, http.StatusBadRequest, "missing or invalid id")
		return
	}

	entry, ok, err := s.catalogEntry(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "race not found in catalog")
		return
	}

	rows, err := entry.Expand(id, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, row := range rows {
		if err := s.daemon.store.Upsert(r.Context(), row.ID, row.Fields); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.logger.Info("race monitored", "id", id, logging.Int("rows", len(rows)))
	s.daemon.scanner.RequestScan()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "added": len(rows)})
}

func (s *apiServer) handleUnmonitorRace(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !races.ValidID(id) {
		writeError(w, http.StatusBadRequest, "missing or invalid id")
		return
	}

	entry, ok, err := s.catalogEntry(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "race not found in catalog")
		return
	}

	var deleted int64
	for _, storeID := range entry.StageIDs(id) {
		n, err := s.daemon.store.Remove(r.Context(), storeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		deleted += n
	}

	s.logger.Info("race unmonitored", "id", id, logging.Int64("deleted", deleted))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.daemon.checker.Check(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"scanning": s.daemon.scanner.Running(),
		"races":    statuses,
	})
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	s.daemon.scanner.RequestScan()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "scan": "requested"})
}

// handleFeedRefresh refreshes every category synchronously and reports
// per-category results. One category failing does not abort the rest.
func (s *apiServer) handleFeedRefresh(w http.ResponseWriter, r *http.Request) {
	type result struct {
		Added int    `json:"added"`
		Total int    `json:"total"`
		Error string `json:"error,omitempty"`
	}
	results := make(map[string]result)
	for _, cat := range feedcache.Categories() {
		added, total, err := s.daemon.cache.Refresh(r.Context(), cat)
		res := result{Added: added, Total: total}
		if err != nil {
			res.Error = err.Error()
			if nerr := s.daemon.notifier.NotifyError(r.Context(), err, "feed refresh"); nerr != nil {
				s.logger.Debug("notification failed", logging.Error(nerr))
			}
		} else if added > 0 {
			if nerr := s.daemon.notifier.NotifyFeedRefreshed(r.Context(), cat.Key, added); nerr != nil {
				s.logger.Debug("notification failed", logging.Error(nerr))
			}
		}
		results[cat.Key] = res
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "categories": results})
}

func (s *apiServer) handleTestNotify(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.notifier.TestNotification(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// catalogEntry loads the catalog document and looks up the base id.
func (s *apiServer) catalogEntry(id string) (catalog.Entry, bool, error) {
	base, _, err := races.ParseID(id)
	if err != nil {
		return catalog.Entry{}, false, err
	}
	cat, err := catalog.Load(s.daemon.cfg.Paths.CatalogFile)
	if err != nil {
		if services.IsMiss(err) {
			return catalog.Entry{}, false, nil
		}
		return catalog.Entry{}, false, err
	}
	entry, ok := cat.FindByID(base)
	return entry, ok, nil
}
