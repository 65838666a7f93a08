package resolver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"pelotarr/internal/config"
	"pelotarr/internal/logging"
)

// Resolver turns matched display titles into reachable download URLs by
// probing the file host for each candidate shape.
type Resolver struct {
	root      string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	logger    *slog.Logger
}

// New creates a resolver against the configured file host root.
func New(cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		root:      cfg.Transfer.FileHostRoot,
		userAgent: cfg.Transfer.UserAgent,
		timeout:   time.Duration(cfg.Transfer.ProbeTimeout) * time.Second,
		client:    &http.Client{},
		logger:    logging.WithComponent(logger, "resolver"),
	}
}

// Resolve probes each candidate URL in order and returns the first one
// any probe tier confirms reachable. The second return is false when the
// title yields no candidates or none respond.
func (r *Resolver) Resolve(ctx context.Context, displayTitle string) (string, bool) {
	for _, u := range Candidates(r.root, displayTitle) {
		if r.reachable(ctx, u) {
			return u, true
		}
	}
	return "", false
}

// reachable runs the tiered existence check. HEAD is tried first because
// it is cheap, but the host sometimes rejects it, so a ranged GET and a
// plain GET follow. Bodies are discarded immediately.
func (r *Resolver) reachable(ctx context.Context, url string) bool {
	if ok, _ := r.probe(ctx, url, http.MethodHead, "", func(code int) bool {
		return code >= 200 && code < 300
	}); ok {
		return true
	}
	if ok, _ := r.probe(ctx, url, http.MethodGet, "bytes=0-0", func(code int) bool {
		return code == http.StatusOK || code == http.StatusPartialContent ||
			code == http.StatusRequestedRangeNotSatisfiable
	}); ok {
		return true
	}
	ok, err := r.probe(ctx, url, http.MethodGet, "", func(code int) bool {
		return code >= 200 && code < 300
	})
	if err != nil {
		r.logger.Debug("probe failed", "url", url, logging.Error(err))
	}
	return ok
}

func (r *Resolver) probe(ctx context.Context, url, method, rangeHeader string, accept func(int) bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", r.userAgent)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return accept(resp.StatusCode), nil
}
