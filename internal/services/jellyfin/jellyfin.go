package jellyfin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pelotarr/internal/config"
	"pelotarr/internal/services"
)

// Service triggers library refreshes on the media server.
type Service interface {
	// Refresh asks the server to rescan all libraries.
	Refresh(ctx context.Context) error
	// Enabled reports whether a server is configured.
	Enabled() bool
}

// HTTPDoer describes the HTTP client used by the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewConfiguredService returns an HTTP-backed service when a base URL and
// API key are configured, and a no-op service otherwise.
func NewConfiguredService(cfg *config.Config) Service {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Jellyfin.URL), "/")
	apiKey := strings.TrimSpace(cfg.Jellyfin.APIKey)
	if !cfg.Jellyfin.Enabled || baseURL == "" || apiKey == "" {
		return noopService{}
	}
	return &httpService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewHTTPService builds an HTTP-backed service with an injected client.
func NewHTTPService(baseURL, apiKey string, client HTTPDoer) Service {
	return &httpService{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type httpService struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

func (s *httpService) Enabled() bool { return true }

func (s *httpService) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/Library/Refresh", nil)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "jellyfin", "refresh", "building request", err)
	}
	req.Header.Set("X-Emby-Token", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "jellyfin", "refresh", "requesting refresh", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrUpstream, "jellyfin", "refresh",
			fmt.Sprintf("refresh returned HTTP %d", resp.StatusCode), nil)
	}
	return nil
}

type noopService struct{}

func (noopService) Enabled() bool                 { return false }
func (noopService) Refresh(context.Context) error { return nil }
