package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pelotarr/internal/status"
)

type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAPIClient(baseURL, apiKey string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type racesResponse struct {
	OK  bool     `json:"ok"`
	IDs []string `json:"ids"`
}

type monitorResponse struct {
	OK    bool `json:"ok"`
	Added int  `json:"added"`
}

type unmonitorResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

type statusResponse struct {
	OK       bool                `json:"ok"`
	Scanning bool                `json:"scanning"`
	Races    []status.RaceStatus `json:"races"`
}

type refreshResult struct {
	Added int    `json:"added"`
	Total int    `json:"total"`
	Error string `json:"error,omitempty"`
}

type refreshResponse struct {
	OK         bool                     `json:"ok"`
	Categories map[string]refreshResult `json:"categories"`
}

func (c *apiClient) ListRaces(ctx context.Context) (racesResponse, error) {
	var out racesResponse
	err := c.do(ctx, http.MethodGet, "/api/races", &out)
	return out, err
}

func (c *apiClient) Monitor(ctx context.Context, id string) (monitorResponse, error) {
	var out monitorResponse
	err := c.do(ctx, http.MethodPost, "/api/races?id="+id, &out)
	return out, err
}

func (c *apiClient) Unmonitor(ctx context.Context, id string) (unmonitorResponse, error) {
	var out unmonitorResponse
	err := c.do(ctx, http.MethodDelete, "/api/races?id="+id, &out)
	return out, err
}

func (c *apiClient) Status(ctx context.Context) (statusResponse, error) {
	var out statusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", &out)
	return out, err
}

func (c *apiClient) Scan(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/scan", nil)
}

func (c *apiClient) RefreshFeeds(ctx context.Context) (refreshResponse, error) {
	var out refreshResponse
	err := c.do(ctx, http.MethodPost, "/api/feeds/refresh", &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is pelotarrd running?)", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
