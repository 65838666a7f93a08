package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeeds()
	c.normalizeTransfer()
	c.normalizeJellyfin()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.CatalogFile, err = expandPath(c.Paths.CatalogFile); err != nil {
		return fmt.Errorf("paths.catalog_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIKey = strings.TrimSpace(c.Paths.APIKey)
	return nil
}

func (c *Config) normalizeFeeds() {
	c.Feeds.BaseURL = strings.TrimRight(strings.TrimSpace(c.Feeds.BaseURL), "/")
	if c.Feeds.MaxPages <= 0 {
		c.Feeds.MaxPages = defaultFeedMaxPages
	}
	if c.Feeds.RequestTimeout <= 0 {
		c.Feeds.RequestTimeout = defaultFeedTimeout
	}
}

func (c *Config) normalizeTransfer() {
	c.Transfer.FileHostRoot = strings.TrimRight(strings.TrimSpace(c.Transfer.FileHostRoot), "/")
	if c.Transfer.ProbeTimeout <= 0 {
		c.Transfer.ProbeTimeout = defaultProbeTimeout
	}
	if c.Transfer.Timeout <= 0 {
		c.Transfer.Timeout = defaultTransferTimeout
	}
	if strings.TrimSpace(c.Transfer.UserAgent) == "" {
		c.Transfer.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeJellyfin() {
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
