package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateFeeds(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateTransfer(); err != nil {
		return err
	}
	if err := c.validateJellyfin(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		return errors.New("paths.download_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.ClassicsDir == "" {
		return errors.New("library.classics_dir must be set")
	}
	if c.Library.StageRacesDir == "" {
		return errors.New("library.stage_races_dir must be set")
	}
	return nil
}

func (c *Config) validateFeeds() error {
	if c.Feeds.BaseURL == "" {
		return errors.New("feeds.base_url must be set")
	}
	if !strings.HasPrefix(c.Feeds.BaseURL, "http://") && !strings.HasPrefix(c.Feeds.BaseURL, "https://") {
		return fmt.Errorf("feeds.base_url must be an http(s) URL, got %q", c.Feeds.BaseURL)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.DayWindow < 0 {
		return errors.New("matching.day_window must not be negative")
	}
	for name, v := range map[string]float64{
		"matching.classic_threshold": c.Matching.ClassicThreshold,
		"matching.stage_threshold":   c.Matching.StageThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Matching.LoneCandidateBonus < 0 || c.Matching.LoneCandidateBonus >= 1 {
		return errors.New("matching.lone_candidate_bonus must be in [0, 1)")
	}
	return nil
}

func (c *Config) validateTransfer() error {
	if c.Transfer.FileHostRoot == "" {
		return errors.New("transfer.file_host_root must be set")
	}
	if !strings.HasPrefix(c.Transfer.FileHostRoot, "http://") && !strings.HasPrefix(c.Transfer.FileHostRoot, "https://") {
		return fmt.Errorf("transfer.file_host_root must be an http(s) URL, got %q", c.Transfer.FileHostRoot)
	}
	return nil
}

func (c *Config) validateJellyfin() error {
	if !c.Jellyfin.Enabled {
		return nil
	}
	if c.Jellyfin.URL == "" {
		return errors.New("jellyfin.url is required when jellyfin.enabled is true")
	}
	if c.Jellyfin.APIKey == "" {
		return errors.New("jellyfin.api_key is required when jellyfin.enabled is true")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if c.Scanner.Interval < 0 {
		return errors.New("scanner.interval must not be negative (0 disables periodic scans)")
	}
	return nil
}
