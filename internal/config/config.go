package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	LibraryDir  string `toml:"library_dir"`
	CacheDir    string `toml:"cache_dir"`
	LogDir      string `toml:"log_dir"`
	DataDir     string `toml:"data_dir"`
	CatalogFile string `toml:"catalog_file"`
	APIBind     string `toml:"api_bind"`
	APIKey      string `toml:"api_key"`
}

// Library contains configuration for the media library structure.
type Library struct {
	ClassicsDir       string `toml:"classics_dir"`
	StageRacesDir     string `toml:"stage_races_dir"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Feeds contains configuration for the upstream category feeds.
type Feeds struct {
	BaseURL        string `toml:"base_url"`
	MaxPages       int    `toml:"max_pages"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Matching contains candidate matching tunables.
type Matching struct {
	DayWindow          int     `toml:"day_window"`
	ClassicThreshold   float64 `toml:"classic_threshold"`
	StageThreshold     float64 `toml:"stage_threshold"`
	LoneCandidateBonus float64 `toml:"lone_candidate_bonus"`
}

// Transfer contains file download settings.
type Transfer struct {
	FileHostRoot string `toml:"file_host_root"`
	ProbeTimeout int    `toml:"probe_timeout"`
	Timeout      int    `toml:"timeout"`
	UserAgent    string `toml:"user_agent"`
	Overwrite    bool   `toml:"overwrite"`
}

// Jellyfin contains configuration for media server library refresh.
type Jellyfin struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Scanner contains configuration for scan scheduling.
type Scanner struct {
	Interval int `toml:"interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Pelotarr.
//
// Configuration sections by subsystem:
//   - Paths: directories, catalogue file, and API bind address
//   - Library: output directory structure (classics/stage races subdirs)
//   - Feeds: upstream category feed location and pagination bounds
//   - Matching: date windows and similarity thresholds
//   - Transfer: file host root, timeouts, and download behavior
//   - Jellyfin: media server library refresh integration
//   - Notifications: ntfy push notification settings
//   - Scanner: periodic scan interval
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Library       Library       `toml:"library"`
	Feeds         Feeds         `toml:"feeds"`
	Matching      Matching      `toml:"matching"`
	Transfer      Transfer      `toml:"transfer"`
	Jellyfin      Jellyfin      `toml:"jellyfin"`
	Notifications Notifications `toml:"notifications"`
	Scanner       Scanner       `toml:"scanner"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pelotarr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean result
// reports whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.CacheDir, c.Paths.LogDir, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing startup when the library share is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
