package config

const (
	defaultDownloadDir        = "~/.local/share/pelotarr/downloads"
	defaultLibraryDir         = "~/library/shows"
	defaultCacheDir           = "~/.local/share/pelotarr/cache"
	defaultLogDir             = "~/.local/share/pelotarr/logs"
	defaultDataDir            = "~/.local/share/pelotarr"
	defaultCatalogFile        = "~/.local/share/pelotarr/races.json"
	defaultAPIBind            = "127.0.0.1:7590"
	defaultClassicsDir        = "Cycling Classics"
	defaultStageRacesDir      = "Cycling Stage Races"
	defaultFeedBaseURL        = "https://tiz-cycling.tv"
	defaultFeedMaxPages       = 5
	defaultFeedTimeout        = 30
	defaultDayWindow          = 0
	defaultClassicThreshold   = 0.60
	defaultStageThreshold     = 0.55
	defaultLoneCandidateBonus = 0.25
	defaultFileHostRoot       = "https://video.tiz-cycling.io/file/Tiz-Cycling"
	defaultProbeTimeout       = 10
	defaultTransferTimeout    = 120
	defaultUserAgent          = "Pelotarr/1.0 (+https://localhost)"
	defaultNotifyTimeout      = 10
	defaultScanInterval       = 15
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LibraryDir:  defaultLibraryDir,
			CacheDir:    defaultCacheDir,
			LogDir:      defaultLogDir,
			DataDir:     defaultDataDir,
			CatalogFile: defaultCatalogFile,
			APIBind:     defaultAPIBind,
		},
		Library: Library{
			ClassicsDir:   defaultClassicsDir,
			StageRacesDir: defaultStageRacesDir,
		},
		Feeds: Feeds{
			BaseURL:        defaultFeedBaseURL,
			MaxPages:       defaultFeedMaxPages,
			RequestTimeout: defaultFeedTimeout,
		},
		Matching: Matching{
			DayWindow:          defaultDayWindow,
			ClassicThreshold:   defaultClassicThreshold,
			StageThreshold:     defaultStageThreshold,
			LoneCandidateBonus: defaultLoneCandidateBonus,
		},
		Transfer: Transfer{
			FileHostRoot: defaultFileHostRoot,
			ProbeTimeout: defaultProbeTimeout,
			Timeout:      defaultTransferTimeout,
			UserAgent:    defaultUserAgent,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Scanner: Scanner{
			Interval: defaultScanInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
