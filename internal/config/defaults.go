package config

const (
	defaultDataDir                = "~/.local/share/nutrilog"
	defaultMediaDir               = "~/.local/share/nutrilog/media"
	defaultLogDir                 = "~/.local/share/nutrilog/logs"
	defaultStorageBackend         = StorageSQLite
	defaultAnalysisBackend        = AnalysisHTTP
	defaultAnalysisBaseURL        = "http://127.0.0.1:8000"
	defaultGeminiModel            = "gemini-2.0-flash"
	defaultAnalysisTimeoutSeconds = 30
	defaultAnalysisRetryAttempts  = 2
	defaultProgressIntervalMillis = 150
	defaultFallbackNameMaxRunes   = 20
	defaultLocale                 = "ja"
	defaultMediaMaxDimension      = 1024
	defaultMediaJPEGQuality       = 70
	defaultWaterGlassML           = 250
	defaultWaterGoalML            = 2000
	defaultWaterRetentionDays     = 30
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
	StorageMemory = "memory"
)

// Analysis backends.
const (
	AnalysisHTTP   = "http"
	AnalysisGemini = "gemini"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
		},
		Analysis: Analysis{
			Backend:        defaultAnalysisBackend,
			BaseURL:        defaultAnalysisBaseURL,
			TimeoutSeconds: defaultAnalysisTimeoutSeconds,
			RetryAttempts:  defaultAnalysisRetryAttempts,
		},
		Pipeline: Pipeline{
			ProgressIntervalMillis: defaultProgressIntervalMillis,
			FallbackNameMaxRunes:   defaultFallbackNameMaxRunes,
			Locale:                 defaultLocale,
		},
		Media: Media{
			MaxDimension: defaultMediaMaxDimension,
			JPEGQuality:  defaultMediaJPEGQuality,
		},
		Water: Water{
			GlassML:       defaultWaterGlassML,
			GoalML:        defaultWaterGoalML,
			RetentionDays: defaultWaterRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Toasts:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
