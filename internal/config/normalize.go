package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeAnalysis()
	c.normalizePipeline()
	c.normalizeMedia()
	c.normalizeWater()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = filepath.Join(c.Paths.DataDir, "media")
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.Backend = strings.ToLower(strings.TrimSpace(c.Analysis.Backend))
	if c.Analysis.Backend == "" {
		c.Analysis.Backend = defaultAnalysisBackend
	}
	c.Analysis.BaseURL = strings.TrimRight(strings.TrimSpace(c.Analysis.BaseURL), "/")
	if c.Analysis.BaseURL == "" {
		c.Analysis.BaseURL = defaultAnalysisBaseURL
	}
	c.Analysis.APIKey = strings.TrimSpace(c.Analysis.APIKey)
	if c.Analysis.APIKey == "" {
		envKey := "NUTRILOG_API_KEY"
		if c.Analysis.Backend == AnalysisGemini {
			envKey = "GEMINI_API_KEY"
		}
		if value, ok := os.LookupEnv(envKey); ok {
			c.Analysis.APIKey = strings.TrimSpace(value)
		}
	}
	c.Analysis.Model = strings.TrimSpace(c.Analysis.Model)
	if c.Analysis.Model == "" && c.Analysis.Backend == AnalysisGemini {
		c.Analysis.Model = defaultGeminiModel
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		c.Analysis.TimeoutSeconds = defaultAnalysisTimeoutSeconds
	}
	if c.Analysis.RetryAttempts < 0 {
		c.Analysis.RetryAttempts = 0
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.ProgressIntervalMillis <= 0 {
		c.Pipeline.ProgressIntervalMillis = defaultProgressIntervalMillis
	}
	if c.Pipeline.FallbackNameMaxRunes <= 0 {
		c.Pipeline.FallbackNameMaxRunes = defaultFallbackNameMaxRunes
	}
	if value, ok := os.LookupEnv("NUTRILOG_LOCALE"); ok && strings.TrimSpace(value) != "" {
		c.Pipeline.Locale = value
	}
	c.Pipeline.Locale = strings.TrimSpace(c.Pipeline.Locale)
	if c.Pipeline.Locale == "" {
		c.Pipeline.Locale = defaultLocale
	}
}

func (c *Config) normalizeMedia() {
	if c.Media.MaxDimension <= 0 {
		c.Media.MaxDimension = defaultMediaMaxDimension
	}
	if c.Media.JPEGQuality <= 0 {
		c.Media.JPEGQuality = defaultMediaJPEGQuality
	}
}

func (c *Config) normalizeWater() {
	if c.Water.GlassML <= 0 {
		c.Water.GlassML = defaultWaterGlassML
	}
	if c.Water.GoalML <= 0 {
		c.Water.GoalML = defaultWaterGoalML
	}
	if c.Water.RetentionDays <= 0 {
		c.Water.RetentionDays = defaultWaterRetentionDays
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
