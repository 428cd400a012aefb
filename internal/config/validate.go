package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateWater(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.MediaDir == "" {
		return errors.New("paths.media_dir must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageBadger, StorageMemory:
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want sqlite, badger, or memory)", c.Storage.Backend)
	}
}

func (c *Config) validateAnalysis() error {
	switch c.Analysis.Backend {
	case AnalysisHTTP:
		parsed, err := url.Parse(c.Analysis.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("analysis.base_url: %q is not an absolute URL", c.Analysis.BaseURL)
		}
	case AnalysisGemini:
		if c.Analysis.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/nutrilog/config.toml"
			}
			return fmt.Errorf("analysis.api_key is required for the gemini backend. Set GEMINI_API_KEY env var or edit %s (create with 'nutrilog config init')", defaultPath)
		}
	default:
		return fmt.Errorf("analysis.backend: unsupported value %q (want http or gemini)", c.Analysis.Backend)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.JPEGQuality > 100 {
		return errors.New("media.jpeg_quality must be between 1 and 100")
	}
	if c.Media.MaxDimension < 64 {
		return errors.New("media.max_dimension must be at least 64")
	}
	return nil
}

func (c *Config) validateWater() error {
	if c.Water.GlassML > c.Water.GoalML {
		return errors.New("water.glass_ml must not exceed water.goal_ml")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
