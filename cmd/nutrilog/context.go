package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"nutrilog/internal/app"
	"nutrilog/internal/config"
	"nutrilog/internal/logbook"
	"nutrilog/internal/logging"
)

const closeTimeout = 10 * time.Second

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	if c.verbose != nil && *c.verbose {
		return logging.NewFromConfig(cfg)
	}
	quiet := *cfg
	quiet.Logging.Level = "warn"
	return logging.NewFromConfig(&quiet)
}

// withApp opens the application services for the duration of fn.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error, opts ...app.Option) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if closeErr := a.Close(closeCtx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, a)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// parseDay resolves a YYYY-MM-DD flag in local time. Empty means today.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	day, err := logbook.ParseDay(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return day, nil
}

func addDateFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "date", "d", "", "Day to use (YYYY-MM-DD, default today)")
}
