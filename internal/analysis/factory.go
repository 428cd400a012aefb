package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"nutrilog/internal/config"
	"nutrilog/internal/services"
)

// New builds the analyzer selected by cfg.Analysis.Backend.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Analyzer, error) {
	switch cfg.Analysis.Backend {
	case config.AnalysisHTTP, "":
		return NewClient(Config{
			BaseURL:        cfg.Analysis.BaseURL,
			APIKey:         cfg.Analysis.APIKey,
			TimeoutSeconds: cfg.Analysis.TimeoutSeconds,
		},
			WithRetryMaxAttempts(cfg.Analysis.RetryAttempts+1),
			WithLogger(logger),
		), nil
	case config.AnalysisGemini:
		g, err := NewGemini(ctx, cfg.Analysis.APIKey, cfg.Analysis.Model, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "new", fmt.Sprintf("unknown backend %q", cfg.Analysis.Backend), nil)
	}
}
