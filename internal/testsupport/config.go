package testsupport

import (
	"path/filepath"
	"testing"

	"nutrilog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage defaults to the in-memory backend; options override any field.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = config.StorageMemory
	cfgVal.Analysis.BaseURL = "http://127.0.0.1:0"
	cfgVal.Pipeline.ProgressIntervalMillis = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithStorage selects the key-value backend on the test config.
func WithStorage(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithLocale sets the pipeline locale on the test config.
func WithLocale(locale string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Locale = locale
	}
}

// WithAnalysisServer points the http analysis backend at url.
func WithAnalysisServer(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.Backend = config.AnalysisHTTP
		b.cfg.Analysis.BaseURL = url
	}
}

// WithNtfyTopic enables push mirroring to topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
