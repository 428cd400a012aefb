package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"nutrilog/internal/config"
	"nutrilog/internal/testsupport"
)

const analysisResponse = `{
  "food_items": [
    {"name": "Ramen", "amount": "1 bowl", "calories": 520, "protein": 20, "fat": 18, "carbs": 70},
    {"name": "Gyoza", "amount": "5 pieces", "calories": 230, "protein": 9.5, "fat": 11, "carbs": 24}
  ],
  "total_calories": 750,
  "total_protein": 29.5,
  "total_fat": 29,
  "total_carbs": 94,
  "character_comment": "Looks warming!"
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *httptest.Server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, analysisResponse)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithStorage(config.StorageSQLite),
		testsupport.WithLocale("en"),
		testsupport.WithAnalysisServer(server.URL),
	)
	cfg.Notifications.Toasts = false
	cfg.Analysis.RetryAttempts = 0

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, server: server}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("%s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return out
}

func decodeJSON[T any](t *testing.T, data string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		t.Fatalf("decode json: %v\n%s", err, data)
	}
	return v
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
