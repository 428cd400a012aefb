package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"nutrilog/internal/config"
)

// writeMetrics dumps the process registry in the node_exporter textfile
// format. Each invocation overwrites the file with its own counters.
func writeMetrics(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("metrics file: %w", err)
	}
	if err := prometheus.WriteToTextfile(expanded, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
