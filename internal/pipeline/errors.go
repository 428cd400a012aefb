package pipeline

import (
	"errors"
	"fmt"

	"nutrilog/internal/services"
)

var (
	// ErrAnalysisInFlight rejects a submission while the domain already has a
	// pending analysis.
	ErrAnalysisInFlight = errors.New("pipeline: analysis already in flight")
	// ErrInvalidTransition reports an event applied to a terminal task.
	ErrInvalidTransition = errors.New("pipeline: invalid transition")
	// ErrShutdown rejects submissions after Shutdown.
	ErrShutdown = errors.New("pipeline: shut down")
	// ErrEntryPending rejects edits to an entry that is still being analyzed.
	ErrEntryPending = fmt.Errorf("pipeline: entry is still analyzing: %w", services.ErrValidation)
)
