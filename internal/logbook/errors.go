package logbook

import (
	"fmt"

	"nutrilog/internal/services"
)

var (
	// ErrNotFound reports a lookup or update of an id that is not stored.
	ErrNotFound = fmt.Errorf("logbook: entry %w", services.ErrNotFound)
	// ErrDuplicateID reports an insert whose id is already stored.
	ErrDuplicateID = fmt.Errorf("logbook: duplicate id: %w", services.ErrValidation)
)
