package logbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Step upgrades one raw record from version v to v+1 in place.
type Step func(ctx context.Context, rec map[string]any) error

// Schema describes the versioned blob keys of one collection. Steps[v]
// upgrades a record from version v to v+1; a chain must exist from the oldest
// shipped version to Version.
type Schema struct {
	Name    string
	Version int
	Steps   map[int]Step
}

// Key returns the blob key for version v, e.g. meals-v6.
func (s Schema) Key(v int) string {
	return fmt.Sprintf("%s-v%d", s.Name, v)
}

// CurrentKey returns the blob key for the current version.
func (s Schema) CurrentKey() string {
	return s.Key(s.Version)
}

func (s Schema) oldest() int {
	oldest := s.Version
	for v := range s.Steps {
		if v < oldest {
			oldest = v
		}
	}
	return oldest
}

// validate checks that every version between oldest and current has a step.
func (s Schema) validate() error {
	for v := s.oldest(); v < s.Version; v++ {
		if s.Steps[v] == nil {
			return fmt.Errorf("schema %s: missing migration from v%d to v%d", s.Name, v, v+1)
		}
	}
	return nil
}

// migrate decodes a blob written at version from and upgrades every record to
// the current version. The result is re-encoded as a JSON array.
func (s Schema) migrate(ctx context.Context, from int, data []byte) ([]byte, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}
	for v := from; v < s.Version; v++ {
		step := s.Steps[v]
		for i, rec := range records {
			if err := step(ctx, rec); err != nil {
				return nil, fmt.Errorf("migrate %s record %d from v%d: %w", s.Name, i, v, err)
			}
		}
	}
	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode migrated %s: %w", s.Name, err)
	}
	return out, nil
}

func decodeRecords(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var records []map[string]any
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// setDefault assigns value to key when the record does not carry it.
func setDefault(rec map[string]any, key string, value any) {
	if _, ok := rec[key]; !ok {
		rec[key] = value
	}
}

// rename moves rec[from] to rec[to] unless rec[to] is already present.
func rename(rec map[string]any, from, to string) {
	value, ok := rec[from]
	if !ok {
		return
	}
	delete(rec, from)
	if _, exists := rec[to]; !exists {
		rec[to] = value
	}
}
