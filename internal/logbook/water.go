package logbook

import (
	"context"
	"fmt"
	"slices"
	"time"

	"nutrilog/internal/services"
)

// Water defaults.
const (
	DefaultGlassML        = 250
	DefaultGoalML         = 2000
	DefaultWaterRetention = 30 * 24 * time.Hour
)

// WaterLog keeps one cumulative water record per calendar day.
type WaterLog struct {
	c         *Collection[Water]
	retention time.Duration
	now       func() time.Time
}

// Amount returns the ml recorded for day.
func (w *WaterLog) Amount(day time.Time) int {
	rec, ok := w.c.Get(DayKey(day))
	if !ok {
		return 0
	}
	return rec.AmountML
}

// Add increases day's total by ml, creating the record on first write.
func (w *WaterLog) Add(ctx context.Context, day time.Time, ml int) (Water, error) {
	if ml <= 0 {
		return Water{}, services.Wrap(services.ErrValidation, "logbook", "water add", fmt.Sprintf("amount must be positive, got %d", ml), nil)
	}
	return w.upsert(ctx, day, func(current int) int { return current + ml })
}

// Subtract decreases day's total by ml, never below zero.
func (w *WaterLog) Subtract(ctx context.Context, day time.Time, ml int) (Water, error) {
	if ml <= 0 {
		return Water{}, services.Wrap(services.ErrValidation, "logbook", "water subtract", fmt.Sprintf("amount must be positive, got %d", ml), nil)
	}
	return w.upsert(ctx, day, func(current int) int { return max(0, current-ml) })
}

// Set overwrites day's total.
func (w *WaterLog) Set(ctx context.Context, day time.Time, ml int) (Water, error) {
	if ml < 0 {
		return Water{}, services.Wrap(services.ErrValidation, "logbook", "water set", fmt.Sprintf("amount must not be negative, got %d", ml), nil)
	}
	return w.upsert(ctx, day, func(int) int { return ml })
}

// Glasses returns how many glasses of glassML the day's total covers.
func (w *WaterLog) Glasses(day time.Time, glassML int) int {
	if glassML <= 0 {
		glassML = DefaultGlassML
	}
	return w.Amount(day) / glassML
}

// Progress returns the fraction of goalML reached on day, capped at 1.
func (w *WaterLog) Progress(day time.Time, goalML int) float64 {
	if goalML <= 0 {
		goalML = DefaultGoalML
	}
	return min(1, float64(w.Amount(day))/float64(goalML))
}

// All returns every retained record, newest first.
func (w *WaterLog) All() []Water {
	return w.c.All()
}

func (w *WaterLog) upsert(ctx context.Context, day time.Time, next func(current int) int) (Water, error) {
	key := DayKey(day)
	now := w.now()
	var result Water
	err := w.c.apply(ctx, func(current []Water) ([]Water, error) {
		idx := indexOf(current, key)
		if idx < 0 {
			result = Water{Day: key, AmountML: next(0), UpdatedAt: now}
			current = slices.Insert(current, 0, result)
		} else {
			current[idx].AmountML = next(current[idx].AmountML)
			current[idx].UpdatedAt = now
			result = current[idx]
		}
		return w.prune(current, now), nil
	})
	return result, err
}

// prune drops records older than the retention window.
func (w *WaterLog) prune(items []Water, now time.Time) []Water {
	if w.retention <= 0 {
		return items
	}
	cutoff := DayKey(now.Add(-w.retention))
	return slices.DeleteFunc(items, func(rec Water) bool { return rec.Day < cutoff })
}
