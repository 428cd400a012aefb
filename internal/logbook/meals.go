package logbook

import (
	"cmp"
	"slices"
	"time"
)

// MealLog is the persisted meal collection.
type MealLog struct {
	*Collection[Meal]
}

// List returns the meals logged for day, most recent first.
func (l *MealLog) List(day time.Time) []Meal {
	key := DayKey(day)
	meals := l.Filter(func(m Meal) bool { return DayKey(m.Date) == key })
	sortByTimeDesc(meals, func(m Meal) time.Time { return m.Time })
	return meals
}

// HasEntries reports whether anything, pending or not, is logged for day.
func (l *MealLog) HasEntries(day time.Time) bool {
	key := DayKey(day)
	return len(l.Filter(func(m Meal) bool { return DayKey(m.Date) == key })) > 0
}

// TotalsForDay sums the displayed nutrients of every resolved meal on day.
// Pending entries are excluded.
func (l *MealLog) TotalsForDay(day time.Time) Nutrients {
	var total Nutrients
	for _, meal := range l.List(day) {
		if meal.IsAnalyzing {
			continue
		}
		total = total.Add(meal.Displayed())
	}
	return total
}

// Pending returns every meal still waiting on analysis.
func (l *MealLog) Pending() []Meal {
	return l.Filter(func(m Meal) bool { return m.IsAnalyzing })
}

func sortByTimeDesc[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(at(b).UnixNano(), at(a).UnixNano())
	})
}
