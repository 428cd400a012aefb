package logbook

import "time"

// ExerciseLog is the persisted exercise collection.
type ExerciseLog struct {
	*Collection[Exercise]
}

// List returns the exercises logged for day, most recent first.
func (l *ExerciseLog) List(day time.Time) []Exercise {
	key := DayKey(day)
	items := l.Filter(func(e Exercise) bool { return DayKey(e.Date) == key })
	sortByTimeDesc(items, func(e Exercise) time.Time { return e.Time })
	return items
}

// HasEntries reports whether anything is logged for day.
func (l *ExerciseLog) HasEntries(day time.Time) bool {
	key := DayKey(day)
	return len(l.Filter(func(e Exercise) bool { return DayKey(e.Date) == key })) > 0
}

// BurnedForDay sums calories burned by resolved exercises on day.
func (l *ExerciseLog) BurnedForDay(day time.Time) int {
	total := 0
	for _, e := range l.List(day) {
		if e.IsAnalyzing {
			continue
		}
		total += e.CaloriesBurned
	}
	return total
}

// CaloriesByType groups the resolved calories burned on day by exercise type.
func (l *ExerciseLog) CaloriesByType(day time.Time) map[ExerciseType]int {
	out := make(map[ExerciseType]int)
	for _, e := range l.List(day) {
		if e.IsAnalyzing {
			continue
		}
		out[e.Type] += e.CaloriesBurned
	}
	return out
}

// Pending returns every exercise still waiting on analysis.
func (l *ExerciseLog) Pending() []Exercise {
	return l.Filter(func(e Exercise) bool { return e.IsAnalyzing })
}
