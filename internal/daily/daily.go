// Package daily answers read-only questions about one calendar day of the
// log: nutrients consumed, calories burned, net balance and water.
//
// Entries that are still analyzing are never counted.
package daily

import (
	"time"

	"nutrilog/internal/config"
	"nutrilog/internal/logbook"
)

// Summary is every aggregate for one day.
type Summary struct {
	Day            string
	Nutrients      logbook.Nutrients
	Burned         int
	Net            int
	BurnedByType   map[logbook.ExerciseType]int
	WaterML        int
	WaterGlasses   int
	WaterProgress  float64
	MealCount      int
	ExerciseCount  int
	PendingEntries int
}

// Queries computes daily aggregates over a log book.
type Queries struct {
	book    *logbook.Book
	glassML int
	goalML  int
}

// New returns Queries using the given glass size and daily water goal.
// Non-positive values use the logbook defaults.
func New(book *logbook.Book, glassML, goalML int) *Queries {
	if glassML <= 0 {
		glassML = logbook.DefaultGlassML
	}
	if goalML <= 0 {
		goalML = logbook.DefaultGoalML
	}
	return &Queries{book: book, glassML: glassML, goalML: goalML}
}

// NewFromConfig reads glass size and goal from the [water] section.
func NewFromConfig(cfg *config.Config, book *logbook.Book) *Queries {
	return New(book, cfg.Water.GlassML, cfg.Water.GoalML)
}

// Nutrients sums the displayed nutrients (base × quantity) of resolved meals.
func (q *Queries) Nutrients(day time.Time) logbook.Nutrients {
	return q.book.Meals.TotalsForDay(day)
}

// Burned sums calories burned by resolved exercises.
func (q *Queries) Burned(day time.Time) int {
	return q.book.Exercises.BurnedForDay(day)
}

// Net is calories consumed minus calories burned.
func (q *Queries) Net(day time.Time) int {
	return q.Nutrients(day).Calories - q.Burned(day)
}

// Summary collects every aggregate for day.
func (q *Queries) Summary(day time.Time) Summary {
	nutrients := q.Nutrients(day)
	burned := q.Burned(day)

	s := Summary{
		Day:           logbook.DayKey(day),
		Nutrients:     nutrients,
		Burned:        burned,
		Net:           nutrients.Calories - burned,
		BurnedByType:  q.book.Exercises.CaloriesByType(day),
		WaterML:       q.book.Water.Amount(day),
		WaterGlasses:  q.book.Water.Glasses(day, q.glassML),
		WaterProgress: q.book.Water.Progress(day, q.goalML),
	}
	for _, m := range q.book.Meals.List(day) {
		if m.IsAnalyzing {
			s.PendingEntries++
			continue
		}
		s.MealCount++
	}
	for _, e := range q.book.Exercises.List(day) {
		if e.IsAnalyzing {
			s.PendingEntries++
			continue
		}
		s.ExerciseCount++
	}
	return s
}
