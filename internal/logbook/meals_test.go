package logbook_test

import (
	"context"
	"testing"
	"time"

	"nutrilog/internal/kvstore"
	"nutrilog/internal/logbook"
)

func TestTotalsForDayExcludesPendingEntries(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	pending := meal("a", "analyzing", 999, day.Add(9*time.Hour))
	pending.BeginAnalysis(day.Add(9 * time.Hour))
	resolved := meal("b", "apple", 100, day.Add(10*time.Hour))

	for _, m := range []logbook.Meal{pending, resolved} {
		if err := book.Meals.Insert(ctx, m); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if got := book.Meals.TotalsForDay(day).Calories; got != 100 {
		t.Fatalf("TotalsForDay calories = %d, want 100", got)
	}
	if !book.Meals.HasEntries(day) {
		t.Fatal("expected HasEntries to count pending entries")
	}
	if book.Meals.HasEntries(day.AddDate(0, 0, 1)) {
		t.Fatal("expected no entries on the next day")
	}
}

func TestListSortsByTimeDescending(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	// Inserted out of chronological order: a late lunch logged before breakfast.
	for _, m := range []logbook.Meal{
		meal("lunch", "lunch", 600, day.Add(13*time.Hour)),
		meal("breakfast", "breakfast", 400, day.Add(7*time.Hour)),
		meal("dinner", "dinner", 800, day.Add(19*time.Hour)),
		meal("other-day", "snack", 100, day.AddDate(0, 0, -1).Add(22*time.Hour)),
	} {
		if err := book.Meals.Insert(ctx, m); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got := book.Meals.List(day)
	want := []string{"dinner", "lunch", "breakfast"}
	if len(got) != len(want) {
		t.Fatalf("List returned %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("List returned %v, want %v", ids(got), want)
		}
	}
}

func TestQuantityScalesDisplayedValuesOnly(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	day := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	m := meal("q", "onigiri", 200, day)
	m.Protein = 4.5
	m.Quantity = 3
	if err := book.Meals.Insert(ctx, m); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	stored, _ := book.Meals.Get("q")
	if stored.Calories != 200 {
		t.Fatalf("stored base calories = %d, want 200", stored.Calories)
	}
	if got := stored.Displayed().Calories; got != 600 {
		t.Fatalf("displayed calories = %d, want 600", got)
	}
	if got := stored.Displayed().Protein; got != 13.5 {
		t.Fatalf("displayed protein = %v, want 13.5", got)
	}
	if got := book.Meals.TotalsForDay(day).Calories; got != 600 {
		t.Fatalf("day totals should use displayed values, got %d", got)
	}

	stored.Quantity = 0
	if stored.Multiplier() != 1 {
		t.Fatalf("unset quantity should count as 1, got %d", stored.Multiplier())
	}
}

func TestHasTimedOut(t *testing.T) {
	start := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	var lc logbook.Lifecycle
	if lc.HasTimedOut(start.Add(time.Hour)) {
		t.Fatal("resolved entry must never time out")
	}

	lc.BeginAnalysis(start)
	if lc.HasTimedOut(start.Add(30 * time.Second)) {
		t.Fatal("exactly the timeout should not count as timed out")
	}
	if !lc.HasTimedOut(start.Add(31 * time.Second)) {
		t.Fatal("expected timeout after 31s")
	}

	lc.Resolve(true)
	if lc.IsAnalyzing || !lc.IsAnalyzingError || lc.AnalyzingStartedAt != nil {
		t.Fatalf("unexpected lifecycle after fallback resolve: %+v", lc)
	}
	lc.Resolve(false)
	if lc.IsAnalyzing || lc.IsAnalyzingError {
		t.Fatalf("success must clear both flags: %+v", lc)
	}
}

func TestExerciseAggregates(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	entries := []logbook.Exercise{
		{ID: "run", Name: "run", Type: logbook.ExerciseRunning, CaloriesBurned: 300, Date: day, Time: day.Add(7 * time.Hour)},
		{ID: "lift", Name: "lift", Type: logbook.ExerciseStrength, CaloriesBurned: 150, Date: day, Time: day.Add(18 * time.Hour)},
		{ID: "walk", Name: "walk", Type: logbook.ExerciseRunning, CaloriesBurned: 100, Date: day, Time: day.Add(20 * time.Hour)},
	}
	pending := logbook.Exercise{ID: "pending", Type: logbook.ExerciseDescription, CaloriesBurned: 999, Date: day, Time: day.Add(21 * time.Hour)}
	pending.BeginAnalysis(day.Add(21 * time.Hour))
	entries = append(entries, pending)

	for _, e := range entries {
		if err := book.Exercises.Insert(ctx, e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if got := book.Exercises.BurnedForDay(day); got != 550 {
		t.Fatalf("BurnedForDay = %d, want 550", got)
	}
	byType := book.Exercises.CaloriesByType(day)
	if byType[logbook.ExerciseRunning] != 400 || byType[logbook.ExerciseStrength] != 150 {
		t.Fatalf("unexpected CaloriesByType: %v", byType)
	}
	if _, ok := byType[logbook.ExerciseDescription]; ok {
		t.Fatalf("pending exercise leaked into CaloriesByType: %v", byType)
	}
	if list := book.Exercises.List(day); list[0].ID != "pending" || list[len(list)-1].ID != "run" {
		t.Fatalf("unexpected list order: %+v", list)
	}
}
