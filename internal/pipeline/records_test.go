package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
	"nutrilog/internal/pipeline"
	"nutrilog/internal/services"
	"nutrilog/internal/testsupport"
)

func TestRecordMealPublishesAddedToastAndDismiss(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})

	meal, err := h.orch.RecordMeal(context.Background(), logbook.Meal{
		Name:      " Caesar salad ",
		Nutrients: logbook.Nutrients{Calories: 320, Protein: 12},
		Time:      testDay,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if meal.ID == "" || meal.Name != "Caesar salad" || meal.Emoji != "🥗" || meal.Quantity != 1 {
		t.Fatalf("unexpected meal %+v", meal)
	}
	if meal.IsAnalyzing || meal.IsAnalyzingError {
		t.Fatal("instant record must be resolved")
	}

	evs := h.rec.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d: %#v", len(evs), evs)
	}
	if added, ok := evs[0].(events.EntryAdded); !ok || added.ID != meal.ID {
		t.Fatalf("expected EntryAdded, got %#v", evs[0])
	}
	if toast, ok := evs[1].(events.ToastRequested); !ok || toast.Message != "Logged Caesar salad" || toast.Severity.Color() != "green" {
		t.Fatalf("unexpected toast %#v", evs[1])
	}
	if dismiss, ok := evs[2].(events.DismissScreens); !ok || dismiss.Target != events.TargetMeal {
		t.Fatalf("unexpected dismiss %#v", evs[2])
	}
}

func TestRecordMealValidates(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	if _, err := h.orch.RecordMeal(ctx, logbook.Meal{Name: "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	bad := logbook.Meal{Name: "x", Nutrients: logbook.Nutrients{Calories: -1}}
	if _, err := h.orch.RecordMeal(ctx, bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative calories, got %v", err)
	}
	if h.book.Meals.Len() != 0 {
		t.Fatal("invalid meals were stored")
	}
}

func TestRecordExerciseToast(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})

	ex, err := h.orch.RecordExercise(context.Background(), logbook.Exercise{
		Name:            "Running",
		Type:            logbook.ExerciseRunning,
		DurationMinutes: 25,
		CaloriesBurned:  240,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if ex.Emoji != pipeline.EmojiExercise {
		t.Fatalf("unexpected emoji %q", ex.Emoji)
	}
	evs := h.rec.Events()
	if toast, ok := evs[1].(events.ToastRequested); !ok || toast.Message != "Running 240 kcal burned" {
		t.Fatalf("unexpected toast %#v", evs[1])
	}
	if dismiss, ok := evs[2].(events.DismissScreens); !ok || dismiss.Kind() != "dismiss-screens:exercise" {
		t.Fatalf("unexpected dismiss %#v", evs[2])
	}
}

func TestSetMealQuantity(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	meal, err := h.orch.RecordMeal(ctx, logbook.Meal{Name: "Gyoza", Nutrients: logbook.Nutrients{Calories: 200}, Time: testDay})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := h.orch.SetMealQuantity(ctx, meal.ID, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	updated, err := h.orch.SetMealQuantity(ctx, meal.ID, 3)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if updated.Calories != 200 || updated.Displayed().Calories != 600 {
		t.Fatalf("expected stored 200 displayed 600, got %d %d", updated.Calories, updated.Displayed().Calories)
	}
	if got := h.book.Meals.TotalsForDay(testDay).Calories; got != 600 {
		t.Fatalf("day total %d, want 600", got)
	}
	if _, err := h.orch.SetMealQuantity(ctx, "missing", 2); !errors.Is(err, logbook.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMealKeepsIdentityAndRejectsPending(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true})
	ctx := context.Background()

	meal, err := h.orch.RecordMeal(ctx, logbook.Meal{Name: "Toast", Nutrients: logbook.Nutrients{Calories: 150}, Time: testDay})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	updated, err := h.orch.UpdateMeal(ctx, logbook.Meal{ID: meal.ID, Nutrients: logbook.Nutrients{Calories: 180}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Toast" || updated.Calories != 180 || !updated.Date.Equal(meal.Date) {
		t.Fatalf("unexpected update %+v", updated)
	}

	pendingID, err := h.orch.SubmitTextAnalysis(ctx, "ramen", testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := h.orch.UpdateMeal(ctx, logbook.Meal{ID: pendingID, Name: "edited"}); !errors.Is(err, pipeline.ErrEntryPending) {
		t.Fatalf("expected ErrEntryPending, got %v", err)
	}
}

func TestUpdateMealReplacesNutrientsAndComment(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	meal, err := h.orch.RecordMeal(ctx, logbook.Meal{
		Name:      "Oatmeal",
		Emoji:     "🥣",
		Quantity:  2,
		Comment:   "Warm start!",
		Nutrients: logbook.Nutrients{Calories: 300, Protein: 10, Fiber: 8},
		Time:      testDay,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	updated, err := h.orch.UpdateMeal(ctx, logbook.Meal{ID: meal.ID, Nutrients: logbook.Nutrients{Calories: 250}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Oatmeal" || updated.Emoji != "🥣" || updated.Quantity != 2 || !updated.Time.Equal(meal.Time) {
		t.Fatalf("zero fields should keep stored values, got %+v", updated)
	}
	if updated.Nutrients != (logbook.Nutrients{Calories: 250}) {
		t.Fatalf("nutrients should be replaced, got %+v", updated.Nutrients)
	}
	if updated.Comment != "" {
		t.Fatalf("comment should be replaced, got %q", updated.Comment)
	}
}

func TestDeleteMeal(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{Block: true})
	ctx := context.Background()

	meal, err := h.orch.RecordMeal(ctx, logbook.Meal{Name: "Pizza", Time: testDay})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := h.orch.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := h.orch.DeleteMeal(ctx, meal.ID); !errors.Is(err, logbook.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	pendingID, err := h.orch.SubmitImageAnalysis(ctx, testsupport.PNG(t, 16, 16), testDay)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := h.orch.DeleteMeal(ctx, pendingID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if h.book.Meals.Len() != 0 || h.media.Exists(pendingID) {
		t.Fatal("pending meal or photo survived delete")
	}
	if _, ok := h.orch.Active(logbook.DomainMeal); ok {
		t.Fatal("deleting a pending meal should free the domain")
	}
}

func TestSavedTemplates(t *testing.T) {
	h := newHarness(t, &testsupport.FakeAnalyzer{})
	ctx := context.Background()

	meal, err := h.orch.RecordMeal(ctx, logbook.Meal{Name: "Oatmeal", Nutrients: logbook.Nutrients{Calories: 300, Fiber: 8}, Time: testDay})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	saved, err := h.orch.SaveMealTemplate(ctx, meal.ID)
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	again, err := h.orch.SaveMealTemplate(ctx, meal.ID)
	if err != nil || again.ID != saved.ID {
		t.Fatalf("saving twice should return the existing template: %v %+v", err, again)
	}
	if h.book.SavedMeals.Len() != 1 {
		t.Fatalf("expected one template, got %d", h.book.SavedMeals.Len())
	}

	replayed, err := h.orch.RecordFromSavedMeal(ctx, saved.ID, testDay)
	if err != nil {
		t.Fatalf("record from saved: %v", err)
	}
	if replayed.ID == meal.ID || replayed.Calories != 300 || replayed.Fiber != 8 {
		t.Fatalf("unexpected replay %+v", replayed)
	}
	if _, err := h.orch.RecordFromSavedMeal(ctx, "missing", testDay); !errors.Is(err, logbook.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ex, err := h.orch.RecordExercise(ctx, logbook.Exercise{Name: "Yoga", DurationMinutes: 30, CaloriesBurned: 105})
	if err != nil {
		t.Fatalf("record exercise: %v", err)
	}
	savedEx, err := h.orch.SaveExerciseTemplate(ctx, ex.ID)
	if err != nil {
		t.Fatalf("save exercise template: %v", err)
	}
	replayedEx, err := h.orch.RecordFromSavedExercise(ctx, savedEx.ID, testDay)
	if err != nil || replayedEx.CaloriesBurned != 105 {
		t.Fatalf("record from saved exercise: %v %+v", err, replayedEx)
	}
}
