package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutrilog/internal/events"
	"nutrilog/internal/logbook"
	"nutrilog/internal/services"
)

// RecordMeal logs a meal with known nutrients. The emoji is chosen from the
// name when empty.
func (o *Orchestrator) RecordMeal(ctx context.Context, meal logbook.Meal) (logbook.Meal, error) {
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return logbook.Meal{}, services.Wrap(services.ErrValidation, "pipeline", "record meal", "name is required", nil)
	}
	if err := validateNutrients(meal.Nutrients); err != nil {
		return logbook.Meal{}, err
	}
	now := o.now()
	if meal.ID == "" {
		meal.ID = o.newID()
	}
	if meal.Time.IsZero() {
		meal.Time = now
	}
	meal.Date = dayStart(meal.Date, meal.Time)
	if meal.Emoji == "" {
		meal.Emoji = MealEmoji(meal.Name)
	}
	if meal.Quantity < 1 {
		meal.Quantity = 1
	}
	meal.Lifecycle = logbook.Lifecycle{}

	if err := o.book.Meals.Insert(ctx, meal); err != nil {
		return logbook.Meal{}, services.Wrap(services.ErrStorage, "pipeline", "record meal", meal.ID, err)
	}
	o.bus.Enqueue(
		events.EntryAdded{Domain: logbook.DomainMeal, ID: meal.ID},
		events.ToastRequested{Message: o.locale.Logged(meal.Name), Severity: events.SeveritySuccess},
		events.DismissScreens{Target: events.TargetMeal},
	)
	o.bus.Drain()
	return meal, nil
}

// RecordExercise logs an exercise with known calories burned.
func (o *Orchestrator) RecordExercise(ctx context.Context, ex logbook.Exercise) (logbook.Exercise, error) {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return logbook.Exercise{}, services.Wrap(services.ErrValidation, "pipeline", "record exercise", "name is required", nil)
	}
	if ex.CaloriesBurned < 0 || ex.DurationMinutes < 0 {
		return logbook.Exercise{}, services.Wrap(services.ErrValidation, "pipeline", "record exercise",
			"calories and duration must not be negative", nil)
	}
	now := o.now()
	if ex.ID == "" {
		ex.ID = o.newID()
	}
	if ex.Time.IsZero() {
		ex.Time = now
	}
	ex.Date = dayStart(ex.Date, ex.Time)
	if ex.Type == "" {
		ex.Type = logbook.ExerciseManualEntry
	}
	if ex.Emoji == "" {
		ex.Emoji = EmojiExercise
	}
	ex.Lifecycle = logbook.Lifecycle{}

	if err := o.book.Exercises.Insert(ctx, ex); err != nil {
		return logbook.Exercise{}, services.Wrap(services.ErrStorage, "pipeline", "record exercise", ex.ID, err)
	}
	o.bus.Enqueue(
		events.EntryAdded{Domain: logbook.DomainExercise, ID: ex.ID},
		events.ToastRequested{Message: o.locale.Burned(ex.Name, ex.CaloriesBurned), Severity: events.SeveritySuccess},
		events.DismissScreens{Target: events.TargetExercise},
	)
	o.bus.Drain()
	return ex, nil
}

// RecordFromSavedMeal logs a new meal from a saved template.
func (o *Orchestrator) RecordFromSavedMeal(ctx context.Context, savedID string, date time.Time) (logbook.Meal, error) {
	saved, ok := o.book.SavedMeals.Get(savedID)
	if !ok {
		return logbook.Meal{}, fmt.Errorf("saved meal %s: %w", savedID, logbook.ErrNotFound)
	}
	return o.RecordMeal(ctx, logbook.Meal{
		Name:      saved.Name,
		Nutrients: saved.Nutrients,
		Emoji:     saved.Emoji,
		Date:      date,
	})
}

// RecordFromSavedExercise logs a new exercise from a saved template.
func (o *Orchestrator) RecordFromSavedExercise(ctx context.Context, savedID string, date time.Time) (logbook.Exercise, error) {
	saved, ok := o.book.SavedExercises.Get(savedID)
	if !ok {
		return logbook.Exercise{}, fmt.Errorf("saved exercise %s: %w", savedID, logbook.ErrNotFound)
	}
	return o.RecordExercise(ctx, logbook.Exercise{
		Name:            saved.Name,
		Type:            saved.Type,
		Intensity:       saved.Intensity,
		DurationMinutes: saved.DurationMinutes,
		CaloriesBurned:  saved.CaloriesBurned,
		Emoji:           saved.Emoji,
		Date:            date,
	})
}

// SaveMealTemplate copies a resolved meal into the saved list. A template
// with the same name is returned instead of a duplicate.
func (o *Orchestrator) SaveMealTemplate(ctx context.Context, entryID string) (logbook.SavedMeal, error) {
	meal, ok := o.book.Meals.Get(entryID)
	if !ok {
		return logbook.SavedMeal{}, fmt.Errorf("meal %s: %w", entryID, logbook.ErrNotFound)
	}
	if meal.IsAnalyzing {
		return logbook.SavedMeal{}, ErrEntryPending
	}
	if existing, ok := o.book.SavedMeals.FindByName(meal.Name); ok {
		return existing, nil
	}
	saved := logbook.SavedMeal{
		ID:        o.newID(),
		Name:      meal.Name,
		Nutrients: meal.Nutrients,
		Emoji:     meal.Emoji,
		SavedAt:   o.now(),
	}
	if err := o.book.SavedMeals.Insert(ctx, saved); err != nil {
		return logbook.SavedMeal{}, services.Wrap(services.ErrStorage, "pipeline", "save meal template", entryID, err)
	}
	o.publish(events.ToastRequested{Message: o.locale.SavedTemplate(saved.Name), Severity: events.SeveritySuccess})
	return saved, nil
}

// SaveExerciseTemplate copies a resolved exercise into the saved list.
func (o *Orchestrator) SaveExerciseTemplate(ctx context.Context, entryID string) (logbook.SavedExercise, error) {
	ex, ok := o.book.Exercises.Get(entryID)
	if !ok {
		return logbook.SavedExercise{}, fmt.Errorf("exercise %s: %w", entryID, logbook.ErrNotFound)
	}
	if ex.IsAnalyzing {
		return logbook.SavedExercise{}, ErrEntryPending
	}
	if existing, ok := o.book.SavedExercises.FindByName(ex.Name); ok {
		return existing, nil
	}
	saved := logbook.SavedExercise{
		ID:              o.newID(),
		Name:            ex.Name,
		Type:            ex.Type,
		Intensity:       ex.Intensity,
		DurationMinutes: ex.DurationMinutes,
		CaloriesBurned:  ex.CaloriesBurned,
		Emoji:           ex.Emoji,
		SavedAt:         o.now(),
	}
	if err := o.book.SavedExercises.Insert(ctx, saved); err != nil {
		return logbook.SavedExercise{}, services.Wrap(services.ErrStorage, "pipeline", "save exercise template", entryID, err)
	}
	o.publish(events.ToastRequested{Message: o.locale.SavedTemplate(saved.Name), Severity: events.SeveritySuccess})
	return saved, nil
}

// UpdateMeal applies user edits to a resolved meal. The id and analysis
// flags are kept. An empty name or emoji, a zero time or date and a
// quantity below one keep their stored values; nutrients and comment are
// always replaced by the edit.
func (o *Orchestrator) UpdateMeal(ctx context.Context, edit logbook.Meal) (logbook.Meal, error) {
	if err := validateNutrients(edit.Nutrients); err != nil {
		return logbook.Meal{}, err
	}
	updated, err := o.book.Meals.Mutate(ctx, edit.ID, func(m *logbook.Meal) error {
		if m.IsAnalyzing {
			return ErrEntryPending
		}
		next := edit
		next.ID = m.ID
		next.Lifecycle = m.Lifecycle
		if next.Name = strings.TrimSpace(next.Name); next.Name == "" {
			next.Name = m.Name
		}
		if next.Emoji == "" {
			next.Emoji = m.Emoji
		}
		if next.Time.IsZero() {
			next.Time = m.Time
		}
		if next.Date.IsZero() {
			next.Date = m.Date
		} else {
			next.Date = dayStart(next.Date, next.Time)
		}
		if next.Quantity < 1 {
			next.Quantity = m.Quantity
		}
		*m = next
		return nil
	})
	if err != nil {
		return logbook.Meal{}, err
	}
	o.publish(events.EntryUpdated{Domain: logbook.DomainMeal, ID: updated.ID})
	return updated, nil
}

// UpdateExercise applies user edits to a resolved exercise. An empty name,
// type or emoji and a zero time or date keep their stored values; calories,
// duration, intensity and comment are always replaced by the edit.
func (o *Orchestrator) UpdateExercise(ctx context.Context, edit logbook.Exercise) (logbook.Exercise, error) {
	if edit.CaloriesBurned < 0 || edit.DurationMinutes < 0 {
		return logbook.Exercise{}, services.Wrap(services.ErrValidation, "pipeline", "update exercise",
			"calories and duration must not be negative", nil)
	}
	updated, err := o.book.Exercises.Mutate(ctx, edit.ID, func(e *logbook.Exercise) error {
		if e.IsAnalyzing {
			return ErrEntryPending
		}
		next := edit
		next.ID = e.ID
		next.Lifecycle = e.Lifecycle
		if next.Name = strings.TrimSpace(next.Name); next.Name == "" {
			next.Name = e.Name
		}
		if next.Type == "" {
			next.Type = e.Type
		}
		if next.Emoji == "" {
			next.Emoji = e.Emoji
		}
		if next.Time.IsZero() {
			next.Time = e.Time
		}
		if next.Date.IsZero() {
			next.Date = e.Date
		} else {
			next.Date = dayStart(next.Date, next.Time)
		}
		*e = next
		return nil
	})
	if err != nil {
		return logbook.Exercise{}, err
	}
	o.publish(events.EntryUpdated{Domain: logbook.DomainExercise, ID: updated.ID})
	return updated, nil
}

// SetMealQuantity sets the serving multiplier of a meal.
func (o *Orchestrator) SetMealQuantity(ctx context.Context, id string, quantity int) (logbook.Meal, error) {
	if quantity < 1 {
		return logbook.Meal{}, services.Wrap(services.ErrValidation, "pipeline", "set quantity",
			fmt.Sprintf("quantity must be at least 1, got %d", quantity), nil)
	}
	updated, err := o.book.Meals.Mutate(ctx, id, func(m *logbook.Meal) error {
		m.Quantity = quantity
		return nil
	})
	if err != nil {
		return logbook.Meal{}, err
	}
	o.publish(events.EntryUpdated{Domain: logbook.DomainMeal, ID: id})
	return updated, nil
}

// DeleteMeal removes a meal and its photo. A pending meal is cancelled.
func (o *Orchestrator) DeleteMeal(ctx context.Context, id string) error {
	return o.deleteEntry(ctx, id, logbook.DomainMeal)
}

// DeleteExercise removes an exercise. A pending exercise is cancelled.
func (o *Orchestrator) DeleteExercise(ctx context.Context, id string) error {
	return o.deleteEntry(ctx, id, logbook.DomainExercise)
}

func (o *Orchestrator) deleteEntry(ctx context.Context, id string, domain logbook.Domain) error {
	cancelled, err := o.settle(ctx, id, nil, o.cancellation(domain))
	if err != nil || cancelled {
		return err
	}

	var found bool
	switch domain {
	case logbook.DomainExercise:
		_, found, err = o.book.Exercises.Remove(ctx, id)
	default:
		_, found, err = o.book.Meals.Remove(ctx, id)
	}
	if err != nil {
		return services.Wrap(services.ErrStorage, "pipeline", "delete entry", id, err)
	}
	if !found {
		return fmt.Errorf("%s %s: %w", domain, id, logbook.ErrNotFound)
	}
	if domain == logbook.DomainMeal {
		o.deleteMedia(id)
	}
	o.publish(events.EntryRemoved{Domain: domain, ID: id})
	return nil
}

func validateNutrients(n logbook.Nutrients) error {
	if n.Calories < 0 || n.Protein < 0 || n.Fat < 0 || n.Carbs < 0 || n.Sugar < 0 || n.Fiber < 0 || n.Sodium < 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "validate nutrients", "values must not be negative", nil)
	}
	return nil
}
