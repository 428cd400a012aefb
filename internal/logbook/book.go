package logbook

import (
	"context"
	"log/slog"
	"time"

	"nutrilog/internal/kvstore"
)

// Options configures Open.
type Options struct {
	Logger *slog.Logger
	// LegacyImage receives photos that older meal schemas stored inline.
	LegacyImage LegacyImageFunc
	// WaterRetention bounds how long water records are kept. Zero uses
	// DefaultWaterRetention.
	WaterRetention time.Duration
	Clock          func() time.Time
}

// Book groups every persisted collection.
type Book struct {
	Meals          *MealLog
	Exercises      *ExerciseLog
	SavedMeals     *SavedMeals
	SavedExercises *SavedExercises
	Water          *WaterLog
}

// Open loads (and migrates) every collection from store.
func Open(ctx context.Context, store kvstore.Store, opts Options) (*Book, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.WaterRetention == 0 {
		opts.WaterRetention = DefaultWaterRetention
	}

	meals, err := OpenCollection[Meal](ctx, store, mealSchema(opts.LegacyImage), opts.Logger)
	if err != nil {
		return nil, err
	}
	exercises, err := OpenCollection[Exercise](ctx, store, exerciseSchema(), opts.Logger)
	if err != nil {
		return nil, err
	}
	savedMeals, err := OpenCollection[SavedMeal](ctx, store, savedMealSchema(opts.LegacyImage), opts.Logger)
	if err != nil {
		return nil, err
	}
	savedExercises, err := OpenCollection[SavedExercise](ctx, store, savedExerciseSchema(), opts.Logger)
	if err != nil {
		return nil, err
	}
	water, err := OpenCollection[Water](ctx, store, waterSchema(), opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Book{
		Meals:          &MealLog{Collection: meals},
		Exercises:      &ExerciseLog{Collection: exercises},
		SavedMeals:     &SavedMeals{Collection: savedMeals},
		SavedExercises: &SavedExercises{Collection: savedExercises},
		Water:          &WaterLog{c: water, retention: opts.WaterRetention, now: opts.Clock},
	}, nil
}
