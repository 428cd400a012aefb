package logbook

import (
	"context"
	"encoding/base64"
)

// LegacyImageFunc receives photo bytes that older schema versions stored
// inline, so they can be moved to the media store under the record id.
type LegacyImageFunc func(ctx context.Context, id string, data []byte) error

// Collection schema versions. Bump the version and add a step when a stored
// shape changes; never edit a shipped step.
const (
	MealsVersion          = 6
	ExercisesVersion      = 3
	SavedMealsVersion     = 2
	SavedExercisesVersion = 1
	WaterVersion          = 1
)

func mealSchema(onImage LegacyImageFunc) Schema {
	return Schema{
		Name:    "meals",
		Version: MealsVersion,
		Steps: map[int]Step{
			// v4 had no separate time-of-day and no emoji.
			4: func(_ context.Context, rec map[string]any) error {
				setDefault(rec, "time", rec["date"])
				setDefault(rec, "emoji", "🍽️")
				setDefault(rec, "isAnalyzing", false)
				return nil
			},
			// v5 lacked sugar/fiber/sodium and kept the photo inline.
			5: func(ctx context.Context, rec map[string]any) error {
				setDefault(rec, "sugar", 0)
				setDefault(rec, "fiber", 0)
				setDefault(rec, "sodium", 0)
				setDefault(rec, "quantity", 1)
				setDefault(rec, "isAnalyzingError", false)
				extractInlineImage(ctx, rec, "image", onImage)
				return nil
			},
		},
	}
}

func exerciseSchema() Schema {
	return Schema{
		Name:    "exercises",
		Version: ExercisesVersion,
		Steps: map[int]Step{
			// v2 called the burned calories "calories" and had no type or intensity.
			2: func(_ context.Context, rec map[string]any) error {
				rename(rec, "calories", "caloriesBurned")
				setDefault(rec, "exerciseType", string(ExerciseManual))
				setDefault(rec, "intensity", "")
				setDefault(rec, "isAnalyzing", false)
				setDefault(rec, "isAnalyzingError", false)
				return nil
			},
		},
	}
}

func savedMealSchema(onImage LegacyImageFunc) Schema {
	return Schema{
		Name:    "saved-meals",
		Version: SavedMealsVersion,
		Steps: map[int]Step{
			1: func(ctx context.Context, rec map[string]any) error {
				setDefault(rec, "sugar", 0)
				setDefault(rec, "fiber", 0)
				setDefault(rec, "sodium", 0)
				extractInlineImage(ctx, rec, "imageData", onImage)
				return nil
			},
		},
	}
}

func savedExerciseSchema() Schema {
	return Schema{Name: "saved-exercises", Version: SavedExercisesVersion}
}

func waterSchema() Schema {
	return Schema{Name: "water", Version: WaterVersion}
}

// extractInlineImage removes rec[field] and hands the decoded bytes to
// onImage. Undecodable or unhandled images are dropped; the entry itself is
// always kept.
func extractInlineImage(ctx context.Context, rec map[string]any, field string, onImage LegacyImageFunc) {
	raw, ok := rec[field]
	delete(rec, field)
	if !ok || onImage == nil {
		return
	}
	encoded, ok := raw.(string)
	if !ok || encoded == "" {
		return
	}
	id, _ := rec["id"].(string)
	if id == "" {
		return
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return
	}
	_ = onImage(ctx, id, data)
}
