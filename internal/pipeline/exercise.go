package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"nutrilog/internal/services"
)

// DefaultKcalPerMinute is the burn rate used when no intensity keyword
// matches and for exercise fallbacks.
const DefaultKcalPerMinute = 5.0

// Intensity labels.
const (
	IntensityLow      = "low"
	IntensityModerate = "moderate"
	IntensityHigh     = "high"
)

// ExerciseRequest describes a free-text exercise submission.
type ExerciseRequest struct {
	Description     string
	DurationMinutes int
}

// ExerciseEstimate is the estimator's answer.
type ExerciseEstimate struct {
	CaloriesBurned int
	Intensity      string
	Emoji          string
}

// ExerciseEstimator estimates calories burned for a described activity.
type ExerciseEstimator interface {
	EstimateExercise(ctx context.Context, req ExerciseRequest) (ExerciseEstimate, error)
}

type intensityRule struct {
	intensity string
	rate      float64
	emoji     string
	keywords  []string
}

var intensityRules = []intensityRule{
	{IntensityHigh, 9, "🏃", []string{"ランニング", "ジョギング", "走", "run", "jog", "sprint", "hiit", "激しい"}},
	{IntensityHigh, 8, "🏊", []string{"水泳", "泳", "swim"}},
	{IntensityHigh, 8, "🚴", []string{"サイクリング", "自転車", "cycling", "bike"}},
	{IntensityModerate, 6, "🏋️", []string{"筋トレ", "ウェイト", "strength", "weight", "lift", "squat"}},
	{IntensityLow, 3.5, "🧘", []string{"ヨガ", "ストレッチ", "yoga", "stretch", "pilates"}},
	{IntensityLow, 3.5, "🚶", []string{"散歩", "ウォーキング", "歩", "walk", "stroll", "軽い", "light"}},
}

// RateEstimator multiplies duration by a per-minute burn rate chosen from
// intensity keywords in the description.
type RateEstimator struct {
	DefaultRate float64
}

// EstimateExercise implements ExerciseEstimator.
func (e RateEstimator) EstimateExercise(ctx context.Context, req ExerciseRequest) (ExerciseEstimate, error) {
	if err := ctx.Err(); err != nil {
		return ExerciseEstimate{}, err
	}
	if req.DurationMinutes <= 0 {
		return ExerciseEstimate{}, services.Wrap(services.ErrValidation, "pipeline", "estimate exercise",
			fmt.Sprintf("duration must be positive, got %d", req.DurationMinutes), nil)
	}
	rate := e.DefaultRate
	if rate <= 0 {
		rate = DefaultKcalPerMinute
	}
	estimate := ExerciseEstimate{Intensity: IntensityModerate, Emoji: EmojiExercise}

	folded := cases.Fold().String(req.Description)
rules:
	for _, rule := range intensityRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(folded, keyword) {
				rate = rule.rate
				estimate.Intensity = rule.intensity
				estimate.Emoji = rule.emoji
				break rules
			}
		}
	}
	estimate.CaloriesBurned = burned(req.DurationMinutes, rate)
	return estimate, nil
}

func burned(minutes int, rate float64) int {
	return int(math.Round(float64(minutes) * rate))
}
