package analysis_test

import (
	"errors"
	"testing"

	"nutrilog/internal/analysis"
	"nutrilog/internal/services"
)

func TestDecodeResultTolerance(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		calories int
		sodium   float64
	}{
		{
			name:     "plain",
			content:  `{"total_calories": 410, "total_protein": 12, "total_fat": 8, "total_carbs": 60, "total_sodium": 900}`,
			calories: 410,
			sodium:   900,
		},
		{
			name:     "code fence",
			content:  "```json\n{\"total_calories\": 410}\n```",
			calories: 410,
		},
		{
			name:     "surrounding prose",
			content:  "Here is the analysis: {\"total_calories\": \"410 kcal\", \"total_sodium\": \"1,200\"} enjoy",
			calories: 410,
			sodium:   1200,
		},
		{
			name:     "rounded calories",
			content:  `{"total_calories": 409.6}`,
			calories: 410,
		},
		{
			name:     "null fields",
			content:  `{"total_calories": 410, "total_sugar": null, "character_comment": null}`,
			calories: 410,
		},
		{
			name:     "totals summed from items",
			content:  `{"food_items": [{"name": "egg", "calories": 80, "sodium": 60}, {"name": "toast", "calories": 330, "sodium": 140}]}`,
			calories: 410,
			sodium:   200,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analysis.DecodeResult(tt.content)
			if err != nil {
				t.Fatalf("DecodeResult: %v", err)
			}
			if result.Totals.Calories != tt.calories {
				t.Fatalf("calories = %d, want %d", result.Totals.Calories, tt.calories)
			}
			if result.Totals.Sodium != tt.sodium {
				t.Fatalf("sodium = %v, want %v", result.Totals.Sodium, tt.sodium)
			}
		})
	}
}

func TestDecodeResultRejectsGarbage(t *testing.T) {
	for _, content := range []string{"", "not json", `{"total_calories": "lots"}`} {
		if _, err := analysis.DecodeResult(content); !errors.Is(err, services.ErrDecode) {
			t.Fatalf("DecodeResult(%q): expected decode error, got %v", content, err)
		}
	}
}

func TestNamesSkipBlankItems(t *testing.T) {
	result, err := analysis.DecodeResult(`{"food_items": [{"name": " "}, {"name": "Miso soup"}, {"name": 42}]}`)
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	names := result.Names()
	if len(names) != 2 || names[0] != "Miso soup" || names[1] != "42" {
		t.Fatalf("unexpected names: %v", names)
	}
}
