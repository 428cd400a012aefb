package analysis

import (
	"context"
	"strings"

	"nutrilog/internal/logbook"
	"nutrilog/internal/services"
)

// Analyzer estimates the nutrients of a meal photo or description.
type Analyzer interface {
	AnalyzeMeal(ctx context.Context, req Request) (Result, error)
	Close() error
}

// Request carries exactly one of a base64 JPEG or a free-text description.
type Request struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate reports requests that carry neither or both inputs.
func (r Request) Validate() error {
	hasImage := strings.TrimSpace(r.ImageBase64) != ""
	hasText := strings.TrimSpace(r.Description) != ""
	switch {
	case !hasImage && !hasText:
		return services.Wrap(services.ErrValidation, "analysis", "request", "image or description required", nil)
	case hasImage && hasText:
		return services.Wrap(services.ErrValidation, "analysis", "request", "image and description are mutually exclusive", nil)
	}
	return nil
}

// IsImage reports whether the request carries a photo.
func (r Request) IsImage() bool {
	return strings.TrimSpace(r.ImageBase64) != ""
}

// FoodItem is one dish recognised in the meal.
type FoodItem struct {
	Name   string
	Amount string
	logbook.Nutrients
}

// Result is a decoded analysis response.
type Result struct {
	FoodItems        []FoodItem
	Totals           logbook.Nutrients
	CharacterComment string
}

// Names returns the non-empty food item names in response order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r.FoodItems))
	for _, item := range r.FoodItems {
		if name := strings.TrimSpace(item.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
