package pipeline

import (
	"math/rand/v2"
	"strings"
	"sync"

	"nutrilog/internal/logbook"
	"nutrilog/internal/textutil"
)

// Fallback estimate ranges, inclusive.
const (
	fallbackCaloriesMin, fallbackCaloriesMax = 300, 600
	fallbackProteinMin, fallbackProteinMax   = 15, 35
	fallbackFatMin, fallbackFatMax           = 10, 25
	fallbackCarbsMin, fallbackCarbsMax       = 30, 60

	// DefaultFallbackNameMaxRunes bounds a fallback name built from a
	// description.
	DefaultFallbackNameMaxRunes = 20
)

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) between(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.IntN(hi-lo+1)
}

func (r *lockedRand) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return options[r.rng.IntN(len(options))]
}

// estimateNutrients returns a randomised plausible meal. Sugar, fiber and
// sodium stay zero.
func (r *lockedRand) estimateNutrients() logbook.Nutrients {
	return logbook.Nutrients{
		Calories: r.between(fallbackCaloriesMin, fallbackCaloriesMax),
		Protein:  float64(r.between(fallbackProteinMin, fallbackProteinMax)),
		Fat:      float64(r.between(fallbackFatMin, fallbackFatMax)),
		Carbs:    float64(r.between(fallbackCarbsMin, fallbackCarbsMax)),
	}
}

// fallbackName is the description cut to maxRunes, or a random generic name
// when there is no description.
func fallbackName(description *string, maxRunes int, locale Locale, rng *lockedRand) string {
	if description != nil {
		if text := textutil.CollapseSpace(*description); text != "" {
			return strings.TrimSpace(textutil.TruncateRunes(text, maxRunes))
		}
	}
	return rng.pick(locale.FallbackNames())
}
