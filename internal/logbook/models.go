package logbook

import (
	"time"
)

// AnalysisTimeout is how long an entry may stay pending before HasTimedOut
// reports true. It is advisory; nothing cancels the entry automatically.
const AnalysisTimeout = 30 * time.Second

const dayLayout = "2006-01-02"

// Domain identifies which log an entry belongs to.
type Domain string

const (
	DomainMeal     Domain = "meal"
	DomainExercise Domain = "exercise"
)

// DayKey returns the calendar day of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD day key in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dayLayout, value, loc)
}

// Nutrients holds the per-serving nutrient values of a meal. Sodium is in mg,
// everything else except calories in grams.
type Nutrients struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

// Add returns the field-wise sum.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Carbs:    n.Carbs + o.Carbs,
		Sugar:    n.Sugar + o.Sugar,
		Fiber:    n.Fiber + o.Fiber,
		Sodium:   n.Sodium + o.Sodium,
	}
}

// Scale multiplies every field by factor.
func (n Nutrients) Scale(factor int) Nutrients {
	f := float64(factor)
	return Nutrients{
		Calories: n.Calories * factor,
		Protein:  n.Protein * f,
		Fat:      n.Fat * f,
		Carbs:    n.Carbs * f,
		Sugar:    n.Sugar * f,
		Fiber:    n.Fiber * f,
		Sodium:   n.Sodium * f,
	}
}

// Lifecycle carries the analysis flags shared by meal and exercise entries.
type Lifecycle struct {
	IsAnalyzing        bool       `json:"isAnalyzing"`
	IsAnalyzingError   bool       `json:"isAnalyzingError"`
	AnalyzingStartedAt *time.Time `json:"analyzingStartedAt,omitempty"`
}

// BeginAnalysis marks the entry pending as of now.
func (l *Lifecycle) BeginAnalysis(now time.Time) {
	started := now
	l.IsAnalyzing = true
	l.IsAnalyzingError = false
	l.AnalyzingStartedAt = &started
}

// Resolve clears the pending flags. estimated marks the values as a fallback
// estimate rather than an analysis result.
func (l *Lifecycle) Resolve(estimated bool) {
	l.IsAnalyzing = false
	l.IsAnalyzingError = estimated
	l.AnalyzingStartedAt = nil
}

// HasTimedOut reports whether a pending entry has been analyzing for longer
// than AnalysisTimeout.
func (l Lifecycle) HasTimedOut(now time.Time) bool {
	if !l.IsAnalyzing || l.AnalyzingStartedAt == nil {
		return false
	}
	return now.Sub(*l.AnalyzingStartedAt) > AnalysisTimeout
}

// Meal is one logged meal.
type Meal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Nutrients
	Emoji    string    `json:"emoji"`
	Date     time.Time `json:"date"`
	Time     time.Time `json:"time"`
	Quantity int       `json:"quantity,omitempty"`
	Comment  string    `json:"characterComment,omitempty"`
	Lifecycle
}

func (m Meal) RecordID() string { return m.ID }

// Multiplier returns the quantity, treating unset values as 1.
func (m Meal) Multiplier() int {
	if m.Quantity < 1 {
		return 1
	}
	return m.Quantity
}

// Displayed returns the nutrients scaled by the quantity. The stored values
// are per serving and never change with the quantity.
func (m Meal) Displayed() Nutrients {
	return m.Nutrients.Scale(m.Multiplier())
}

// ExerciseType classifies how an exercise entry was recorded.
type ExerciseType string

const (
	ExerciseRunning     ExerciseType = "running"
	ExerciseStrength    ExerciseType = "strength"
	ExerciseDescription ExerciseType = "description"
	ExerciseManualEntry ExerciseType = "manual_entry"
	ExerciseManual      ExerciseType = "manual"
)

// Exercise is one logged activity.
type Exercise struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            ExerciseType `json:"exerciseType"`
	Intensity       string       `json:"intensity,omitempty"`
	DurationMinutes int          `json:"duration"`
	CaloriesBurned  int          `json:"caloriesBurned"`
	Emoji           string       `json:"emoji"`
	Date            time.Time    `json:"date"`
	Time            time.Time    `json:"time"`
	Comment         string       `json:"characterComment,omitempty"`
	Lifecycle
}

func (e Exercise) RecordID() string { return e.ID }

// SavedMeal is a reusable, undated meal template.
type SavedMeal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Nutrients
	Emoji   string    `json:"emoji"`
	SavedAt time.Time `json:"savedAt"`
}

func (s SavedMeal) RecordID() string { return s.ID }

// SavedExercise is a reusable, undated exercise template.
type SavedExercise struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Type            ExerciseType `json:"exerciseType"`
	Intensity       string       `json:"intensity,omitempty"`
	DurationMinutes int          `json:"duration"`
	CaloriesBurned  int          `json:"caloriesBurned"`
	Emoji           string       `json:"emoji"`
	SavedAt         time.Time    `json:"savedAt"`
}

func (s SavedExercise) RecordID() string { return s.ID }

// Water is the cumulative water intake for one calendar day.
type Water struct {
	Day       string    `json:"day"`
	AmountML  int       `json:"amountMl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w Water) RecordID() string { return w.Day }
