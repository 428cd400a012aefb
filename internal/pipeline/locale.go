package pipeline

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. English keys double as the English text.
const (
	msgPlaceholder   = "Analyzing..."
	msgGenericMeal   = "Meal"
	msgConnector     = " and "
	msgLogged        = "Logged %s"
	msgApproximate   = "Analysis was difficult, so %s was logged with estimated values"
	msgBurned        = "%s %d kcal burned"
	msgSavedTemplate = "Saved %s to your list"
	msgPhaseAnalyze  = "Analyzing"
	msgPhaseCompute  = "Computing nutrients"
	msgPhaseFinalize = "Finalizing"
	msgPhaseDone     = "Done"
)

var fallbackNameKeys = []string{"Analyzed dish", "Tasty-looking dish", "Healthy meal"}

var supportedLocales = []language.Tag{language.Japanese, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

func init() {
	ja := language.Japanese
	for key, text := range map[string]string{
		msgPlaceholder:      "分析中...",
		msgGenericMeal:      "食事",
		msgConnector:        "と",
		msgLogged:           "%sを記録しました",
		msgApproximate:      "分析が難しかったため、%sを概算値で記録しました",
		msgBurned:           "%s %d kcal 消費",
		msgSavedTemplate:    "%sをマイリストに保存しました",
		msgPhaseAnalyze:     "分析中",
		msgPhaseCompute:     "栄養素を計算中",
		msgPhaseFinalize:    "仕上げ中",
		msgPhaseDone:        "完了",
		fallbackNameKeys[0]: "分析した料理",
		fallbackNameKeys[1]: "美味しそうな料理",
		fallbackNameKeys[2]: "ヘルシーな食事",
	} {
		_ = message.SetString(ja, key, text)
	}
}

// Locale renders user-facing text in one supported language.
type Locale struct {
	tag     language.Tag
	printer *message.Printer
}

// ParseLocale matches value ("ja", "en-US", "ja_JP"...) against the supported
// languages. Unknown or empty values resolve to Japanese.
func ParseLocale(value string) Locale {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", "-")
	tag := supportedLocales[0]
	if value != "" {
		if parsed, err := language.Parse(value); err == nil {
			_, idx, confidence := localeMatcher.Match(parsed)
			if confidence != language.No {
				tag = supportedLocales[idx]
			}
		}
	}
	return Locale{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the matched language.
func (l Locale) Tag() language.Tag { return l.tag }

func (l Locale) p() *message.Printer {
	if l.printer == nil {
		return message.NewPrinter(supportedLocales[0])
	}
	return l.printer
}

func (l Locale) text(key string, args ...any) string {
	return l.p().Sprintf(key, args...)
}

// Placeholder is the name of an entry while it is analyzing.
func (l Locale) Placeholder() string { return l.text(msgPlaceholder) }

// GenericMeal names a resolved meal whose analysis listed no items.
func (l Locale) GenericMeal() string { return l.text(msgGenericMeal) }

// JoinNames combines food item names: one name is used as is, two or more
// join the first two with the locale connector.
func (l Locale) JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return l.GenericMeal()
	case 1:
		return names[0]
	default:
		return names[0] + l.text(msgConnector) + names[1]
	}
}

// FallbackNames returns the generic names used when a fallback has no
// description.
func (l Locale) FallbackNames() []string {
	out := make([]string, len(fallbackNameKeys))
	for i, key := range fallbackNameKeys {
		out[i] = l.text(key)
	}
	return out
}

// Logged is the success toast for a logged meal or exercise.
func (l Locale) Logged(name string) string { return l.text(msgLogged, name) }

// Approximate is the toast for a fallback estimate.
func (l Locale) Approximate(name string) string { return l.text(msgApproximate, name) }

// Burned is the success toast for an instant exercise record.
func (l Locale) Burned(name string, kcal int) string { return l.text(msgBurned, name, kcal) }

// SavedTemplate is the toast for a new saved template.
func (l Locale) SavedTemplate(name string) string { return l.text(msgSavedTemplate, name) }

// PhaseLabel localises a progress phase.
func (l Locale) PhaseLabel(phase string) string {
	switch phase {
	case PhaseAnalyzing:
		return l.text(msgPhaseAnalyze)
	case PhaseComputing:
		return l.text(msgPhaseCompute)
	case PhaseFinalizing:
		return l.text(msgPhaseFinalize)
	case PhaseDone:
		return l.text(msgPhaseDone)
	default:
		return phase
	}
}
