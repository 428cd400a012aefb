package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"nutrilog/internal/logbook"
	"nutrilog/internal/services"
)

// Number decodes a JSON number, a numeric string such as "12.5" or "350kcal",
// or null.
type Number float64

var leadingNumber = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?`)

func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}
	if trimmed[0] != '"' {
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		*n = 0
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = Number(f)
		return nil
	}
	match := leadingNumber.FindString(s)
	if match == "" {
		return fmt.Errorf("not a number: %q", s)
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Text decodes a JSON string or number into a string.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(trimmed)
	return nil
}

type wireFoodItem struct {
	Name     Text   `json:"name"`
	Amount   Text   `json:"amount"`
	Calories Number `json:"calories"`
	Protein  Number `json:"protein"`
	Fat      Number `json:"fat"`
	Carbs    Number `json:"carbs"`
	Sugar    Number `json:"sugar"`
	Fiber    Number `json:"fiber"`
	Sodium   Number `json:"sodium"`
}

type wireResult struct {
	FoodItems        []wireFoodItem `json:"food_items"`
	TotalCalories    Number         `json:"total_calories"`
	TotalProtein     Number         `json:"total_protein"`
	TotalFat         Number         `json:"total_fat"`
	TotalCarbs       Number         `json:"total_carbs"`
	TotalSugar       Number         `json:"total_sugar"`
	TotalFiber       Number         `json:"total_fiber"`
	TotalSodium      Number         `json:"total_sodium"`
	CharacterComment Text           `json:"character_comment"`
}

func (w wireResult) toResult() Result {
	out := Result{
		Totals: logbook.Nutrients{
			Calories: roundCalories(w.TotalCalories),
			Protein:  float64(w.TotalProtein),
			Fat:      float64(w.TotalFat),
			Carbs:    float64(w.TotalCarbs),
			Sugar:    float64(w.TotalSugar),
			Fiber:    float64(w.TotalFiber),
			Sodium:   float64(w.TotalSodium),
		},
		CharacterComment: strings.TrimSpace(string(w.CharacterComment)),
	}
	var summed logbook.Nutrients
	for _, item := range w.FoodItems {
		n := logbook.Nutrients{
			Calories: roundCalories(item.Calories),
			Protein:  float64(item.Protein),
			Fat:      float64(item.Fat),
			Carbs:    float64(item.Carbs),
			Sugar:    float64(item.Sugar),
			Fiber:    float64(item.Fiber),
			Sodium:   float64(item.Sodium),
		}
		summed = summed.Add(n)
		out.FoodItems = append(out.FoodItems, FoodItem{
			Name:      strings.TrimSpace(string(item.Name)),
			Amount:    strings.TrimSpace(string(item.Amount)),
			Nutrients: n,
		})
	}
	// Some responses list items but leave every total at zero.
	if out.Totals == (logbook.Nutrients{}) && len(out.FoodItems) > 0 {
		out.Totals = summed
	}
	return out
}

func roundCalories(n Number) int {
	return int(math.Round(float64(n)))
}

// DecodeResult parses an analysis document, tolerating code fences and prose
// around the JSON object.
func DecodeResult(content string) (Result, error) {
	var wire wireResult
	if err := decodeJSON(content, &wire); err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "analysis", "decode", "malformed analysis response", err)
	}
	return wire.toResult(), nil
}

func decodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}
	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, summarizePayloadSnippet(sanitized))
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" || trimmed[0] == '{' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
