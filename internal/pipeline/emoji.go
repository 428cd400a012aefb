package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	EmojiPending  = "🔄"
	EmojiDefault  = "🍽️"
	EmojiExercise = "💪"
)

type emojiRule struct {
	emoji    string
	keywords []string
}

// Rules are checked in order; the first keyword found in the name wins.
var mealEmojiRules = []emojiRule{
	{"🍜", []string{"ラーメン", "うどん", "そば", "麺", "ramen", "noodle", "udon", "soba", "pho"}},
	{"🍛", []string{"カレー", "curry"}},
	{"🍣", []string{"寿司", "鮨", "刺身", "魚", "鮭", "sushi", "sashimi", "fish", "salmon"}},
	{"🍕", []string{"ピザ", "pizza"}},
	{"🍔", []string{"ハンバーガー", "バーガー", "burger"}},
	{"🍝", []string{"パスタ", "スパゲッティ", "pasta", "spaghetti"}},
	{"🥗", []string{"サラダ", "salad"}},
	{"🥩", []string{"ステーキ", "焼肉", "肉", "steak", "beef", "pork", "chicken", "meat"}},
	{"🍳", []string{"目玉焼き", "卵", "たまご", "玉子", "egg", "omelet"}},
	{"🍰", []string{"ケーキ", "スイーツ", "デザート", "cake", "sweets", "dessert"}},
	{"🍞", []string{"パン", "トースト", "bread", "toast", "sandwich"}},
	{"☕", []string{"コーヒー", "カフェ", "coffee", "latte"}},
	{"🍚", []string{"ご飯", "ごはん", "おにぎり", "丼", "米", "rice", "bowl", "onigiri"}},
}

// MealEmoji picks an emoji for a meal name, falling back to 🍽️.
func MealEmoji(name string) string {
	return matchEmoji(name, mealEmojiRules, EmojiDefault)
}

func matchEmoji(name string, rules []emojiRule, fallback string) string {
	folded := cases.Fold().String(name)
	if strings.TrimSpace(folded) == "" {
		return fallback
	}
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(folded, keyword) {
				return rule.emoji
			}
		}
	}
	return fallback
}
