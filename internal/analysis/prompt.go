package analysis

// analysisSchema is appended to every Gemini prompt so both backends decode
// the same document.
const analysisSchema = `Respond with JSON only, no prose, in exactly this shape:
{
  "food_items": [
    {"name": "dish name", "amount": "portion, e.g. 1 bowl or 100g", "calories": 0, "protein": 0, "fat": 0, "carbs": 0, "sugar": 0, "fiber": 0, "sodium": 0}
  ],
  "total_calories": 0,
  "total_protein": 0,
  "total_fat": 0,
  "total_carbs": 0,
  "total_sugar": 0,
  "total_fiber": 0,
  "total_sodium": 0,
  "character_comment": "one short, friendly remark about the meal"
}
Calories are kcal, sodium is mg, every other nutrient is grams.`

const imagePrompt = "You are a nutritionist. Identify every dish in this photo and estimate its nutrients.\n\n" + analysisSchema

func textPrompt(description string) string {
	return "You are a nutritionist. Estimate the nutrients of this meal.\n\nMeal: " + description + "\n\n" + analysisSchema
}
