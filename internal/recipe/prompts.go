package recipe

import (
	"fmt"
	"strings"
)

const jsonInstructions = `
You MUST respond in valid JSON format only, with this EXACT structure:
{"title": "dish name", "ingredients": ["ingredient with measurement"], "instructions": ["step"], "servings": 2, "prep_time_minutes": 20, "text": "the complete recipe as readable text including tips"}
Do NOT include any text before or after the JSON.`

// BuildPrompt renders the prompt for req.
func BuildPrompt(req Request) (string, error) {
	var b strings.Builder

	switch req.Kind {
	case KindRecipe, "":
		if len(req.Ingredients) == 0 {
			return "", fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Create a detailed recipe using these ingredients: %s\n", strings.Join(req.Ingredients, ", "))
		writeOptional(&b, "Time of day", req.TimeOfDay)
		writeOptional(&b, "Current mood", req.Mood)
		writeOptional(&b, "Hunger level", req.HungerLevel)
		if req.CalorieLimit > 0 {
			fmt.Fprintf(&b, "- Total calories should not exceed %d kcal\n", req.CalorieLimit)
		}
		b.WriteString("Please include preparation time, cooking time, nutritional information and tips for portion control.\n")

	case KindMenu:
		fmt.Fprintf(&b, "Create a complete %s menu for a %s", orAny(req.Cuisine), orAny(req.Style))
		if req.Servings > 0 {
			fmt.Fprintf(&b, " serving %d people", req.Servings)
		}
		b.WriteString(".\nInclude an appetizer, main course, side dish, dessert and beverage.\n")
		if len(req.Ingredients) > 0 {
			fmt.Fprintf(&b, "Use these ingredients where possible: %s\n", strings.Join(req.Ingredients, ", "))
		}
		b.WriteString("For each course give the dish name, ingredients with quantities, preparation steps and presentation suggestions.\n")

	case KindBeverage:
		if len(req.Ingredients) == 0 {
			return "", fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Create a detailed %s recipe.\n", orDefault(req.Style, "beverage"))
		fmt.Fprintf(&b, "- Main ingredients: %s\n", strings.Join(req.Ingredients, ", "))
		fmt.Fprintf(&b, "- Preferences: %s\n", joinOr(req.Preferences, "Any"))
		fmt.Fprintf(&b, "- Season: %s\n", orDefault(req.Season, "All Seasons"))
		b.WriteString("Include serving suggestions, garnishing ideas and tips for best results.\n")

	case KindDessert:
		if len(req.Ingredients) == 0 {
			return "", fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Create a detailed dessert recipe (%s).\n", orDefault(req.Style, "any style"))
		fmt.Fprintf(&b, "- Main ingredients: %s\n", strings.Join(req.Ingredients, ", "))
		writeOptional(&b, "Cuisine", req.Cuisine)
		fmt.Fprintf(&b, "- Preferences: %s\n", joinOr(req.Preferences, "Any"))
		b.WriteString("Include baking or setting times, decoration ideas and storage tips.\n")

	case KindLeftover:
		if len(req.Ingredients) == 0 {
			return "", fmt.Errorf("%w: select at least one leftover ingredient", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Create a detailed recipe from these leftovers: %s\n", strings.Join(req.Ingredients, ", "))
		writeOptional(&b, "Meal type", req.MealType)
		if req.CookingTime > 0 {
			fmt.Fprintf(&b, "- Maximum cooking time: %d minutes\n", req.CookingTime)
		}
		if req.CalorieLimit > 0 {
			fmt.Fprintf(&b, "- Target calories: %d per serving\n", req.CalorieLimit)
		}
		writeOptional(&b, "Difficulty level", req.Difficulty)
		b.WriteString("Include storage suggestions for anything left over.\n")

	case KindCourse:
		if req.Course == "" {
			return "", fmt.Errorf("%w: course is required", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Suggest a %s for an event", req.Course)
		if req.Theme != "" {
			fmt.Fprintf(&b, " with a %s theme", req.Theme)
		}
		if req.Guests > 0 {
			fmt.Fprintf(&b, " for %d guests", req.Guests)
		}
		b.WriteString(".\nGive the dish name, a short description and scaled quantities.\n")

	case KindSearch:
		if strings.TrimSpace(req.Query) == "" {
			return "", fmt.Errorf("%w: search query is required", ErrInvalidRequest)
		}
		fmt.Fprintf(&b, "Provide a complete recipe for %q.\n", req.Query)
		b.WriteString("Include the ingredients list, nutritional information, step-by-step instructions, tips and serving suggestions.\n")

	default:
		return "", fmt.Errorf("%w: unknown request kind %s", ErrInvalidRequest, req.Kind)
	}

	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "- Dietary restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	writeMentions(&b, req.Mentions)
	b.WriteString(jsonInstructions)

	return b.String(), nil
}

func writeMentions(b *strings.Builder, m Mentions) {
	if m.Wants == "" && m.DontWants == "" && m.AdditionalNotes == "" {
		return
	}
	b.WriteString("Special requirements:\n")
	writeOptional(b, "Must include", m.Wants)
	writeOptional(b, "Must avoid", m.DontWants)
	writeOptional(b, "Additional notes", m.AdditionalNotes)
}

func writeOptional(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orAny(v string) string {
	return orDefault(v, "any")
}
