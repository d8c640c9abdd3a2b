package models

import (
	"encoding/json"
	"strings"
)

// Recipe types stored in created_recipes.
const (
	RecipeTypePlain    = ""
	RecipeTypeBeverage = "beverage"
	RecipeTypeDessert  = "dessert"
	RecipeTypeMenu     = "menu"
)

type Recipe struct {
	Name                string   `json:"name"`
	Type                string   `json:"type,omitempty"`
	Ingredients         []string `json:"ingredients"`
	Details             string   `json:"details"`
	Date                string   `json:"date"`
	Cuisine             string   `json:"cuisine,omitempty"`
	Season              string   `json:"season,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Occasion            string   `json:"occasion,omitempty"`
	Servings            int      `json:"servings,omitempty"`
	TimeOfDay           string   `json:"time_of_day,omitempty"`
	UserMood            string   `json:"user_mood,omitempty"`
	HungerLevel         string   `json:"hunger_level,omitempty"`
	CalorieLimit        int      `json:"calorie_limit,omitempty"`
	Timestamp           string   `json:"timestamp,omitempty"`
}

// UnmarshalJSON folds the legacy "complete_menu" type into "menu".
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "complete_menu" {
		p.Type = RecipeTypeMenu
	}
	*r = Recipe(p)
	return nil
}

// IsSugarFree reports whether the recipe lists the Sugar-Free restriction.
func (r Recipe) IsSugarFree() bool {
	for _, d := range r.DietaryRestrictions {
		if strings.EqualFold(d, "Sugar-Free") {
			return true
		}
	}
	return false
}

// LeftoverIngredient is an item the user has on hand.
type LeftoverIngredient struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Quantity   int    `json:"quantity"` // grams
	Storage    string `json:"storage"`
	Freshness  string `json:"freshness"`
	ExpiryDate string `json:"expiry_date"`
	DateAdded  string `json:"date_added"`
	Cuisine    string `json:"cuisine,omitempty"`
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
	Type     string `json:"type,omitempty"`
}

// LeftoverRecipe is a recipe generated from leftover ingredients.
type LeftoverRecipe struct {
	Name         string       `json:"name"`
	Ingredients  []Ingredient `json:"ingredients"`
	MealType     string       `json:"meal_type"`
	CookingTime  int          `json:"cooking_time"` // minutes
	Calories     int          `json:"calories"`
	Difficulty   string       `json:"difficulty"`
	DietaryPrefs []string     `json:"dietary_prefs"`
	Recipe       string       `json:"recipe"`
	Date         string       `json:"date"`
}

// UnmarshalJSON accepts ingredients written either as plain names or as objects.
func (l *LeftoverRecipe) UnmarshalJSON(data []byte) error {
	type plain LeftoverRecipe
	var raw struct {
		plain
		Ingredients []json.RawMessage `json:"ingredients"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = LeftoverRecipe(raw.plain)
	l.Ingredients = make([]Ingredient, 0, len(raw.Ingredients))
	for _, item := range raw.Ingredients {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			l.Ingredients = append(l.Ingredients, Ingredient{Name: name})
			continue
		}
		var ing Ingredient
		if err := json.Unmarshal(item, &ing); err != nil {
			return err
		}
		l.Ingredients = append(l.Ingredients, ing)
	}
	return nil
}

// Event statuses.
const (
	EventUpcoming  = "Upcoming"
	EventCompleted = "Completed"
)

type Event struct {
	ID                  string            `json:"id,omitempty"`
	Name                string            `json:"name"`
	Date                string            `json:"date"`
	Guests              int               `json:"guests"`
	Theme               string            `json:"theme"`
	DietaryRestrictions []string          `json:"dietary_restrictions"`
	Menu                map[string]string `json:"menu"`
	CostPerPerson       float64           `json:"cost_per_person"`
	TotalCost           float64           `json:"total_cost"`
	Status              string            `json:"status"`
}
