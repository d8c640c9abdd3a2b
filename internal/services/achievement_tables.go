package services

import (
	"fmt"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/models"
)

// Two versions of the app shipped with different thresholds for the same
// names. Neither is canonical, so both are available and one is picked in
// configuration.
const (
	TableClassic  = "classic"
	TableExtended = "extended"
)

var classicAchievements = []models.Achievement{
	{Name: "Recipe Rookie", Category: models.CategoryRecipe, Requirement: 15, Points: 25, Description: "Generate 15 recipes", Rule: models.RuleCount},
	{Name: "Recipe Master", Category: models.CategoryRecipe, Requirement: 45, Points: 50, Description: "Generate 45 recipes", Rule: models.RuleCount},
	{Name: "Recipe Chef", Category: models.CategoryRecipe, Requirement: 95, Points: 75, Description: "Generate 95 recipes", Rule: models.RuleCount},

	{Name: "Waste Warrior", Category: models.CategoryLeftover, Requirement: 15, Points: 25, Description: "Manage 15 leftover items", Rule: models.RuleCount},
	{Name: "Sustainability Star", Category: models.CategoryLeftover, Requirement: 75, Points: 50, Description: "Manage 75 leftover items", Rule: models.RuleCount},
	{Name: "Zero Waste Hero", Category: models.CategoryLeftover, Requirement: 180, Points: 75, Description: "Manage 180 leftover items", Rule: models.RuleCount},

	{Name: "Quiz Novice", Category: models.CategoryQuiz, Requirement: 5, Points: 25, Description: "Answer 5 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Quiz Expert", Category: models.CategoryQuiz, Requirement: 15, Points: 50, Description: "Answer 15 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Quiz Master", Category: models.CategoryQuiz, Requirement: 30, Points: 100, Description: "Answer 30 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Perfect Streak", Category: models.CategoryQuiz, Requirement: 5, Points: 50, Description: "Get 5 correct answers in a row", Rule: models.RuleStreak},

	{Name: "Beverage Beginner", Category: models.CategoryBeverage, Requirement: 5, Points: 25, Description: "Create 5 beverage recipes", Rule: models.RuleCount},
	{Name: "Mixology Master", Category: models.CategoryBeverage, Requirement: 15, Points: 50, Description: "Create 15 beverage recipes", Rule: models.RuleCount},
	{Name: "Drink Designer", Category: models.CategoryBeverage, Requirement: 30, Points: 75, Description: "Create 30 beverage recipes", Rule: models.RuleCount},

	{Name: "Sweet Beginner", Category: models.CategoryDessert, Requirement: 5, Points: 25, Description: "Create 5 dessert recipes", Rule: models.RuleCount},
	{Name: "Pastry Chef", Category: models.CategoryDessert, Requirement: 15, Points: 50, Description: "Create 15 dessert recipes", Rule: models.RuleCount},
	{Name: "Dessert Artist", Category: models.CategoryDessert, Requirement: 30, Points: 75, Description: "Create 30 dessert recipes", Rule: models.RuleCount},
}

var extendedAchievements = []models.Achievement{
	{Name: "Recipe Rookie", Category: models.CategoryRecipe, Requirement: 15, Points: 25, Description: "Generate 15 recipes", Rule: models.RuleCount},
	{Name: "Recipe Master", Category: models.CategoryRecipe, Requirement: 45, Points: 50, Description: "Generate 45 recipes", Rule: models.RuleCount},
	{Name: "Recipe Chef", Category: models.CategoryRecipe, Requirement: 95, Points: 75, Description: "Generate 95 recipes", Rule: models.RuleCount},

	{Name: "Waste Warrior", Category: models.CategoryLeftover, Requirement: 15, Points: 25, Description: "Manage 15 leftover items", Rule: models.RuleCount},
	{Name: "Sustainability Star", Category: models.CategoryLeftover, Requirement: 75, Points: 50, Description: "Manage 75 leftover items", Rule: models.RuleCount},
	{Name: "Zero Waste Hero", Category: models.CategoryLeftover, Requirement: 180, Points: 75, Description: "Manage 180 leftover items", Rule: models.RuleCount},

	{Name: "Quiz Novice", Category: models.CategoryQuiz, Requirement: 15, Points: 25, Description: "Answer 15 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Quiz Expert", Category: models.CategoryQuiz, Requirement: 25, Points: 50, Description: "Answer 25 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Quiz Master", Category: models.CategoryQuiz, Requirement: 50, Points: 100, Description: "Answer 50 quiz questions correctly", Rule: models.RuleCorrectAnswers},
	{Name: "Perfect Streak", Category: models.CategoryQuiz, Requirement: 5, Points: 50, Description: "Get 5 correct answers in a row", Rule: models.RuleStreak},
	{Name: "Quiz Champion", Category: models.CategoryQuiz, Requirement: 750, Points: 150, Description: "Achieve 90 percent accuracy over 750 questions", Rule: models.RuleAccuracy},

	{Name: "Beverage Beginner", Category: models.CategoryBeverage, Requirement: 15, Points: 25, Description: "Create 15 beverage recipes", Rule: models.RuleCount},
	{Name: "Mixology Master", Category: models.CategoryBeverage, Requirement: 25, Points: 50, Description: "Create 25 beverage recipes", Rule: models.RuleCount},
	{Name: "Drink Designer", Category: models.CategoryBeverage, Requirement: 50, Points: 75, Description: "Create 50 beverage recipes", Rule: models.RuleCount},
	{Name: "Seasonal Specialist", Category: models.CategoryBeverage, Requirement: 70, Points: 100, Description: "Create beverages for all seasons", Rule: models.RuleAllSeasons},
	{Name: "Healthy Hydration", Category: models.CategoryBeverage, Requirement: 100, Points: 150, Description: "Create 100 sugar-free beverages", Rule: models.RuleSugarFree},

	{Name: "Sweet Beginner", Category: models.CategoryDessert, Requirement: 15, Points: 25, Description: "Create 15 dessert recipes", Rule: models.RuleCount},
	{Name: "Pastry Chef", Category: models.CategoryDessert, Requirement: 25, Points: 50, Description: "Create 25 dessert recipes", Rule: models.RuleCount},
	{Name: "Dessert Artist", Category: models.CategoryDessert, Requirement: 50, Points: 75, Description: "Create 50 dessert recipes", Rule: models.RuleCount},
	{Name: "Global Sweet Master", Category: models.CategoryDessert, Requirement: 70, Points: 100, Description: "Create desserts from 5 different cuisines", Rule: models.RuleCuisines},
	{Name: "Healthy Sweet Maker", Category: models.CategoryDessert, Requirement: 100, Points: 150, Description: "Create 100 sugar-free desserts", Rule: models.RuleSugarFree},
}

var validCategories = map[string]bool{
	models.CategoryRecipe:   true,
	models.CategoryLeftover: true,
	models.CategoryQuiz:     true,
	models.CategoryBeverage: true,
	models.CategoryDessert:  true,
}

var validRules = map[models.Rule]bool{
	models.RuleCount:          true,
	models.RuleSugarFree:      true,
	models.RuleAllSeasons:     true,
	models.RuleCuisines:       true,
	models.RuleCorrectAnswers: true,
	models.RuleAccuracy:       true,
	models.RuleStreak:         true,
}

// AchievementTable returns a copy of the named built-in table.
func AchievementTable(name string) ([]models.Achievement, error) {
	var src []models.Achievement
	switch name {
	case TableClassic:
		src = classicAchievements
	case "", TableExtended:
		src = extendedAchievements
	default:
		return nil, fmt.Errorf("unknown achievement table: %s", name)
	}
	out := make([]models.Achievement, len(src))
	copy(out, src)
	return out, nil
}

// TableFromConfig picks the table configured under gamification. Custom
// definitions, when present, replace the built-in table entirely.
func TableFromConfig(cfg config.GamificationConfig) ([]models.Achievement, error) {
	if len(cfg.Achievements) == 0 {
		return AchievementTable(cfg.Table)
	}

	table := make([]models.Achievement, 0, len(cfg.Achievements))
	for _, d := range cfg.Achievements {
		rule := models.Rule(d.Rule)
		if rule == "" {
			rule = models.RuleCount
		}
		table = append(table, models.Achievement{
			Name:        d.Name,
			Category:    d.Category,
			Requirement: d.Requirement,
			Points:      d.Points,
			Description: d.Description,
			Rule:        rule,
		})
	}
	return table, nil
}

// ValidateTable checks every definition has a known category and rule and
// that names are unique.
func ValidateTable(table []models.Achievement) error {
	seen := make(map[string]bool, len(table))
	for i, a := range table {
		if a.Name == "" {
			return fmt.Errorf("achievement %d has no name", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate achievement name: %s", a.Name)
		}
		seen[a.Name] = true

		if !validCategories[a.Category] {
			return fmt.Errorf("achievement %s has unknown category %q", a.Name, a.Category)
		}
		if !validRules[a.Rule] {
			return fmt.Errorf("achievement %s has unknown rule %q", a.Name, a.Rule)
		}
	}
	return nil
}
