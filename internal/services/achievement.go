package services

import (
	"fmt"
	"time"

	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/models"
)

var allSeasons = []string{"Summer", "Winter", "Spring", "Fall"}

const (
	minDistinctCuisines = 5
	minQuizAccuracy     = 90.0
)

// AchievementEngine awards achievements from a fixed table. Definitions are
// evaluated in table order so lower tiers are granted before higher ones.
type AchievementEngine struct {
	table  []models.Achievement
	now    func() time.Time
	logger *logger.Log
}

func NewAchievementEngine(table []models.Achievement) (*AchievementEngine, error) {
	if err := ValidateTable(table); err != nil {
		return nil, fmt.Errorf("invalid achievement table: %w", err)
	}
	return &AchievementEngine{
		table:  table,
		now:    time.Now,
		logger: logger.New(),
	}, nil
}

// Definitions returns the table in evaluation order.
func (e *AchievementEngine) Definitions() []models.Achievement {
	out := make([]models.Achievement, len(e.table))
	copy(out, e.table)
	return out
}

// Check awards every not-yet-earned achievement of category whose rule now
// holds, crediting its points through the ledger. It returns what was newly
// awarded. Earned achievements are never revoked or granted twice.
func (e *AchievementEngine) Check(p *models.Profile, category string) []models.Achievement {
	if p.Achievements == nil {
		p.Achievements = []models.EarnedAchievement{}
	}

	var awarded []models.Achievement
	for _, a := range e.table {
		if a.Category != category || p.HasAchievement(a.Name) {
			continue
		}
		if !e.satisfied(p, a) {
			continue
		}

		now := e.now()
		p.Achievements = append(p.Achievements, models.EarnedAchievement{
			Name:        a.Name,
			EarnedOn:    models.FormatDate(now),
			Description: a.Description,
		})
		AddPoints(p, a.Points, "Achievement unlocked: "+a.Name, now)
		awarded = append(awarded, a)

		e.logger.Award(p.Username, fmt.Sprintf("Achievement unlocked: %s (+%d)", a.Name, a.Points))
	}
	return awarded
}

// Progress is the value a definition's requirement is compared against.
func (e *AchievementEngine) Progress(p *models.Profile, a models.Achievement) int {
	recipes := categoryRecipes(p, a.Category)

	switch a.Rule {
	case models.RuleSugarFree:
		n := 0
		for _, r := range recipes {
			if r.IsSugarFree() {
				n++
			}
		}
		return n
	case models.RuleAllSeasons:
		seen := map[string]bool{}
		for _, r := range recipes {
			seen[r.Season] = true
		}
		n := 0
		for _, s := range allSeasons {
			if seen[s] {
				n++
			}
		}
		return n
	case models.RuleCuisines:
		seen := map[string]bool{}
		for _, r := range recipes {
			if r.Cuisine != "" {
				seen[r.Cuisine] = true
			}
		}
		return len(seen)
	case models.RuleCorrectAnswers:
		return p.QuizStats.CorrectAnswers
	case models.RuleAccuracy:
		return p.QuizStats.TotalAttempts
	case models.RuleStreak:
		return p.CurrentStreak
	}

	// RuleCount
	switch a.Category {
	case models.CategoryLeftover:
		return len(p.LeftoverIngredients)
	case models.CategoryQuiz:
		return p.QuizStats.CorrectAnswers
	default:
		return len(recipes)
	}
}

func (e *AchievementEngine) satisfied(p *models.Profile, a models.Achievement) bool {
	progress := e.Progress(p, a)

	switch a.Rule {
	case models.RuleAllSeasons:
		return progress == len(allSeasons)
	case models.RuleCuisines:
		return progress >= minDistinctCuisines
	case models.RuleAccuracy:
		return progress >= a.Requirement && p.QuizStats.Accuracy() >= minQuizAccuracy
	default:
		return progress >= a.Requirement
	}
}

// Views lists every definition with the user's earned state and progress.
func (e *AchievementEngine) Views(p *models.Profile) []models.AchievementView {
	earned := make(map[string]string, len(p.Achievements))
	for _, a := range p.Achievements {
		earned[a.Name] = a.EarnedOn
	}

	views := make([]models.AchievementView, 0, len(e.table))
	for _, a := range e.table {
		on, ok := earned[a.Name]
		views = append(views, models.AchievementView{
			Achievement: a,
			Earned:      ok,
			EarnedOn:    on,
			Progress:    e.Progress(p, a),
		})
	}
	return views
}

// categoryRecipes selects the recipes a category's rules look at: beverages
// and desserts by type, every created recipe otherwise.
func categoryRecipes(p *models.Profile, category string) []models.Recipe {
	switch category {
	case models.CategoryBeverage:
		return p.RecipesOfType(models.RecipeTypeBeverage)
	case models.CategoryDessert:
		return p.RecipesOfType(models.RecipeTypeDessert)
	default:
		return p.CreatedRecipes
	}
}
