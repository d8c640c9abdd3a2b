package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/quiz"
	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/store"
)

const youtubeSearchURL = "https://www.youtube.com/results?search_query="

// RecipeGenerator is the part of recipe.Adapter the kitchen depends on.
type RecipeGenerator interface {
	Generate(ctx context.Context, username string, req recipe.Request) (*recipe.Generated, error)
	Search(ctx context.Context, username, query string) (*recipe.Generated, error)
}

// Notification types pushed to connected clients.
const (
	NotifyPointsChanged       = "points_changed"
	NotifyAchievementUnlocked = "achievement_unlocked"
)

type Notification struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	Points      int    `json:"points"`
	Achievement string `json:"achievement,omitempty"`
	Description string `json:"description,omitempty"`
}

// Notifier receives profile changes after they were saved.
type Notifier interface {
	Notify(n Notification)
}

// Outcome is what a user action changed on the profile.
type Outcome struct {
	Generated *recipe.Generated    `json:"generated,omitempty"`
	Awarded   []models.Achievement `json:"awarded"`
	Points    int                  `json:"points"`
}

type QuizOutcome struct {
	Outcome
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
	Streak   int    `json:"current_streak"`
}

// LeftoverRequest selects stored leftovers to cook with.
type LeftoverRequest struct {
	Selected     []string        `json:"selected"`
	MealType     string          `json:"meal_type"`
	CookingTime  int             `json:"cooking_time"`
	Calories     int             `json:"calories"`
	Difficulty   string          `json:"difficulty"`
	DietaryPrefs []string        `json:"dietary_prefs"`
	Mentions     recipe.Mentions `json:"mentions"`
}

// KitchenService runs every point-earning user action: generate through the
// adapter first, then credit points, check achievements and save in one
// store update. A failed generation leaves the profile untouched.
type KitchenService struct {
	store     store.Store
	generator RecipeGenerator
	engine    *AchievementEngine
	bank      *quiz.Bank
	pantry    *recipe.Pantry
	points    config.PointsConfig
	notifier  Notifier
	now       func() time.Time
	logger    *logger.Log
}

func NewKitchenService(s store.Store, generator RecipeGenerator, engine *AchievementEngine, bank *quiz.Bank, pantry *recipe.Pantry, points config.PointsConfig) *KitchenService {
	return &KitchenService{
		store:     s,
		generator: generator,
		engine:    engine,
		bank:      bank,
		pantry:    pantry,
		points:    points,
		now:       time.Now,
		logger:    logger.New(),
	}
}

func (s *KitchenService) SetNotifier(n Notifier) {
	s.notifier = n
}

// apply runs mutate, credits delta for reason and, when category is set,
// checks that category's achievements, all inside one store update.
func (s *KitchenService) apply(username string, delta int, reason, category string, mutate func(p *models.Profile) error) (*Outcome, error) {
	out := &Outcome{}
	p, err := s.store.Update(username, func(p *models.Profile) error {
		if mutate != nil {
			if err := mutate(p); err != nil {
				return err
			}
		}
		AddPoints(p, delta, reason, s.now())
		if category != "" {
			out.Awarded = s.engine.Check(p, category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Awarded == nil {
		out.Awarded = []models.Achievement{}
	}
	out.Points = p.Points
	s.notify(username, out)
	return out, nil
}

func (s *KitchenService) notify(username string, out *Outcome) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Notification{Type: NotifyPointsChanged, Username: username, Points: out.Points})
	for _, a := range out.Awarded {
		s.notifier.Notify(Notification{
			Type:        NotifyAchievementUnlocked,
			Username:    username,
			Points:      a.Points,
			Achievement: a.Name,
			Description: a.Description,
		})
	}
}

// ensureUser fails fast for unknown users so no generation is spent on them.
func (s *KitchenService) ensureUser(username string) (*models.Profile, error) {
	return s.store.Get(username)
}

// SearchRecipe looks a dish up by name and keeps it in the search history
// together with a video search link.
func (s *KitchenService) SearchRecipe(ctx context.Context, username, query string) (*models.RecipeSearch, *Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if _, err := s.ensureUser(username); err != nil {
		return nil, nil, err
	}

	g, err := s.generator.Search(ctx, username, query)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	search := models.RecipeSearch{
		Recipe:          query,
		Date:            models.FormatDate(now),
		Details:         g.Text,
		YoutubeLink:     YoutubeLink(query),
		SearchTimestamp: float64(now.UnixNano()) / float64(time.Second),
	}

	out, err := s.apply(username, s.points.Search, "Searched recipe: "+query, "", func(p *models.Profile) error {
		p.RecipeSearches = append(p.RecipeSearches, search)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	out.Generated = g
	return &search, out, nil
}

// YoutubeLink returns the video search URL for a dish.
func YoutubeLink(query string) string {
	return youtubeSearchURL + strings.ReplaceAll(url.QueryEscape(query+" recipe"), "+", "%20")
}

// RecentSearches returns up to limit searches, newest first.
func (s *KitchenService) RecentSearches(username string, limit int) ([]models.RecipeSearch, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	out := make([]models.RecipeSearch, 0, limit)
	for i := len(p.RecipeSearches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, p.RecipeSearches[i])
	}
	return out, nil
}

// GenerateRecipe creates a personalised recipe from selected ingredients.
func (s *KitchenService) GenerateRecipe(ctx context.Context, username string, req recipe.Request) (*Outcome, error) {
	req.Kind = recipe.KindRecipe
	return s.generateAndRecord(ctx, username, req, s.points.Recipe, "Generated personalized recipe", models.CategoryRecipe,
		func(g *recipe.Generated, now time.Time) models.Recipe {
			return models.Recipe{
				Name:                "Recipe with " + strings.Join(req.Ingredients, ", "),
				Ingredients:         req.Ingredients,
				Details:             g.Text,
				Date:                now.Format(models.DayLayout),
				DietaryRestrictions: req.DietaryRestrictions,
				TimeOfDay:           req.TimeOfDay,
				UserMood:            req.Mood,
				HungerLevel:         req.HungerLevel,
				CalorieLimit:        req.CalorieLimit,
				Timestamp:           models.FormatDate(now),
			}
		})
}

// GenerateMenu plans a complete menu. Menus count toward recipe achievements.
func (s *KitchenService) GenerateMenu(ctx context.Context, username string, req recipe.Request) (*Outcome, error) {
	req.Kind = recipe.KindMenu
	return s.generateAndRecord(ctx, username, req, s.points.Menu, "Generated complete menu", models.CategoryRecipe,
		func(g *recipe.Generated, now time.Time) models.Recipe {
			return models.Recipe{
				Name:                strings.TrimSpace(fmt.Sprintf("%s %s Menu", req.Cuisine, req.Style)),
				Type:                models.RecipeTypeMenu,
				Ingredients:         req.Ingredients,
				Details:             g.Text,
				Date:                models.FormatDate(now),
				Cuisine:             req.Cuisine,
				Occasion:            req.Style,
				Servings:            req.Servings,
				DietaryRestrictions: req.DietaryRestrictions,
			}
		})
}

func (s *KitchenService) GenerateBeverage(ctx context.Context, username string, req recipe.Request) (*Outcome, error) {
	req.Kind = recipe.KindBeverage
	return s.generateAndRecord(ctx, username, req, s.points.Beverage, "Generated beverage recipe", models.CategoryBeverage,
		func(g *recipe.Generated, now time.Time) models.Recipe {
			return models.Recipe{
				Name:                strings.TrimSpace(req.Style + " Recipe"),
				Type:                models.RecipeTypeBeverage,
				Ingredients:         req.Ingredients,
				Details:             g.Text,
				Date:                models.FormatDate(now),
				DietaryRestrictions: req.DietaryRestrictions,
				Season:              req.Season,
			}
		})
}

func (s *KitchenService) GenerateDessert(ctx context.Context, username string, req recipe.Request) (*Outcome, error) {
	req.Kind = recipe.KindDessert
	return s.generateAndRecord(ctx, username, req, s.points.Dessert, "Generated dessert recipe", models.CategoryDessert,
		func(g *recipe.Generated, now time.Time) models.Recipe {
			name := strings.TrimSpace(req.Cuisine + " " + req.Style)
			if name == "" {
				name = g.Title
			}
			return models.Recipe{
				Name:                name,
				Type:                models.RecipeTypeDessert,
				Ingredients:         req.Ingredients,
				Details:             g.Text,
				Date:                models.FormatDate(now),
				Cuisine:             req.Cuisine,
				DietaryRestrictions: req.DietaryRestrictions,
			}
		})
}

func (s *KitchenService) generateAndRecord(ctx context.Context, username string, req recipe.Request, delta int, reason, category string,
	build func(g *recipe.Generated, now time.Time) models.Recipe) (*Outcome, error) {
	if _, err := s.ensureUser(username); err != nil {
		return nil, err
	}

	g, err := s.generator.Generate(ctx, username, req)
	if err != nil {
		return nil, err
	}

	rec := build(g, s.now())
	out, err := s.apply(username, delta, reason, category, func(p *models.Profile) error {
		p.CreatedRecipes = append(p.CreatedRecipes, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Generated = g
	return out, nil
}

// Recipes returns the user's created recipes in creation order.
func (s *KitchenService) Recipes(username string) ([]models.Recipe, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	return p.CreatedRecipes, nil
}

// RecipesOfType returns the user's created recipes of one type, or all of
// them when recipeType is empty.
func (s *KitchenService) RecipesOfType(username, recipeType string) ([]models.Recipe, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	return p.RecipesOfType(recipeType), nil
}

// Recipe returns the created recipe at index.
func (s *KitchenService) Recipe(username string, index int) (*models.Recipe, error) {
	recipes, err := s.Recipes(username)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(recipes) {
		return nil, fmt.Errorf("recipe %d: %w", index, ErrNotFound)
	}
	return &recipes[index], nil
}

// SearchIngredients matches term against the ingredient catalogue.
func (s *KitchenService) SearchIngredients(term string) []string {
	return s.pantry.Search(term)
}

// AddLeftover stores an ingredient the user has on hand.
func (s *KitchenService) AddLeftover(username string, item models.LeftoverIngredient) (*Outcome, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", ErrInvalidInput)
	}
	if item.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}
	item.DateAdded = models.FormatDate(s.now())

	return s.apply(username, s.points.Leftover, "Added leftover: "+item.Name, models.CategoryLeftover, func(p *models.Profile) error {
		p.LeftoverIngredients = append(p.LeftoverIngredients, item)
		return nil
	})
}

func (s *KitchenService) Leftovers(username string) ([]models.LeftoverIngredient, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	return p.LeftoverIngredients, nil
}

// GenerateLeftoverRecipe cooks with selected stored leftovers. The leftovers
// stay in stock until UseLeftovers is called.
func (s *KitchenService) GenerateLeftoverRecipe(ctx context.Context, username string, req LeftoverRequest) (*Outcome, error) {
	if len(req.Selected) == 0 {
		return nil, fmt.Errorf("%w: select at least one leftover ingredient", ErrInvalidInput)
	}
	p, err := s.ensureUser(username)
	if err != nil {
		return nil, err
	}

	stock := make(map[string]models.LeftoverIngredient, len(p.LeftoverIngredients))
	for _, item := range p.LeftoverIngredients {
		if _, ok := stock[item.Name]; !ok {
			stock[item.Name] = item
		}
	}

	ingredients := make([]models.Ingredient, 0, len(req.Selected))
	names := make([]string, 0, len(req.Selected))
	for _, name := range req.Selected {
		item, ok := stock[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not in your leftovers", ErrInvalidInput, name)
		}
		ingredients = append(ingredients, models.Ingredient{Name: name, Quantity: item.Quantity, Type: item.Type})
		names = append(names, fmt.Sprintf("%s (%dg)", name, item.Quantity))
	}

	g, err := s.generator.Generate(ctx, username, recipe.Request{
		Kind:                recipe.KindLeftover,
		Ingredients:         names,
		DietaryRestrictions: req.DietaryPrefs,
		Mentions:            req.Mentions,
		MealType:            req.MealType,
		CookingTime:         req.CookingTime,
		CalorieLimit:        req.Calories,
		Difficulty:          req.Difficulty,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	saved := models.LeftoverRecipe{
		Name:         fmt.Sprintf("Leftover Recipe (%s)", models.FormatDate(now)),
		Ingredients:  ingredients,
		MealType:     req.MealType,
		CookingTime:  req.CookingTime,
		Calories:     req.Calories,
		Difficulty:   req.Difficulty,
		DietaryPrefs: req.DietaryPrefs,
		Recipe:       g.Text,
		Date:         models.FormatDate(now),
	}

	out, err := s.apply(username, s.points.LeftoverRecipe, "Generated leftover recipe", "", func(p *models.Profile) error {
		p.Leftovers = append(p.Leftovers, saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Generated = g
	return out, nil
}

// UseLeftovers removes every stored leftover with one of names and returns
// how many entries were removed.
func (s *KitchenService) UseLeftovers(username string, names []string) (int, error) {
	used := make(map[string]bool, len(names))
	for _, n := range names {
		used[n] = true
	}

	removed := 0
	_, err := s.store.Update(username, func(p *models.Profile) error {
		kept := p.LeftoverIngredients[:0]
		for _, item := range p.LeftoverIngredients {
			if used[item.Name] {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		p.LeftoverIngredients = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// CreateEvent plans a new event for the user.
func (s *KitchenService) CreateEvent(username string, e models.Event) (*models.Event, *Outcome, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" || e.Date == "" {
		return nil, nil, fmt.Errorf("%w: event name and date are required", ErrInvalidInput)
	}
	if _, err := time.Parse(models.DayLayout, e.Date); err != nil {
		return nil, nil, fmt.Errorf("%w: event date must look like YYYY-MM-DD", ErrInvalidInput)
	}
	if e.Guests < 0 || e.CostPerPerson < 0 {
		return nil, nil, fmt.Errorf("%w: guests and cost cannot be negative", ErrInvalidInput)
	}

	e.ID = uuid.NewString()
	e.Status = models.EventUpcoming
	e.TotalCost = e.CostPerPerson * float64(e.Guests)
	if e.Menu == nil {
		e.Menu = map[string]string{}
	}
	if e.DietaryRestrictions == nil {
		e.DietaryRestrictions = []string{}
	}

	out, err := s.apply(username, s.points.Event, "Created new event: "+e.Name, "", func(p *models.Profile) error {
		p.CompletedEvents = append(p.CompletedEvents, e)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &e, out, nil
}

func (s *KitchenService) Events(username string) ([]models.Event, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}
	return p.CompletedEvents, nil
}

// SuggestEventCourse asks for dish ideas for one course of an event.
func (s *KitchenService) SuggestEventCourse(ctx context.Context, username string, req recipe.Request) (*Outcome, error) {
	req.Kind = recipe.KindCourse
	if _, err := s.ensureUser(username); err != nil {
		return nil, err
	}

	g, err := s.generator.Generate(ctx, username, req)
	if err != nil {
		return nil, err
	}

	out, err := s.apply(username, s.points.CourseSuggest, fmt.Sprintf("Generated %s suggestions", strings.ToLower(req.Course)), "", nil)
	if err != nil {
		return nil, err
	}
	out.Generated = g
	return out, nil
}

// CompleteEvent marks the event done.
func (s *KitchenService) CompleteEvent(username, id string) (*models.Event, error) {
	var done models.Event
	_, err := s.store.Update(username, func(p *models.Profile) error {
		for i := range p.CompletedEvents {
			if p.CompletedEvents[i].ID == id {
				p.CompletedEvents[i].Status = models.EventCompleted
				done = p.CompletedEvents[i]
				return nil
			}
		}
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &done, nil
}

func (s *KitchenService) DeleteEvent(username, id string) error {
	_, err := s.store.Update(username, func(p *models.Profile) error {
		for i := range p.CompletedEvents {
			if p.CompletedEvents[i].ID == id {
				p.CompletedEvents = append(p.CompletedEvents[:i], p.CompletedEvents[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	})
	return err
}

// NextQuestion returns a question other than previousID, without its answer.
func (s *KitchenService) NextQuestion(previousID string) quiz.Question {
	return s.bank.Next(previousID).Public()
}

// SubmitQuizAnswer grades an answer, updates the quiz stats and streak,
// and credits the reward or the penalty.
func (s *KitchenService) SubmitQuizAnswer(username, questionID, answer string) (*QuizOutcome, error) {
	correct, expected, err := s.bank.Check(questionID, answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	delta, reason := s.points.QuizWrong, "Wrong quiz answer"
	if correct {
		delta, reason = s.points.QuizCorrect, "Correct quiz answer"
	}

	var streak int
	out, err := s.apply(username, delta, reason, models.CategoryQuiz, func(p *models.Profile) error {
		p.QuizStats.TotalAttempts++
		if correct {
			p.QuizStats.CorrectAnswers++
			p.CurrentStreak++
		} else {
			p.CurrentStreak = 0
		}
		streak = p.CurrentStreak
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &QuizOutcome{Outcome: *out, Correct: correct, Expected: expected, Streak: streak}, nil
}
