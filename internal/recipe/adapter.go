// Package recipe turns user requests into prompts for a generation backend
// and the backend's answers into recipe records.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tahcohcat/platepals-web/internal/llm"
	"github.com/tahcohcat/platepals-web/internal/logger"
)

var (
	ErrExternalService = errors.New("recipe service unavailable")
	ErrRateLimited     = errors.New("recipe service rate limited")
	ErrInvalidRequest  = errors.New("invalid input")
)

// Kinds of generation request.
const (
	KindRecipe   = "recipe"
	KindMenu     = "menu"
	KindBeverage = "beverage"
	KindDessert  = "dessert"
	KindLeftover = "leftover"
	KindCourse   = "course"
	KindSearch   = "search"
)

// Mentions are the free-text extras a user can attach to any request.
type Mentions struct {
	Wants           string `json:"wants"`
	DontWants       string `json:"dont_wants"`
	AdditionalNotes string `json:"additional_notes"`
}

// Request carries everything a prompt may need. Only the fields relevant to
// Kind are used.
type Request struct {
	Kind                string   `json:"kind"`
	Ingredients         []string `json:"ingredients"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Mentions            Mentions `json:"mentions"`

	Query       string   `json:"query,omitempty"`
	Style       string   `json:"style,omitempty"` // beverage type, dessert type, menu occasion
	Cuisine     string   `json:"cuisine,omitempty"`
	Season      string   `json:"season,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	Servings    int      `json:"servings,omitempty"`

	MealType     string `json:"meal_type,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	CookingTime  int    `json:"cooking_time,omitempty"`
	CalorieLimit int    `json:"calorie_limit,omitempty"`
	TimeOfDay    string `json:"time_of_day,omitempty"`
	Mood         string `json:"mood,omitempty"`
	HungerLevel  string `json:"hunger_level,omitempty"`

	Course string `json:"course,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Guests int    `json:"guests,omitempty"`
}

// Generated is the structured result of a generation call.
type Generated struct {
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Servings     int      `json:"servings"`
	PrepTimeMin  int      `json:"prep_time_minutes"`
}

// Searcher looks up existing recipes by dish name.
type Searcher interface {
	SearchRecipe(ctx context.Context, query string) (*Generated, error)
}

// Adapter is the single entry point to recipe generation. It applies a
// per-user cooldown between leftover recipes and bounds each call with a timeout.
type Adapter struct {
	llm      llm.LLM
	searcher Searcher
	cooldown time.Duration
	timeout  time.Duration
	logger   *logger.Log

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewAdapter wires an LLM and an optional recipe searcher. A zero cooldown
// disables throttling, a zero timeout defaults to one minute.
func NewAdapter(client llm.LLM, searcher Searcher, cooldown, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Adapter{
		llm:      client,
		searcher: searcher,
		cooldown: cooldown,
		timeout:  timeout,
		logger:   logger.New(),
		limiters: make(map[string]*rate.Limiter),
	}
}

// allow reports whether username may start another leftover recipe now.
func (a *Adapter) allow(username string) bool {
	if a.cooldown <= 0 {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	lim, ok := a.limiters[username]
	if !ok {
		lim = rate.NewLimiter(rate.Every(a.cooldown), 1)
		a.limiters[username] = lim
	}
	return lim.Allow()
}

// Generate builds the prompt for req, sends it to the LLM and parses the
// answer. Failures are reported as ErrExternalService or ErrRateLimited.
func (a *Adapter) Generate(ctx context.Context, username string, req Request) (*Generated, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", ErrExternalService)
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if req.Kind == KindLeftover && !a.allow(username) {
		return nil, fmt.Errorf("%w: please wait %s between leftover recipes", ErrRateLimited, a.cooldown)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.logger.Debug(fmt.Sprintf("Generating %s for %s", req.Kind, username))

	resp, err := a.llm.GenerateResponse(timeoutCtx, prompt)
	if err != nil {
		a.logger.WithError(err).Warn(fmt.Sprintf("could not generate %s", req.Kind))
		if llm.IsRateLimited(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if strings.TrimSpace(resp) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrExternalService)
	}

	return ParseGenerated(resp, defaultTitle(req)), nil
}

// Search finds a recipe by name, through the recipe API when configured
// and the LLM otherwise.
func (a *Adapter) Search(ctx context.Context, username, query string) (*Generated, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidRequest)
	}

	if a.searcher == nil {
		return a.Generate(ctx, username, Request{Kind: KindSearch, Query: query})
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	g, err := a.searcher.SearchRecipe(timeoutCtx, query)
	if err != nil {
		a.logger.WithError(err).Warn(fmt.Sprintf("recipe search for %q failed", query))
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrExternalService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return g, nil
}

func defaultTitle(req Request) string {
	switch req.Kind {
	case KindSearch:
		return req.Query
	case KindMenu:
		return strings.TrimSpace(fmt.Sprintf("%s %s Menu", req.Cuisine, req.Style))
	case KindBeverage, KindDessert:
		if req.Style != "" {
			return req.Style
		}
		return strings.ToUpper(req.Kind[:1]) + req.Kind[1:]
	case KindCourse:
		return fmt.Sprintf("%s suggestion", req.Course)
	}
	if len(req.Ingredients) > 0 {
		return fmt.Sprintf("Recipe with %s", strings.Join(req.Ingredients, ", "))
	}
	return "Recipe"
}
