package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the minute-resolution timestamp used throughout the profile file.
const DateLayout = "2006-01-02 15:04"

// DayLayout is used for recipe and event dates that carry no time.
const DayLayout = "2006-01-02"

// Profile is everything persisted for one user. The JSON keys are the
// on-disk format of the user data file and must not change.
type Profile struct {
	Username string `json:"-"` // the key in the data file

	Password      string    `json:"password"`
	Points        int       `json:"points"`
	QuizStats     QuizStats `json:"quiz_stats"`
	CurrentStreak int       `json:"current_streak"`

	ActivityLog         []ActivityEntry      `json:"activity_log"`
	CreatedRecipes      []Recipe             `json:"created_recipes"`
	CompletedEvents     []Event              `json:"completed_events"`
	SavedMenus          []json.RawMessage    `json:"saved_menus"`
	Inventory           map[string]any       `json:"inventory"`
	Leftovers           []LeftoverRecipe     `json:"leftovers"`
	LeftoverIngredients []LeftoverIngredient `json:"leftover_ingredients"`
	GeneratedRecipes    []json.RawMessage    `json:"generated_recipes"`
	RecipeSearches      []RecipeSearch       `json:"recipe_searches"`
	Friends             []string             `json:"friends"`
	Achievements        []EarnedAchievement  `json:"achievements"`
}

type QuizStats struct {
	TotalAttempts  int `json:"total_attempts"`
	CorrectAnswers int `json:"correct_answers"`
}

// Accuracy returns the share of correct answers as a percentage, 0 with no attempts.
func (q QuizStats) Accuracy() float64 {
	if q.TotalAttempts == 0 {
		return 0
	}
	return float64(q.CorrectAnswers) / float64(q.TotalAttempts) * 100
}

// ActivityEntry is one line of the points ledger.
type ActivityEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
	Points int    `json:"points"`
}

type RecipeSearch struct {
	Recipe          string  `json:"recipe"`
	Date            string  `json:"date"`
	Details         string  `json:"details"`
	YoutubeLink     string  `json:"youtube_link"`
	SearchTimestamp float64 `json:"search_timestamp"` // unix seconds
}

// NewProfile returns a freshly signed-up profile.
func NewProfile(username, password string) *Profile {
	p := &Profile{Username: username, Password: password}
	p.Normalize()
	return p
}

// Normalize replaces missing collections with empty ones so that records
// written by older versions of the app round-trip as [] instead of null.
func (p *Profile) Normalize() {
	if p.ActivityLog == nil {
		p.ActivityLog = []ActivityEntry{}
	}
	if p.CreatedRecipes == nil {
		p.CreatedRecipes = []Recipe{}
	}
	if p.CompletedEvents == nil {
		p.CompletedEvents = []Event{}
	}
	if p.SavedMenus == nil {
		p.SavedMenus = []json.RawMessage{}
	}
	if p.Inventory == nil {
		p.Inventory = map[string]any{}
	}
	if p.Leftovers == nil {
		p.Leftovers = []LeftoverRecipe{}
	}
	if p.LeftoverIngredients == nil {
		p.LeftoverIngredients = []LeftoverIngredient{}
	}
	if p.GeneratedRecipes == nil {
		p.GeneratedRecipes = []json.RawMessage{}
	}
	if p.RecipeSearches == nil {
		p.RecipeSearches = []RecipeSearch{}
	}
	if p.Friends == nil {
		p.Friends = []string{}
	}
	if p.Achievements == nil {
		p.Achievements = []EarnedAchievement{}
	}
}

// Clone returns a deep copy by way of the JSON encoding.
func (p *Profile) Clone() (*Profile, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var c Profile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.Username = p.Username
	c.Normalize()
	return &c, nil
}

// HasAchievement reports whether name has already been earned.
func (p *Profile) HasAchievement(name string) bool {
	for _, a := range p.Achievements {
		if a.Name == name {
			return true
		}
	}
	return false
}

// HasFriend reports whether friend is already in the friend list.
func (p *Profile) HasFriend(friend string) bool {
	for _, f := range p.Friends {
		if f == friend {
			return true
		}
	}
	return false
}

// RecipesOfType returns the created recipes whose type matches t.
// An empty t selects every recipe.
func (p *Profile) RecipesOfType(t string) []Recipe {
	if t == "" {
		return p.CreatedRecipes
	}
	out := []Recipe{}
	for _, r := range p.CreatedRecipes {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// FormatDate renders t in the profile's timestamp layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
