package models

// Achievement categories.
const (
	CategoryRecipe   = "recipe"
	CategoryLeftover = "leftover"
	CategoryQuiz     = "quiz"
	CategoryBeverage = "beverage"
	CategoryDessert  = "dessert"
)

// Rule names the predicate an achievement is judged by.
type Rule string

const (
	RuleCount          Rule = "count"           // category progress >= requirement
	RuleSugarFree      Rule = "sugar_free"      // sugar-free recipes of the category >= requirement
	RuleAllSeasons     Rule = "all_seasons"     // category recipes cover all four seasons
	RuleCuisines       Rule = "cuisines"        // at least five distinct cuisines
	RuleCorrectAnswers Rule = "correct_answers" // correct quiz answers >= requirement
	RuleAccuracy       Rule = "accuracy"        // attempts >= requirement at 90% accuracy
	RuleStreak         Rule = "streak"          // current streak >= requirement
)

// Achievement is one row of an achievement table.
type Achievement struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Requirement int    `json:"requirement"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	Rule        Rule   `json:"rule"`
}

// EarnedAchievement is what gets stored on the profile.
type EarnedAchievement struct {
	Name        string `json:"name"`
	EarnedOn    string `json:"earned_on"`
	Description string `json:"description"`
}

// AchievementView pairs a definition with the user's state for display.
type AchievementView struct {
	Achievement
	Earned   bool   `json:"earned"`
	EarnedOn string `json:"earned_on,omitempty"`
	Progress int    `json:"progress"`
}

// LeaderboardEntry represents a user's position on the leaderboard
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	Username     string  `json:"username"`
	Points       int     `json:"points"`
	Achievements int     `json:"achievements"`
	QuizAccuracy float64 `json:"quiz_accuracy"`
}

// FriendSummary is how a friend shows up on a user's profile page.
type FriendSummary struct {
	Username     string `json:"username"`
	Points       int    `json:"points"`
	Achievements int    `json:"achievements"`
}
