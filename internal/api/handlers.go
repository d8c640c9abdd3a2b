// internal/api/handlers.go
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/platepals-web/internal/auth"
	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/services"
)

type KitchenHandler struct {
	users       *services.UserService
	ledger      *services.PointsLedger
	leaderboard *services.LeaderboardService
	engine      *services.AchievementEngine
	kitchen     *services.KitchenService
	auth        *auth.Manager
}

func NewKitchenHandler(users *services.UserService, ledger *services.PointsLedger, leaderboard *services.LeaderboardService,
	engine *services.AchievementEngine, kitchen *services.KitchenService, authManager *auth.Manager) *KitchenHandler {
	return &KitchenHandler{
		users:       users,
		ledger:      ledger,
		leaderboard: leaderboard,
		engine:      engine,
		kitchen:     kitchen,
		auth:        authManager,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type profileResponse struct {
	Username       string                     `json:"username"`
	Points         int                        `json:"points"`
	Rank           int                        `json:"rank"`
	QuizStats      models.QuizStats           `json:"quiz_stats"`
	QuizAccuracy   float64                    `json:"quiz_accuracy"`
	CurrentStreak  int                        `json:"current_streak"`
	RecipesCreated int                        `json:"recipes_created"`
	LeftoverItems  int                        `json:"leftover_items"`
	Events         int                        `json:"events"`
	Achievements   []models.EarnedAchievement `json:"achievements"`
	Friends        []string                   `json:"friends"`
}

// POST /api/v1/auth/signup - Create an account and log it in
func (h *KitchenHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.users.CreateUser(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Login(w, r, p.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loginResponse{Username: p.Username, Token: token})
}

// POST /api/v1/auth/login - Check credentials and start a session
func (h *KitchenHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.users.Verify(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Login(w, r, p.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Username: p.Username, Token: token})
}

// POST /api/v1/auth/logout
func (h *KitchenHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(w, r); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/profile - Profile summary of the logged in user
func (h *KitchenHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r)
	p, err := h.users.GetProfile(username)
	if err != nil {
		writeError(w, err)
		return
	}

	board, err := h.leaderboard.Leaderboard()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Username:       p.Username,
		Points:         p.Points,
		Rank:           services.RankOf(board, username),
		QuizStats:      p.QuizStats,
		QuizAccuracy:   p.QuizStats.Accuracy(),
		CurrentStreak:  p.CurrentStreak,
		RecipesCreated: len(p.CreatedRecipes),
		LeftoverItems:  len(p.LeftoverIngredients),
		Events:         len(p.CompletedEvents),
		Achievements:   p.Achievements,
		Friends:        p.Friends,
	})
}

// GET /api/v1/profile/activity?limit=N - Newest ledger entries first
func (h *KitchenHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.Activity(currentUser(r), intQuery(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GET /api/v1/leaderboard?top=N
func (h *KitchenHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboard.Leaderboard()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":   services.Top(board, intQuery(r, "top", 10)),
		"your_rank": services.RankOf(board, currentUser(r)),
	})
}

// GET /api/v1/achievements - Every definition with the user's progress
func (h *KitchenHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.GetProfile(currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Views(p))
}

// POST /api/v1/friends
func (h *KitchenHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	added, err := h.users.AddFriend(currentUser(r), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// GET /api/v1/friends
func (h *KitchenHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.users.Friends(currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// POST /api/v1/recipes/search
func (h *KitchenHandler) SearchRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	search, outcome, err := h.kitchen.SearchRecipe(r.Context(), currentUser(r), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"search":  search,
		"outcome": outcome,
	})
}

// GET /api/v1/recipes/searches?limit=N
func (h *KitchenHandler) GetSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := h.kitchen.RecentSearches(currentUser(r), intQuery(r, "limit", 5))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searches)
}

type generateFunc func(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error)

// generate decodes a recipe.Request and hands it to fn. The four generator
// endpoints only differ in the service call.
func (h *KitchenHandler) generate(fn generateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recipe.Request
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}

		outcome, err := fn(h, r, currentUser(r), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// GET /api/v1/recipes?type=beverage - Every created recipe, or one type only
func (h *KitchenHandler) GetRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.kitchen.RecipesOfType(currentUser(r), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// GET /api/v1/ingredients?search=term
func (h *KitchenHandler) SearchIngredients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.kitchen.SearchIngredients(r.URL.Query().Get("search")))
}

// POST /api/v1/leftovers
func (h *KitchenHandler) AddLeftover(w http.ResponseWriter, r *http.Request) {
	var item models.LeftoverIngredient
	if err := decode(r, &item); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.kitchen.AddLeftover(currentUser(r), item)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// GET /api/v1/leftovers
func (h *KitchenHandler) GetLeftovers(w http.ResponseWriter, r *http.Request) {
	items, err := h.kitchen.Leftovers(currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// POST /api/v1/leftovers/recipe
func (h *KitchenHandler) LeftoverRecipe(w http.ResponseWriter, r *http.Request) {
	var req services.LeftoverRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.kitchen.GenerateLeftoverRecipe(r.Context(), currentUser(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// POST /api/v1/leftovers/use
func (h *KitchenHandler) UseLeftovers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	removed, err := h.kitchen.UseLeftovers(currentUser(r), req.Names)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// POST /api/v1/events
func (h *KitchenHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := decode(r, &event); err != nil {
		writeError(w, err)
		return
	}

	created, outcome, err := h.kitchen.CreateEvent(currentUser(r), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"event":   created,
		"outcome": outcome,
	})
}

// GET /api/v1/events
func (h *KitchenHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.kitchen.Events(currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// POST /api/v1/events/{id}/complete
func (h *KitchenHandler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.kitchen.CompleteEvent(currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DELETE /api/v1/events/{id}
func (h *KitchenHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.kitchen.DeleteEvent(currentUser(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/quiz/question?previous=id
func (h *KitchenHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.kitchen.NextQuestion(r.URL.Query().Get("previous")))
}

// POST /api/v1/quiz/answer
func (h *KitchenHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.kitchen.SubmitQuizAnswer(currentUser(r), req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func intQuery(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func generateRecipe(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error) {
	return h.kitchen.GenerateRecipe(r.Context(), username, req)
}

func generateMenu(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error) {
	return h.kitchen.GenerateMenu(r.Context(), username, req)
}

func generateBeverage(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error) {
	return h.kitchen.GenerateBeverage(r.Context(), username, req)
}

func generateDessert(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error) {
	return h.kitchen.GenerateDessert(r.Context(), username, req)
}

func suggestCourse(h *KitchenHandler, r *http.Request, username string, req recipe.Request) (*services.Outcome, error) {
	return h.kitchen.SuggestEventCourse(r.Context(), username, req)
}

// RegisterRoutes mounts the API on r. Everything except signup and login
// sits behind the auth middleware; ws may be nil.
func RegisterRoutes(r *mux.Router, h *KitchenHandler, speech *SpeechHandler, ws http.Handler) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")

	private := api.PathPrefix("/").Subrouter()
	private.Use(h.auth.Middleware)

	private.HandleFunc("/profile", h.GetProfile).Methods("GET")
	private.HandleFunc("/profile/activity", h.GetActivity).Methods("GET")
	private.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")
	private.HandleFunc("/achievements", h.GetAchievements).Methods("GET")
	private.HandleFunc("/friends", h.AddFriend).Methods("POST")
	private.HandleFunc("/friends", h.GetFriends).Methods("GET")

	private.HandleFunc("/recipes/search", h.SearchRecipe).Methods("POST")
	private.HandleFunc("/recipes/searches", h.GetSearches).Methods("GET")
	private.HandleFunc("/recipes/generate", h.generate(generateRecipe)).Methods("POST")
	private.HandleFunc("/menus/generate", h.generate(generateMenu)).Methods("POST")
	private.HandleFunc("/beverages/generate", h.generate(generateBeverage)).Methods("POST")
	private.HandleFunc("/desserts/generate", h.generate(generateDessert)).Methods("POST")
	private.HandleFunc("/recipes", h.GetRecipes).Methods("GET")
	if speech != nil {
		private.HandleFunc("/recipes/{index:[0-9]+}/speak", speech.Speak).Methods("GET")
	}
	private.HandleFunc("/ingredients", h.SearchIngredients).Methods("GET")

	private.HandleFunc("/leftovers", h.AddLeftover).Methods("POST")
	private.HandleFunc("/leftovers", h.GetLeftovers).Methods("GET")
	private.HandleFunc("/leftovers/recipe", h.LeftoverRecipe).Methods("POST")
	private.HandleFunc("/leftovers/use", h.UseLeftovers).Methods("POST")

	private.HandleFunc("/events", h.CreateEvent).Methods("POST")
	private.HandleFunc("/events", h.GetEvents).Methods("GET")
	private.HandleFunc("/events/suggest", h.generate(suggestCourse)).Methods("POST")
	private.HandleFunc("/events/{id}/complete", h.CompleteEvent).Methods("POST")
	private.HandleFunc("/events/{id}", h.DeleteEvent).Methods("DELETE")

	private.HandleFunc("/quiz/question", h.NextQuestion).Methods("GET")
	private.HandleFunc("/quiz/answer", h.SubmitAnswer).Methods("POST")

	if ws != nil {
		private.Handle("/ws", ws)
	}
}
