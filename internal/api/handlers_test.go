package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/auth"
	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/quiz"
	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/services"
	"github.com/tahcohcat/platepals-web/internal/store"
	"github.com/tahcohcat/platepals-web/internal/tts"
)

const recipeJSON = `{"title": "Tomato Soup", "ingredients": ["4 tomatoes", "1 onion"], "instructions": ["Simmer", "Blend"], "servings": 2, "prep_time_minutes": 30}`

type fakeLLM struct {
	mu   sync.Mutex
	resp string
	err  error
}

func (f *fakeLLM) GenerateResponse(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resp, f.err
}

func (f *fakeLLM) IsModelAvailable(context.Context) error {
	return nil
}

type fakeSpeaker struct {
	text string
}

func (f *fakeSpeaker) GenerateAudio(_ context.Context, text string) ([]byte, error) {
	f.text = text
	return []byte("ID3audio"), nil
}

func (f *fakeSpeaker) Name() string {
	return "fake"
}

type testServer struct {
	router  *mux.Router
	llm     *fakeLLM
	bank    *quiz.Bank
	speaker *fakeSpeaker
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	s := store.NewFileStore(filepath.Join(t.TempDir(), "user_data.json"), false)
	require.NoError(t, s.Load())

	table, err := services.AchievementTable(services.TableExtended)
	require.NoError(t, err)
	engine, err := services.NewAchievementEngine(table)
	require.NoError(t, err)

	bank, err := quiz.NewBank("")
	require.NoError(t, err)

	fake := &fakeLLM{resp: recipeJSON}
	points := config.PointsConfig{
		Search: 5, Recipe: 5, Menu: 15, Leftover: 2, LeftoverRecipe: 5, Event: 10,
		CourseSuggest: 2, QuizCorrect: 5, QuizWrong: -10, Beverage: 5, Dessert: 5,
	}
	kitchen := services.NewKitchenService(s, recipe.NewAdapter(fake, nil, 0, time.Second), engine, bank, recipe.NewPantry(), points)

	authManager := auth.NewManager(config.AuthConfig{
		SessionSecret: "session-secret",
		JWTSecret:     "jwt-secret",
		TokenLifetime: time.Hour,
	})

	h := NewKitchenHandler(services.NewUserService(s, false), services.NewPointsLedger(s),
		services.NewLeaderboardService(s), engine, kitchen, authManager)
	speaker := &fakeSpeaker{}

	r := mux.NewRouter()
	RegisterRoutes(r, h, NewSpeechHandler(kitchen, speaker), nil)

	return &testServer{router: r, llm: fake, bank: bank, speaker: speaker}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	rec := ts.do(t, "POST", "/api/v1/auth/signup", "", credentials{Username: username, Password: "pw"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupAndLogin(t *testing.T) {
	ts := setupServer(t)
	ts.signup(t, "alice")

	rec := ts.do(t, "POST", "/api/v1/auth/signup", "", credentials{Username: "alice", Password: "other"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, "POST", "/api/v1/auth/login", "", credentials{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, "POST", "/api/v1/auth/login", "", credentials{Username: "nobody", Password: "pw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, "POST", "/api/v1/auth/login", "", credentials{Username: "alice", Password: "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies(), "login should set a session cookie")

	var resp loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.Username)

	rec = ts.do(t, "GET", "/api/v1/profile", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile profileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 0, profile.Points)
	assert.Equal(t, 1, profile.Rank)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignup_MissingFields(t *testing.T) {
	ts := setupServer(t)

	rec := ts.do(t, "POST", "/api/v1/auth/signup", "", credentials{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedRoutesNeedLogin(t *testing.T) {
	ts := setupServer(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/leaderboard", "/api/v1/recipes", "/api/v1/quiz/question"} {
		rec := ts.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := ts.do(t, "GET", "/api/v1/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateRecipeAndSpeak(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")

	rec := ts.do(t, "POST", "/api/v1/recipes/generate", token, recipe.Request{Ingredients: []string{"tomato", "onion"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome services.Outcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.Equal(t, 5, outcome.Points)
	require.NotNil(t, outcome.Generated)
	assert.Equal(t, "Tomato Soup", outcome.Generated.Title)

	rec = ts.do(t, "GET", "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recipes []models.Recipe
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&recipes))
	require.Len(t, recipes, 1)
	assert.Equal(t, "Recipe with tomato, onion", recipes[0].Name)

	rec = ts.do(t, "GET", "/api/v1/recipes/0/speak", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ID3audio", rec.Body.String())
	assert.Contains(t, ts.speaker.text, "Recipe with tomato, onion")

	rec = ts.do(t, "GET", "/api/v1/recipes/3/speak", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecipes_TypeFilter(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")

	rec := ts.do(t, "POST", "/api/v1/recipes/generate", token, recipe.Request{Ingredients: []string{"tomato"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, "POST", "/api/v1/beverages/generate", token, recipe.Request{Ingredients: []string{"mango"}, Style: "Smoothie"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := func(path string) []models.Recipe {
		rec := ts.do(t, "GET", path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var recipes []models.Recipe
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&recipes))
		return recipes
	}

	assert.Len(t, list("/api/v1/recipes"), 2)

	beverages := list("/api/v1/recipes?type=beverage")
	require.Len(t, beverages, 1)
	assert.Equal(t, "Smoothie Recipe", beverages[0].Name)
	assert.Equal(t, models.RecipeTypeBeverage, beverages[0].Type)

	desserts := list("/api/v1/recipes?type=dessert")
	assert.NotNil(t, desserts)
	assert.Empty(t, desserts)
}

func TestGenerateRecipe_ExternalFailure(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")
	ts.llm.err = errors.New("connection refused")

	rec := ts.do(t, "POST", "/api/v1/recipes/generate", token, recipe.Request{Ingredients: []string{"tomato"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = ts.do(t, "GET", "/api/v1/profile", token, nil)
	var profile profileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))
	assert.Equal(t, 0, profile.Points)
	assert.Equal(t, 0, profile.RecipesCreated)
}

func TestGenerateRecipe_InvalidRequest(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")

	rec := ts.do(t, "POST", "/api/v1/recipes/generate", token, recipe.Request{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuizFlow(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")

	rec := ts.do(t, "GET", "/api/v1/quiz/question", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"correct"`)

	var q quiz.Question
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
	full, err := ts.bank.Get(q.ID)
	require.NoError(t, err)

	answer := map[string]string{"question_id": q.ID, "answer": full.Correct}
	rec = ts.do(t, "POST", "/api/v1/quiz/answer", token, answer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome services.QuizOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.True(t, outcome.Correct)
	assert.Equal(t, 1, outcome.Streak)
	assert.GreaterOrEqual(t, outcome.Points, 5)

	next := ts.do(t, "GET", "/api/v1/quiz/question?previous="+q.ID, token, nil)
	require.Equal(t, http.StatusOK, next.Code)
	var q2 quiz.Question
	require.NoError(t, json.NewDecoder(next.Body).Decode(&q2))
	assert.NotEqual(t, q.ID, q2.ID)

	rec = ts.do(t, "POST", "/api/v1/quiz/answer", token, map[string]string{"question_id": "missing", "answer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardAndFriends(t *testing.T) {
	ts := setupServer(t)
	alice := ts.signup(t, "alice")
	bob := ts.signup(t, "bob")

	rec := ts.do(t, "POST", "/api/v1/recipes/generate", bob, recipe.Request{Ingredients: []string{"tomato"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, "GET", "/api/v1/leaderboard", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Entries  []models.LeaderboardEntry `json:"entries"`
		YourRank int                       `json:"your_rank"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "bob", board.Entries[0].Username)
	assert.Equal(t, 2, board.YourRank)

	rec = ts.do(t, "POST", "/api/v1/friends", alice, map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"added": true}`, rec.Body.String())

	rec = ts.do(t, "POST", "/api/v1/friends", alice, map[string]string{"username": "carol"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, "GET", "/api/v1/friends", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []models.FriendSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&friends))
	require.Len(t, friends, 1)
}

func TestLeftoversAndEvents(t *testing.T) {
	ts := setupServer(t)
	token := ts.signup(t, "alice")

	rec := ts.do(t, "POST", "/api/v1/leftovers", token, models.LeftoverIngredient{Name: "Rice", Type: "Grain", Quantity: 200})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, "GET", "/api/v1/leftovers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.LeftoverIngredient
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)

	rec = ts.do(t, "POST", "/api/v1/leftovers/use", token, map[string][]string{"names": {"Rice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed": 1}`, rec.Body.String())

	rec = ts.do(t, "POST", "/api/v1/events", token, models.Event{Name: "Dinner", Date: "2024-05-01", Guests: 4, CostPerPerson: 12.5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Event models.Event `json:"event"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 50.0, created.Event.TotalCost)
	require.NotEmpty(t, created.Event.ID)

	rec = ts.do(t, "POST", fmt.Sprintf("/api/v1/events/%s/complete", created.Event.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, "DELETE", "/api/v1/events/"+created.Event.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, "DELETE", "/api/v1/events/"+created.Event.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		services.ErrAlreadyExists:      http.StatusConflict,
		services.ErrInvalidCredentials: http.StatusUnauthorized,
		auth.ErrUnauthorized:           http.StatusUnauthorized,
		services.ErrNotFound:           http.StatusNotFound,
		services.ErrInvalidInput:       http.StatusBadRequest,
		services.ErrRateLimited:        http.StatusTooManyRequests,
		services.ErrExternalService:    http.StatusBadGateway,
		services.ErrPersistence:        http.StatusInternalServerError,
		tts.ErrDisabled:                http.StatusServiceUnavailable,
		errors.New("boom"):             http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}
