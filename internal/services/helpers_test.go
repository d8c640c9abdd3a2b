package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/quiz"
	"github.com/tahcohcat/platepals-web/internal/recipe"
	"github.com/tahcohcat/platepals-web/internal/store"
)

var fixedNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

const recipeJSON = `{"title": "Green Smoothie", "ingredients": ["1 cup spinach", "1 banana"], "instructions": ["Blend everything"], "servings": 1, "prep_time_minutes": 5}`

// fakeLLM answers every prompt with resp, or fails with err.
type fakeLLM struct {
	mu      sync.Mutex
	resp    string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateResponse(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func (f *fakeLLM) IsModelAvailable(context.Context) error {
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func defaultPoints() config.PointsConfig {
	return config.PointsConfig{
		Search:         5,
		Recipe:         5,
		Menu:           15,
		Leftover:       2,
		LeftoverRecipe: 5,
		Event:          10,
		CourseSuggest:  2,
		QuizCorrect:    5,
		QuizWrong:      -10,
		Beverage:       5,
		Dessert:        5,
	}
}

// setupStore returns an empty file store in a temp dir.
func setupStore(t *testing.T) *store.FileStore {
	t.Helper()
	s := store.NewFileStore(filepath.Join(t.TempDir(), "user_data.json"), false)
	require.NoError(t, s.Load())
	return s
}

func setupEngine(t *testing.T, table []models.Achievement) *AchievementEngine {
	t.Helper()
	if table == nil {
		var err error
		table, err = AchievementTable(TableExtended)
		require.NoError(t, err)
	}
	e, err := NewAchievementEngine(table)
	require.NoError(t, err)
	e.now = func() time.Time { return fixedNow }
	return e
}

type kitchenFixture struct {
	kitchen  *KitchenService
	users    *UserService
	store    *store.FileStore
	llm      *fakeLLM
	notifier *recordingNotifier
}

// setupKitchen wires a kitchen around a fake LLM with no cooldown and a
// user "alice".
func setupKitchen(t *testing.T, table []models.Achievement) *kitchenFixture {
	t.Helper()
	s := setupStore(t)
	fake := &fakeLLM{resp: recipeJSON}
	bank, err := quiz.NewBank("")
	require.NoError(t, err)

	k := NewKitchenService(s, recipe.NewAdapter(fake, nil, 0, time.Second), setupEngine(t, table), bank, recipe.NewPantry(), defaultPoints())
	k.now = func() time.Time { return fixedNow }
	n := &recordingNotifier{}
	k.SetNotifier(n)

	users := NewUserService(s, false)
	_, err = users.CreateUser("alice", "pw1")
	require.NoError(t, err)

	return &kitchenFixture{kitchen: k, users: users, store: s, llm: fake, notifier: n}
}

func (f *kitchenFixture) profile(t *testing.T) *models.Profile {
	t.Helper()
	p, err := f.store.Get("alice")
	require.NoError(t, err)
	return p
}

// answer submits the right (or a wrong) answer to some question.
func (f *kitchenFixture) answer(t *testing.T, correct bool) *QuizOutcome {
	t.Helper()
	q := f.kitchen.NextQuestion("")
	full, err := f.kitchen.bank.Get(q.ID)
	require.NoError(t, err)

	given := full.Correct
	if !correct {
		given = "definitely not " + full.Correct
	}
	out, err := f.kitchen.SubmitQuizAnswer("alice", q.ID, given)
	require.NoError(t, err)
	return out
}
