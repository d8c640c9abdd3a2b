package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/models"
)

func setupSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := New(config.StoreConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "platepals.db"),
	})
	require.NoError(t, err, "Failed to open sqlite store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_CreateGetUpdate(t *testing.T) {
	s := setupSQLiteStore(t)

	p := models.NewProfile("alice", "pw")
	p.Friends = append(p.Friends, "bob")
	require.NoError(t, s.Create(p))

	got, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []string{"bob"}, got.Friends)

	updated, err := s.Update("alice", func(p *models.Profile) error {
		p.Points = 42
		p.Achievements = append(p.Achievements, models.EarnedAchievement{Name: "Recipe Novice"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.Points)

	got, err = s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Points)
	assert.True(t, got.HasAchievement("Recipe Novice"))
}

func TestSQLiteStore_Errors(t *testing.T) {
	s := setupSQLiteStore(t)
	require.NoError(t, s.Create(models.NewProfile("alice", "pw")))

	assert.ErrorIs(t, s.Create(models.NewProfile("alice", "pw")), ErrAlreadyExists)

	_, err := s.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update("ghost", func(p *models.Profile) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListInSignUpOrder(t *testing.T) {
	s := setupSQLiteStore(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.Create(models.NewProfile(name, "pw")))
	}

	users, err := s.List()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, "bob", users[2].Username)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(config.StoreConfig{Backend: "redis"})
	assert.Error(t, err)
}
