package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "user_data.json", cfg.Store.Path)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.Generation.Cooldown)
	assert.Equal(t, "extended", cfg.Gamification.Table)
	assert.Equal(t, 5, cfg.Gamification.Points.QuizCorrect)
	assert.Equal(t, -10, cfg.Gamification.Points.QuizWrong)
	assert.Equal(t, 15, cfg.Gamification.Points.Menu)
	assert.False(t, cfg.Tts.Enabled)
	assert.False(t, cfg.Auth.HashPasswords)
}

func TestLoad_FileAndLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := `
server:
  port: "9000"
store:
  backend: sqlite
  path: ./platepals.db
auth:
  token_lifetime: 2h
gamification:
  table: custom
  achievements:
    - name: First Bite
      category: recipe
      requirement: 1
      points: 15
      description: Create your first recipe
      rule: count
`
	local := `
server:
  port: "9001"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.yaml"), []byte(local), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenLifetime)
	require.Len(t, cfg.Gamification.Achievements, 1)
	assert.Equal(t, "First Bite", cfg.Gamification.Achievements[0].Name)
	assert.Equal(t, 15, cfg.Gamification.Achievements[0].Points)
	assert.Equal(t, "count", cfg.Gamification.Achievements[0].Rule)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PLATEPALS_SERVER_PORT", "7070")
	t.Setenv("PLATEPALS_LLM_PROVIDER", "openai")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
