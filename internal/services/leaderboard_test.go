package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/platepals-web/internal/models"
)

func profileWith(name string, points, achievements int) *models.Profile {
	p := models.NewProfile(name, "pw")
	p.Points = points
	for i := 0; i < achievements; i++ {
		p.Achievements = append(p.Achievements, models.EarnedAchievement{Name: string(rune('A' + i))})
	}
	return p
}

// Equal points are broken by achievement count.
func TestBuildLeaderboard_TieBrokenByAchievements(t *testing.T) {
	board := BuildLeaderboard([]*models.Profile{
		profileWith("alice", 100, 2),
		profileWith("bob", 100, 3),
	})

	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "alice", board[1].Username)
	assert.Equal(t, 2, board[1].Rank)
}

func TestBuildLeaderboard_StableForFullTies(t *testing.T) {
	board := BuildLeaderboard([]*models.Profile{
		profileWith("zed", 50, 1),
		profileWith("amy", 50, 1),
		profileWith("top", 80, 0),
		profileWith("low", -5, 4),
	})

	var names []string
	for _, e := range board {
		names = append(names, e.Username)
	}
	assert.Equal(t, []string{"top", "zed", "amy", "low"}, names)
}

func TestBuildLeaderboard_QuizAccuracy(t *testing.T) {
	p := profileWith("alice", 10, 0)
	p.QuizStats = models.QuizStats{TotalAttempts: 8, CorrectAnswers: 6}

	board := BuildLeaderboard([]*models.Profile{p, profileWith("bob", 0, 0)})
	assert.InDelta(t, 75.0, board[0].QuizAccuracy, 0.001)
	assert.Equal(t, 0.0, board[1].QuizAccuracy, "no attempts means zero accuracy")
}

func TestBuildLeaderboard_Empty(t *testing.T) {
	assert.Empty(t, BuildLeaderboard(nil))
}

func TestRankOfAndTop(t *testing.T) {
	board := BuildLeaderboard([]*models.Profile{
		profileWith("a", 1, 0),
		profileWith("b", 2, 0),
		profileWith("c", 3, 0),
	})

	assert.Equal(t, 1, RankOf(board, "c"))
	assert.Equal(t, 3, RankOf(board, "a"))
	assert.Equal(t, 0, RankOf(board, "nobody"))

	assert.Len(t, Top(board, 2), 2)
	assert.Len(t, Top(board, 5), 3)
	assert.Len(t, Top(board, -1), 3)
}

func TestLeaderboardService_UsesStoreOrder(t *testing.T) {
	s := setupStore(t)
	users := NewUserService(s, false)
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := users.CreateUser(name, "pw")
		require.NoError(t, err)
	}
	ledger := NewPointsLedger(s)
	_, err := ledger.Add("carol", 30, "test")
	require.NoError(t, err)

	board, err := NewLeaderboardService(s).Leaderboard()
	require.NoError(t, err)

	var names []string
	for _, e := range board {
		names = append(names, e.Username)
	}
	assert.Equal(t, []string{"carol", "alice", "bob"}, names)
}
