package services

import (
	"sort"

	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/store"
)

// BuildLeaderboard ranks profiles by points, then by number of achievements.
// Equal entries keep their input order. It does not modify its input.
func BuildLeaderboard(profiles []*models.Profile) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, models.LeaderboardEntry{
			Username:     p.Username,
			Points:       p.Points,
			Achievements: len(p.Achievements),
			QuizAccuracy: p.QuizStats.Accuracy(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Achievements > entries[j].Achievements
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankOf returns the 1-based rank of username, or 0 when absent.
func RankOf(board []models.LeaderboardEntry, username string) int {
	for _, e := range board {
		if e.Username == username {
			return e.Rank
		}
	}
	return 0
}

// Top returns at most n leading entries.
func Top(board []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	if n < 0 || n >= len(board) {
		return board
	}
	return board[:n]
}

type LeaderboardService struct {
	store store.Store
}

func NewLeaderboardService(s store.Store) *LeaderboardService {
	return &LeaderboardService{store: s}
}

// Leaderboard is recomputed from the store on every call.
func (s *LeaderboardService) Leaderboard() ([]models.LeaderboardEntry, error) {
	profiles, err := s.store.List()
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(profiles), nil
}
