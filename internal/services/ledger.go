package services

import (
	"time"

	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/store"
)

// AddPoints records delta on the profile and appends the matching activity
// entry. Any delta is accepted and the balance may go negative.
func AddPoints(p *models.Profile, delta int, reason string, now time.Time) {
	p.ActivityLog = append(p.ActivityLog, models.ActivityEntry{
		Date:   models.FormatDate(now),
		Action: reason,
		Points: delta,
	})
	p.Points += delta
}

// PointsLedger applies point changes to stored profiles.
type PointsLedger struct {
	store store.Store
	now   func() time.Time
}

func NewPointsLedger(s store.Store) *PointsLedger {
	return &PointsLedger{store: s, now: time.Now}
}

// Add credits (or debits) username and persists the result.
func (l *PointsLedger) Add(username string, delta int, reason string) (*models.Profile, error) {
	return l.store.Update(username, func(p *models.Profile) error {
		AddPoints(p, delta, reason, l.now())
		return nil
	})
}

// Activity returns the most recent entries first, at most limit of them.
func (l *PointsLedger) Activity(username string, limit int) ([]models.ActivityEntry, error) {
	p, err := l.store.Get(username)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	out := make([]models.ActivityEntry, 0, limit)
	for i := len(p.ActivityLog) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, p.ActivityLog[i])
	}
	return out, nil
}
