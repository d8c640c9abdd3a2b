package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tahcohcat/platepals-web/internal/database"
	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/models"
)

type profileRow struct {
	Username string `db:"username"`
	Data     string `db:"data"`
}

func (r profileRow) decode() (*models.Profile, error) {
	var p models.Profile
	if err := json.Unmarshal([]byte(r.Data), &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %q: %w", r.Username, err)
	}
	p.Username = r.Username
	p.Normalize()
	return &p, nil
}

// SQLiteStore keeps one JSON document per user in the profiles table.
// Updates run inside a transaction so concurrent writers cannot lose each
// other's changes.
type SQLiteStore struct {
	db     *database.DB
	logger *logger.Log
}

func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger.New()}
}

func (s *SQLiteStore) Load() error {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM profiles`); err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	s.logger.Info(fmt.Sprintf("SQLite store ready with %d users", count))
	return nil
}

func (s *SQLiteStore) Create(p *models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.Get(&count, `SELECT COUNT(*) FROM profiles WHERE username = ?`, p.Username); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	if _, err := tx.Exec(`INSERT INTO profiles (username, data) VALUES (?, ?)`, p.Username, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteStore) Get(username string) (*models.Profile, error) {
	var row profileRow
	err := s.db.Get(&row, `SELECT username, data FROM profiles WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return row.decode()
}

func (s *SQLiteStore) Update(username string, fn func(p *models.Profile) error) (*models.Profile, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	var row profileRow
	err = tx.Get(&row, `SELECT username, data FROM profiles WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p, err := row.decode()
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.Username = username

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	if _, err := tx.Exec(`UPDATE profiles SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`, string(data), username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return p, nil
}

func (s *SQLiteStore) List() ([]*models.Profile, error) {
	var rows []profileRow
	if err := s.db.Select(&rows, `SELECT username, data FROM profiles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	out := make([]*models.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
