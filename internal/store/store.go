// Package store persists user profiles keyed by username.
package store

import (
	"errors"
	"fmt"

	"github.com/tahcohcat/platepals-web/config"
	"github.com/tahcohcat/platepals-web/internal/database"
	"github.com/tahcohcat/platepals-web/internal/models"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already exists")
	ErrPersistence   = errors.New("failed to persist user data")
)

// Store is the user profile repository. Every mutation is durable once the
// call returns without error; a failed mutation leaves the stored profile as
// it was. Profiles handed out are copies.
type Store interface {
	// Load reads the persisted state. A missing backing file is an empty store.
	Load() error
	Create(p *models.Profile) error
	Get(username string) (*models.Profile, error)
	// Update applies fn to a copy of the profile and saves it. If fn returns
	// an error nothing is saved.
	Update(username string, fn func(p *models.Profile) error) (*models.Profile, error)
	// List returns every profile in sign-up order.
	List() ([]*models.Profile, error)
	Close() error
}

// New builds the backend selected in cfg and loads it.
func New(cfg config.StoreConfig) (Store, error) {
	var s Store
	switch cfg.Backend {
	case "", "file":
		s = NewFileStore(cfg.Path, cfg.Backup)
	case "sqlite":
		db, err := database.NewDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		s = NewSQLiteStore(db)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}

	if err := s.Load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
