// internal/services/user.go
package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/models"
	"github.com/tahcohcat/platepals-web/internal/store"
)

type UserService struct {
	store         store.Store
	hashPasswords bool
	logger        *logger.Log
}

// NewUserService creates the account service. With hashPasswords off,
// passwords are kept in clear text as the existing data files expect.
func NewUserService(s store.Store, hashPasswords bool) *UserService {
	return &UserService{store: s, hashPasswords: hashPasswords, logger: logger.New()}
}

// CreateUser signs up a new user with empty collections and zero counters.
func (s *UserService) CreateUser(username, password string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	stored := password
	if s.hashPasswords {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		stored = string(hashed)
	}

	p := models.NewProfile(username, stored)
	if err := s.store.Create(p); err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("New user signed up: %s", username))
	return p, nil
}

// Verify checks a login attempt. Unknown users get ErrNotFound, a wrong
// password ErrInvalidCredentials.
func (s *UserService) Verify(username, password string) (*models.Profile, error) {
	p, err := s.store.Get(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	if !s.checkPassword(p.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

func (s *UserService) GetProfile(username string) (*models.Profile, error) {
	return s.store.Get(username)
}

// AddFriend links friend to username's friend list. It reports false when
// the friend was already on the list.
func (s *UserService) AddFriend(username, friend string) (bool, error) {
	friend = strings.TrimSpace(friend)
	if friend == "" {
		return false, fmt.Errorf("%w: friend username is required", ErrInvalidInput)
	}
	if friend == username {
		return false, fmt.Errorf("%w: cannot add yourself as a friend", ErrInvalidInput)
	}
	if _, err := s.store.Get(friend); err != nil {
		return false, fmt.Errorf("friend %s: %w", friend, err)
	}

	added := false
	_, err := s.store.Update(username, func(p *models.Profile) error {
		if p.HasFriend(friend) {
			return nil
		}
		p.Friends = append(p.Friends, friend)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Friends summarises each friend still present in the store.
func (s *UserService) Friends(username string) ([]models.FriendSummary, error) {
	p, err := s.store.Get(username)
	if err != nil {
		return nil, err
	}

	friends := make([]models.FriendSummary, 0, len(p.Friends))
	for _, name := range p.Friends {
		f, err := s.store.Get(name)
		if err != nil {
			s.logger.WithError(err).Warn(fmt.Sprintf("Skipping friend %s of %s", name, username))
			continue
		}
		friends = append(friends, models.FriendSummary{
			Username:     f.Username,
			Points:       f.Points,
			Achievements: len(f.Achievements),
		})
	}
	return friends, nil
}

// checkPassword accepts bcrypt hashes as well as legacy clear-text records.
// Without hashing enabled, a clear-text password that happens to look like a
// hash still matches itself.
func (s *UserService) checkPassword(stored, given string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil {
			return true
		}
		return !s.hashPasswords && stored == given
	}
	return stored == given
}
