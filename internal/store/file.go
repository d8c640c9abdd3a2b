package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/tahcohcat/platepals-web/internal/logger"
	"github.com/tahcohcat/platepals-web/internal/models"
)

// FileStore keeps every profile in memory and rewrites the whole JSON file
// after each mutation. Usernames are written in sign-up order.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	backup   bool
	profiles map[string]*models.Profile
	order    []string
	logger   *logger.Log
}

func NewFileStore(path string, backup bool) *FileStore {
	if path == "" {
		path = "user_data.json"
	}
	return &FileStore{
		path:     path,
		backup:   backup,
		profiles: make(map[string]*models.Profile),
		logger:   logger.New(),
	}
}

// Load reads the data file. A missing file leaves the store empty; a file
// that cannot be parsed is an error and the in-memory state is untouched.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info(fmt.Sprintf("User data file '%s' not found, starting empty", s.path))
			s.profiles = make(map[string]*models.Profile)
			s.order = nil
			return nil
		}
		return fmt.Errorf("failed to read user data file: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("failed to parse user data file '%s': invalid JSON", s.path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("failed to parse user data file '%s': expected an object of users", s.path)
	}

	profiles := make(map[string]*models.Profile)
	var order []string
	var parseErr error

	// gjson walks the object in document order, which keeps sign-up order
	root.ForEach(func(key, value gjson.Result) bool {
		var p models.Profile
		if err := json.Unmarshal([]byte(value.Raw), &p); err != nil {
			parseErr = fmt.Errorf("failed to parse profile %q: %w", key.String(), err)
			return false
		}
		p.Username = key.String()
		p.Normalize()
		if _, seen := profiles[p.Username]; !seen {
			order = append(order, p.Username)
		}
		profiles[p.Username] = &p
		return true
	})
	if parseErr != nil {
		return parseErr
	}

	s.profiles = profiles
	s.order = order
	s.logger.Info(fmt.Sprintf("Loaded %d users from %s", len(order), s.path))
	return nil
}

func (s *FileStore) Create(p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.Username]; ok {
		return ErrAlreadyExists
	}

	c, err := p.Clone()
	if err != nil {
		return fmt.Errorf("failed to copy profile: %w", err)
	}

	s.profiles[c.Username] = c
	s.order = append(s.order, c.Username)

	if err := s.persist(); err != nil {
		delete(s.profiles, c.Username)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

func (s *FileStore) Get(username string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[username]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone()
}

func (s *FileStore) Update(username string, fn func(p *models.Profile) error) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[username]
	if !ok {
		return nil, ErrNotFound
	}

	next, err := current.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to copy profile: %w", err)
	}
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Username = username

	s.profiles[username] = next
	if err := s.persist(); err != nil {
		s.profiles[username] = current
		return nil, err
	}

	return next.Clone()
}

func (s *FileStore) List() ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Profile, 0, len(s.order))
	for _, name := range s.order {
		c, err := s.profiles[name].Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to copy profile: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *FileStore) Close() error {
	return nil
}

// encode renders the store as an indented JSON object, users in order.
func (s *FileStore) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range s.order {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(s.profiles[name], "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(body)
	}
	if len(s.order) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// persist writes the state to a temp file and renames it over the data file,
// keeping the previous version as .bak when backups are on. Callers hold mu.
func (s *FileStore) persist() error {
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	tempFilePath := s.path + ".tmp"
	backupFilePath := s.path + ".bak"

	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		s.logger.WithError(err).Error(fmt.Sprintf("Failed to write temporary file '%s'", tempFilePath))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.backup {
		if _, err := os.Stat(s.path); err == nil {
			if err := copyFile(s.path, backupFilePath); err != nil {
				s.logger.WithError(err).Warn(fmt.Sprintf("Failed to back up '%s', saving anyway", s.path))
			}
		}
	}

	if err := os.Rename(tempFilePath, s.path); err != nil {
		s.logger.WithError(err).Error(fmt.Sprintf("Failed to rename '%s' to '%s'", tempFilePath, s.path))
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Debug(fmt.Sprintf("Saved %d users to %s", len(s.order), s.path))
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
