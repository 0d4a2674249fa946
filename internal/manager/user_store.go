package manager

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
)

// Role represents an account's role in the dashboard.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// User holds authentication data and role for an account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionUser returns the public view of the account.
func (u *User) SessionUser() models.SessionUser {
	return models.SessionUser{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// UserStore manages persistent accounts with a JSON file backend.
type UserStore struct {
	path  string
	mu    sync.RWMutex
	users map[string]*User
}

// NewUserStore initializes a user store backed by the given file path.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path, users: make(map[string]*User)}
}

// Path returns the absolute path to the backing file used by this store.
func (s *UserStore) Path() string {
	return s.path
}

// Load reads users from disk; a missing file is treated as an empty store.
func (s *UserStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*User)

	if s.path == "" {
		return errors.New("user store path not set")
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	var list []*User
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	for _, u := range list {
		if u != nil && u.Username != "" {
			s.users[u.Username] = u
		}
	}
	return nil
}

// saveLocked writes users to disk atomically with 0600 permissions.
// Caller MUST hold s.mu (write lock) before calling.
func (s *UserStore) saveLocked() error {
	list := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, u)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Save acquires a write lock and persists users to disk.
func (s *UserStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// IsEmpty reports whether no accounts exist.
func (s *UserStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users) == 0
}

// Get returns a copy of the account by username.
func (s *UserStore) Get(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// CreateUser creates a new account with a pre-hashed password.
func (s *UserStore) CreateUser(username, name, passwordHash string, role Role) (*User, error) {
	if username == "" || passwordHash == "" {
		return nil, errors.New("username and password hash required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return nil, errors.New("user already exists")
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[username] = u
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword updates the password hash for an account.
func (s *UserStore) SetPassword(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	return s.saveLocked()
}

// SetRole updates an account's role.
func (s *UserStore) SetRole(username string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return errors.New("user not found")
	}
	u.Role = role
	return s.saveLocked()
}

// Users returns a snapshot list of accounts.
func (s *UserStore) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

// Delete removes an account by username.
func (s *UserStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return errors.New("user not found")
	}
	delete(s.users, username)
	return s.saveLocked()
}

// AdminCount returns the number of accounts with the admin role.
func (s *UserStore) AdminCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, u := range s.users {
		if u.Role == RoleAdmin {
			count++
		}
	}
	return count
}
