package account

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound reports a lookup against a user that does not exist.
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.Key)
}

// IsNotFound reports whether err is a missing-user error.
func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// Store persists user accounts. Email lookups are case-insensitive.
type Store interface {
	CreateUser(ctx context.Context, u User) (string, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, universityID string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	users   map[string]*User
	byEmail map[string]string
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u User) (string, error) {
	if u.Email == "" {
		return "", fmt.Errorf("email is required")
	}
	email := strings.ToLower(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return "", fmt.Errorf("email already registered: %s", u.Email)
	}

	u.ID = newID()
	u.Email = email
	u.CreatedAt = time.Now()
	s.users[u.ID] = &u
	s.byEmail[email] = u.ID
	return u.ID, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, &ErrNotFound{Key: id}
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, &ErrNotFound{Key: email}
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) ListUsers(_ context.Context, universityID string) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []User{}
	for _, u := range s.users {
		if universityID != "" && u.UniversityID != universityID {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return &ErrNotFound{Key: id}
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
