// Package respond runs live response sessions: a teacher opens a session
// for a course, students submit short answers, and subscribers see each
// submission as it arrives.
package respond

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Session is one live collection window.
type Session struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"course_id"`
	TeacherID string     `json:"teacher_id"`
	Title     string     `json:"title"`
	Open      bool       `json:"open"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Response is one student submission inside a session.
type Response struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound reports a lookup against a session that does not exist.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// IsNotFound reports whether err is a missing-session error.
func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// ErrSessionClosed is returned when submitting to a closed session.
var ErrSessionClosed = fmt.Errorf("session is closed")

// Store persists sessions and their responses.
type Store interface {
	CreateSession(ctx context.Context, s Session) (string, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, courseID string) ([]Session, error)
	CloseSession(ctx context.Context, id string) error
	AddResponse(ctx context.Context, r Response) (*Response, error)
	ListResponses(ctx context.Context, sessionID string) ([]Response, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	sessions  map[string]*Session
	responses map[string][]Response
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*Session),
		responses: make(map[string][]Response),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, sess Session) (string, error) {
	if sess.CourseID == "" {
		return "", fmt.Errorf("course_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ID = newID()
	sess.Open = true
	sess.CreatedAt = time.Now()
	s.sessions[sess.ID] = &sess
	return sess.ID, nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) ListSessions(_ context.Context, courseID string) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Session{}
	for _, sess := range s.sessions {
		if courseID != "" && sess.CourseID != courseID {
			continue
		}
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CloseSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return &ErrNotFound{ID: id}
	}
	if sess.Open {
		now := time.Now()
		sess.Open = false
		sess.ClosedAt = &now
	}
	return nil
}

func (s *MemoryStore) AddResponse(_ context.Context, r Response) (*Response, error) {
	if r.Text == "" {
		return nil, fmt.Errorf("response text is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[r.SessionID]
	if !ok {
		return nil, &ErrNotFound{ID: r.SessionID}
	}
	if !sess.Open {
		return nil, ErrSessionClosed
	}

	r.ID = newID()
	r.CreatedAt = time.Now()
	s.responses[r.SessionID] = append(s.responses[r.SessionID], r)
	cp := r
	return &cp, nil
}

func (s *MemoryStore) ListResponses(_ context.Context, sessionID string) ([]Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, &ErrNotFound{ID: sessionID}
	}
	out := make([]Response, len(s.responses[sessionID]))
	copy(out, s.responses[sessionID])
	return out, nil
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
