package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crs-edu/crs-backend/internal/authz"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state behind one opaque login token.
type Session struct {
	UserID    string     `json:"user_id"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// SessionStore keeps login sessions keyed by opaque token.
type SessionStore interface {
	Create(ctx context.Context, sess Session, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// newToken returns 32 bytes of hex-encoded randomness. The token carries no
// claims; everything lives server-side.
func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// MemorySessions is an in-memory SessionStore with lazy expiry.
type MemorySessions struct {
	sessions map[string]memorySession
	mu       sync.RWMutex
}

type memorySession struct {
	sess      Session
	expiresAt time.Time
}

// NewMemorySessions creates an empty in-memory session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession)}
}

func (s *MemorySessions) Create(_ context.Context, sess Session, ttl time.Duration) (string, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	token := newToken()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{sess: sess, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

func (s *MemorySessions) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	cp := entry.sess
	return &cp, nil
}

func (s *MemorySessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// RedisSessions stores sessions as JSON values with a TTL, so expiry is
// handled by the cache itself.
type RedisSessions struct {
	client *redis.Client
	prefix string
}

// NewRedisSessions wraps a connected client.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client, prefix: "session:"}
}

func (s *RedisSessions) Create(ctx context.Context, sess Session, ttl time.Duration) (string, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	token := newToken()
	if err := s.client.Set(ctx, s.prefix+token, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessions) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessions) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
