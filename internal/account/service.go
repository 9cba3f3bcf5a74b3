package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crs-edu/crs-backend/internal/authz"
)

// ErrInvalidCredentials is returned for a bad email or password. The two
// cases are deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrForbidden is returned when the acting role may not manage the target.
var ErrForbidden = errors.New("insufficient role")

const minPasswordLength = 8

// Service implements account workflows on top of a user store and a
// session store.
type Service struct {
	store      Store
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewService wires the stores together. sessionTTL bounds how long a login
// stays valid.
func NewService(store Store, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{store: store, sessions: sessions, sessionTTL: sessionTTL}
}

// CreateUser registers a new account on behalf of actor. The actor must
// strictly outrank the new user's role.
func (s *Service) CreateUser(ctx context.Context, actor authz.Role, nu NewUser) (*User, error) {
	if !authz.Known(nu.Role) {
		return nil, fmt.Errorf("unknown role: %s", nu.Role)
	}
	if !authz.CanManageUser(actor, nu.Role) {
		return nil, ErrForbidden
	}
	if len(nu.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		Email:        nu.Email,
		Name:         nu.Name,
		Role:         nu.Role,
		UniversityID: nu.UniversityID,
		FacultyID:    nu.FacultyID,
		DepartmentID: nu.DepartmentID,
		PasswordHash: string(hash),
	}
	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

// Authenticate verifies credentials and returns the user on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and opens a session, returning the opaque token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.sessions.Create(ctx, Session{UserID: u.ID, Role: u.Role}, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("open session: %w", err)
	}
	return token, u, nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token back to its user.
func (s *Service) Resolve(ctx context.Context, token string) (*User, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, sess.UserID)
}

// ListUsers returns accounts, optionally filtered by university.
func (s *Service) ListUsers(ctx context.Context, universityID string) ([]User, error) {
	return s.store.ListUsers(ctx, universityID)
}

// DeleteUser removes an account on behalf of actor.
func (s *Service) DeleteUser(ctx context.Context, actor authz.Role, id string) error {
	target, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanManageUser(actor, target.Role) {
		return ErrForbidden
	}
	return s.store.DeleteUser(ctx, id)
}
