package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crs-edu/crs-backend/internal/authz"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool. Call EnsureSchema before first
// use on a fresh database.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the accounts table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			university_id TEXT,
			faculty_id TEXT,
			department_id TEXT,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u User) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if u.Email == "" {
		return "", fmt.Errorf("email is required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, name, role, university_id, faculty_id, department_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id::text`,
		strings.ToLower(u.Email),
		u.Name,
		string(u.Role),
		nullIfEmpty(u.UniversityID),
		nullIfEmpty(u.FacultyID),
		nullIfEmpty(u.DepartmentID),
		u.PasswordHash,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUserByQuery(ctx, "id", `WHERE id = $1::uuid`, id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUserByQuery(ctx, email, `WHERE email = $1`, strings.ToLower(email))
}

func (s *PostgresStore) ListUsers(ctx context.Context, universityID string) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, email, name, role, university_id, faculty_id, department_id, password_hash, created_at
		 FROM accounts
		 WHERE ($1 = '' OR university_id = $1)
		 ORDER BY email ASC`,
		universityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM accounts WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

func (s *PostgresStore) getUserByQuery(ctx context.Context, key, where string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id::text, email, name, role, university_id, faculty_id, department_id, password_hash, created_at
		 FROM accounts `+where, arg)
	u, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{Key: key}
		}
		return nil, err
	}
	return u, nil
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	u := &User{}
	var role string
	var uniID, facID, depID *string
	if err := scan(&u.ID, &u.Email, &u.Name, &role, &uniID, &facID, &depID, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = authz.Role(role)
	if uniID != nil {
		u.UniversityID = *uniID
	}
	if facID != nil {
		u.FacultyID = *facID
	}
	if depID != nil {
		u.DepartmentID = *depID
	}
	return u, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
