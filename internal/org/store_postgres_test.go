package org_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/crs-edu/crs-backend/internal/org"
)

// startPostgres spins up a disposable database and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("crs_test"),
		postgres.WithUsername("crs"),
		postgres.WithPassword("crs"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := startPostgres(t)

	store, err := org.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	courseID := seedCourse(t, store)

	t.Run("course round trip", func(t *testing.T) {
		course, err := store.GetCourse(ctx, courseID)
		if err != nil {
			t.Fatalf("GetCourse: %v", err)
		}
		if course.Code != "CS301" || course.Title != "Computer Networks" {
			t.Errorf("course = %+v", course)
		}

		if err := store.UpdateCourse(ctx, org.Course{ID: courseID, Title: "Advanced Networks"}); err != nil {
			t.Fatalf("UpdateCourse: %v", err)
		}
		course, _ = store.GetCourse(ctx, courseID)
		if course.Title != "Advanced Networks" || course.Code != "CS301" {
			t.Errorf("after update = %+v, want title changed and code kept", course)
		}
	})

	t.Run("course search", func(t *testing.T) {
		got, total, err := store.ListCourses(ctx, "", org.ListParams{Search: "networks"})
		if err != nil {
			t.Fatalf("ListCourses: %v", err)
		}
		if total != 1 || len(got) != 1 {
			t.Fatalf("total = %d, courses = %+v, want one match", total, got)
		}
	})

	t.Run("outcome numbering survives deletes", func(t *testing.T) {
		first, err := store.CreateOutcome(ctx, courseID, "Explain the TCP handshake")
		if err != nil {
			t.Fatalf("CreateOutcome: %v", err)
		}
		second, err := store.CreateOutcome(ctx, courseID, "Design a subnetting plan")
		if err != nil {
			t.Fatalf("CreateOutcome: %v", err)
		}
		if first.Number != 1 || second.Number != 2 {
			t.Fatalf("numbers = %d, %d, want 1, 2", first.Number, second.Number)
		}

		if err := store.DeleteOutcome(ctx, first.ID); err != nil {
			t.Fatalf("DeleteOutcome: %v", err)
		}
		third, err := store.CreateOutcome(ctx, courseID, "Evaluate routing protocols")
		if err != nil {
			t.Fatalf("CreateOutcome: %v", err)
		}
		if third.Number != 3 {
			t.Errorf("Number = %d, want 3 (max + 1, never reuse)", third.Number)
		}
	})

	t.Run("active filter", func(t *testing.T) {
		outcomes, err := store.ListOutcomes(ctx, courseID, false)
		if err != nil {
			t.Fatalf("ListOutcomes: %v", err)
		}
		retired := outcomes[0]
		if err := store.UpdateOutcome(ctx, org.LearningOutcome{ID: retired.ID, Description: retired.Description, Active: false}); err != nil {
			t.Fatalf("UpdateOutcome: %v", err)
		}

		active, err := store.ListOutcomes(ctx, courseID, true)
		if err != nil {
			t.Fatalf("ListOutcomes active: %v", err)
		}
		if len(active) != len(outcomes)-1 {
			t.Errorf("active = %d, want %d", len(active), len(outcomes)-1)
		}
		for _, o := range active {
			if o.ID == retired.ID {
				t.Error("retired outcome still listed as active")
			}
		}
	})

	t.Run("not found mapping", func(t *testing.T) {
		missing := "00000000-0000-0000-0000-000000000000"
		if _, err := store.GetCourse(ctx, missing); !org.IsNotFound(err) {
			t.Errorf("GetCourse = %v, want not-found", err)
		}
		if err := store.DeleteOutcome(ctx, missing); !org.IsNotFound(err) {
			t.Errorf("DeleteOutcome = %v, want not-found", err)
		}
	})

	t.Run("delete cascades outcomes", func(t *testing.T) {
		if err := store.DeleteCourse(ctx, courseID); err != nil {
			t.Fatalf("DeleteCourse: %v", err)
		}
		if _, err := store.GetCourse(ctx, courseID); !org.IsNotFound(err) {
			t.Errorf("GetCourse after delete = %v, want not-found", err)
		}
	})
}
