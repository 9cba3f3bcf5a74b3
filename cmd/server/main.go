package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crs-edu/crs-backend/internal/account"
	"github.com/crs-edu/crs-backend/internal/ai"
	"github.com/crs-edu/crs-backend/internal/audit"
	"github.com/crs-edu/crs-backend/internal/clomap"
	"github.com/crs-edu/crs-backend/internal/httpapi"
	"github.com/crs-edu/crs-backend/internal/org"
	"github.com/crs-edu/crs-backend/internal/platform/cache"
	"github.com/crs-edu/crs-backend/internal/platform/config"
	"github.com/crs-edu/crs-backend/internal/platform/database"
	"github.com/crs-edu/crs-backend/internal/respond"
	"github.com/crs-edu/crs-backend/internal/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		slog.Error("failed to wire dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := httpapi.New(*deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildDeps wires stores, sessions, templates, and the AI router. Postgres
// and Redis are optional: without them the server runs on in-memory
// implementations, which suits local development.
func buildDeps(ctx context.Context, cfg *config.Config) (*httpapi.Deps, func(), error) {
	checks := map[string]func(context.Context) error{}
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	var orgStore org.Store = org.NewMemoryStore()
	var userStore account.Store = account.NewMemoryStore()
	var auditLog audit.Logger = audit.NopLogger{}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting database: %w", err)
		}
		cleanups = append(cleanups, db.Close)
		checks["database"] = db.HealthCheck

		pgOrgs, err := org.NewPostgresStore(db.Pool)
		if err != nil {
			return nil, cleanup, err
		}
		if err := pgOrgs.EnsureSchema(ctx); err != nil {
			return nil, cleanup, err
		}
		pgUsers, err := account.NewPostgresStore(db.Pool)
		if err != nil {
			return nil, cleanup, err
		}
		if err := pgUsers.EnsureSchema(ctx); err != nil {
			return nil, cleanup, err
		}
		pgAudit := audit.NewPostgresLogger(db.Pool)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			return nil, cleanup, err
		}
		orgStore = pgOrgs
		userStore = pgUsers
		auditLog = pgAudit
		slog.Info("using postgres stores")
	} else {
		slog.Warn("no database configured, using in-memory stores")
	}

	var sessionStore account.SessionStore = account.NewMemorySessions()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting cache: %w", err)
		}
		cleanups = append(cleanups, func() { c.Close() })
		checks["cache"] = c.HealthCheck
		sessionStore = account.NewRedisSessions(c.Client)
		slog.Info("using redis sessions")
	}

	templates, err := template.NewLoader(cfg.TemplatePath)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading templates: %w", err)
	}

	router := ai.NewRouter()
	if cfg.AI.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
	}
	if cfg.AI.Anthropic.APIKey != "" {
		anthropic, err := ai.NewAnthropicProvider(cfg.AI.Anthropic.APIKey)
		if err != nil {
			return nil, cleanup, fmt.Errorf("configuring anthropic provider: %w", err)
		}
		router.Register("anthropic", anthropic)
	}

	accounts := account.NewService(userStore, sessionStore, time.Duration(cfg.Auth.SessionTTL)*time.Hour)

	return &httpapi.Deps{
		Accounts:  accounts,
		Orgs:      orgStore,
		Sessions:  respond.NewService(respond.NewMemoryStore(), respond.NewHub()),
		Templates: templates,
		Pipeline:  clomap.NewPipeline(router),
		Usage:     ai.NewInMemoryUsage(),
		Audit:     auditLog,
		Checks:    checks,
	}, cleanup, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
