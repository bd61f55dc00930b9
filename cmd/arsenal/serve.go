package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/arsenal/internal/api"
	"github.com/erazemk/arsenal/internal/audit"
	"github.com/erazemk/arsenal/internal/auth"
	"github.com/erazemk/arsenal/internal/config"
	"github.com/erazemk/arsenal/internal/db"
	"github.com/erazemk/arsenal/internal/imaging"
	"github.com/erazemk/arsenal/internal/metrics"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/session"
	"github.com/erazemk/arsenal/internal/store"
	"github.com/erazemk/arsenal/internal/telemetry"
	"github.com/erazemk/arsenal/internal/web"
)

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	closeLog, err := setupLogger(cfg.LogFile, cfg.Dev())
	if err != nil {
		return err
	}
	defer closeLog()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	st, err := store.Open(cfg.DataDir, cfg.Items)
	if err != nil {
		return err
	}
	auditLog, err := audit.Open(filepath.Join(cfg.DataDir, audit.FileName))
	if err != nil {
		return err
	}
	slog.Info("data directory ready", "path", cfg.DataDir)

	if err := seedAdmin(ctx, st, cfg); err != nil {
		return err
	}

	database, err := db.OpenWithSchema(cfg.SessionDBPath())
	if err != nil {
		return err
	}
	defer database.Close()

	// The signing secret is generated on first run and kept in the database.
	secret, err := db.GetSecret(ctx, database, db.SessionSecretKey)
	if err != nil {
		return fmt.Errorf("loading session secret: %w", err)
	}

	sessions, err := openSessions(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer sessions.Close()

	uploads, err := imaging.NewUploads(cfg.UploadsDir)
	if err != nil {
		return err
	}

	webRouter, err := web.NewRouter(&web.Server{
		Store:    st,
		Audit:    auditLog,
		Sessions: sessions,
		Uploads:  uploads,
		Secret:   secret,
		Options: web.Options{
			HashPasswords: cfg.Auth.HashPasswords,
			SessionTTL:    cfg.Session.TTL,
			CookieSecure:  cfg.Session.CookieSecure,
			BackupsDir:    cfg.BackupsDir,
		},
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}
	apiRouter := api.NewRouter(api.Deps{
		Store:      st,
		Audit:      auditLog,
		Sessions:   sessions,
		Secret:     secret,
		SessionTTL: cfg.Session.TTL,
	})

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "env", cfg.Env, "sessions", cfg.Session.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openSessions creates the configured session store.
func openSessions(ctx context.Context, cfg config.Config, database *sql.DB) (session.Store, error) {
	switch cfg.Session.Backend {
	case session.BackendRedis:
		rs, err := session.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("sessions stored in redis", "addr", cfg.Redis.Addr)
		return rs, nil
	case session.BackendMemory:
		slog.Warn("sessions kept in memory; restarting the server signs everyone out")
		return session.NewMemoryStore(), nil
	default:
		return session.NewSQLiteStore(database), nil
	}
}

// seedAdmin creates an administrator with a random password when the user
// store is empty and prints the credentials once.
func seedAdmin(ctx context.Context, st *store.Store, cfg config.Config) error {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	stored, err := auth.PreparePassword(password, cfg.Auth.HashPasswords)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser(ctx, model.User{
		Login:     cfg.AdminLogin,
		Password:  stored,
		FirstName: "Administrator",
		Role:      model.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Fprintln(os.Stdout, "Admin account created:")
	fmt.Fprintf(os.Stdout, "  Login:    %s\n", cfg.AdminLogin)
	fmt.Fprintf(os.Stdout, "  Password: %s\n", password)
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "Save this password, it cannot be recovered.")
	return nil
}
