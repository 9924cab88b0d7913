// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/halvard/gebo/internal/api"
	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/contactservice"
	"github.com/halvard/gebo/internal/index"
	"github.com/halvard/gebo/internal/mcpserver"
	"github.com/halvard/gebo/internal/sse"
	"github.com/halvard/gebo/internal/storage"
)

// environment bundles the long-lived dependencies shared by the serve
// loop and the one-shot commands.
type environment struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Provider
	db     *index.DB
	svc    *contactservice.Service
}

func (e *environment) close() {
	if e.db != nil {
		e.db.Close()
	}
}

// setup initializes logging, storage, the index, and the contact
// service from the application options. Logs go to logOut; the MCP
// command must keep stdout clean for the stdio transport.
func setup(opts []Option, logOut io.Writer, svcOpts ...contactservice.Option) (*environment, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, cfg.Scheduler.Keys.Birthday, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svcOpts = append([]contactservice.Option{contactservice.WithLogger(logger)}, svcOpts...)
	svc := contactservice.NewService(store, db, cfg.Scheduler, svcOpts...)

	return &environment{cfg: cfg, logger: logger, store: store, db: db, svc: svc}, nil
}

// Run starts the full service (HTTP API, SSE, file watcher) with the
// given options.
func Run(ctx context.Context, opts ...Option) error {
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	env, err := setup(opts, os.Stdout, contactservice.WithNotify(broker.PublishDocEvent))
	if err != nil {
		return err
	}
	defer env.close()

	cfg, logger := env.cfg, env.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	apiRouter := api.NewRouter(env.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return index.Watch(gCtx, env.db, env.store, cfg.Vault.Path, cfg.Scheduler.Keys.Birthday, logger,
			func(kind, path string) {
				broker.PublishDocEvent(kind, path)
			})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio.
func RunMCP(_ context.Context, opts ...Option) error {
	env, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer env.close()

	return mcpserver.New(env.svc).ServeStdio()
}

// RunRemind schedules birthday reminders for one document, or for the
// whole vault when docPath is empty.
func RunRemind(ctx context.Context, docPath string, advanceDays int, opts ...Option) error {
	env, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer env.close()

	if docPath == "" {
		results, err := env.svc.ScheduleAll(ctx, advanceDays)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Error != "" {
				fmt.Printf("%s: error: %s\n", res.Path, res.Error)
				continue
			}
			fmt.Printf("%s: %d reminder(s) created\n", res.Path, res.Created)
		}
		return nil
	}

	created, err := env.svc.ScheduleReminders(ctx, docPath, advanceDays)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Println("no reminders created (already present or not a contact)")
		return nil
	}
	for _, r := range created {
		fmt.Printf("created: %s at %s\n", r.Heading, r.At.Format("2006-01-02"))
	}
	return nil
}

// RunSchedule inserts one reminder heading into a document.
func RunSchedule(ctx context.Context, docPath, text, date string, everyYears int, opts ...Option) error {
	env, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer env.close()

	at, err := contacts.ParseDate(date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	r, err := env.svc.InsertReminder(ctx, docPath, text, at, everyYears)
	if err != nil {
		return err
	}
	fmt.Printf("created: %s at %s\n", r.Heading, r.At.Format("2006-01-02"))
	return nil
}

// RunProperties prints the managed contact property keys.
func RunProperties(_ context.Context, opts ...Option) error {
	env, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer env.close()

	for _, key := range env.svc.ManagedProperties() {
		fmt.Println(key)
	}
	return nil
}

// RunBirthdays prints upcoming birthdays within the horizon.
func RunBirthdays(ctx context.Context, withinDays int, opts ...Option) error {
	env, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer env.close()

	entries, err := env.svc.UpcomingBirthdays(ctx, withinDays)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no upcoming birthdays")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s (%s)\n", e.Next.Format("2006-01-02"), e.Name, e.Path)
	}
	return nil
}
