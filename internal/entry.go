// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/roamdeck/internal/api"
	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/cardservice"
	"github.com/starford/roamdeck/internal/collection"
	"github.com/starford/roamdeck/internal/flashcard"
	"github.com/starford/roamdeck/internal/importer"
	"github.com/starford/roamdeck/internal/mcpserver"
	"github.com/starford/roamdeck/internal/render"
	"github.com/starford/roamdeck/internal/sse"
	"github.com/starford/roamdeck/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// stdout belongs to the MCP transport.
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// runtime is the set of components every command works with.
type runtime struct {
	db    *collection.DB
	inbox *storage.FS
	im    *importer.Importer
}

func (a *application) open(opts ...importer.Option) (*runtime, error) {
	cfg := a.config

	db, err := collection.Open(cfg.Collection.Path)
	if err != nil {
		return nil, fmt.Errorf("init collection: %w", err)
	}
	inbox, err := storage.NewFS(cfg.Import.InboxPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init inbox: %w", err)
	}

	formatter := render.NewFormatter(cfg.Import.SourceApp, render.CurlyPolicy(cfg.Import.CurlyCommands))
	builder := flashcard.NewBuilder(formatter, cfg.Import.GraphName)
	opts = append([]importer.Option{importer.WithLogger(a.logger)}, opts...)
	im := importer.New(db, builder, importer.Settings{
		ModelName: cfg.Collection.ModelName,
		DeckName:  cfg.Collection.DeckName,
		Fields:    cfg.Fields.FieldMap(),
	}, opts...)

	return &runtime{db: db, inbox: inbox, im: im}, nil
}

// Init creates the configured note model with one field per mapped card
// field. An existing model is left as it is.
func Init(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	db, err := collection.Open(cfg.Collection.Path)
	if err != nil {
		return fmt.Errorf("init collection: %w", err)
	}
	defer db.Close()

	m, err := db.CreateModel(ctx, cfg.Collection.ModelName, cfg.Fields.FieldMap().Names())
	if errors.Is(err, apperr.ErrAlreadyExists) {
		app.logger.Info("Note model already exists", slog.String("model", cfg.Collection.ModelName))
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := db.Deck(ctx, cfg.Collection.DeckName); err != nil {
		return err
	}
	app.logger.Info("Note model created",
		slog.String("model", m.Name),
		slog.Int("fields", len(m.Fields)),
		slog.String("sqlite_path", cfg.Collection.Path))
	return nil
}

// Import imports one export file. An empty path falls back to
// import.file_path.
func Import(ctx context.Context, path string, opts ...Option) (importer.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return importer.Summary{}, err
	}
	if path == "" {
		path = app.config.Import.FilePath
	}
	if path == "" {
		return importer.Summary{}, fmt.Errorf("no export given and import.file_path is not set")
	}

	rt, err := app.open()
	if err != nil {
		return importer.Summary{}, err
	}
	defer rt.db.Close()

	return rt.im.ImportPath(ctx, path)
}

// Sync imports every changed export in the inbox once.
func Sync(ctx context.Context, opts ...Option) ([]importer.FileSummary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	rt, err := app.open()
	if err != nil {
		return nil, err
	}
	defer rt.db.Close()

	return rt.im.Sync(ctx, rt.inbox)
}

// ServeMCP serves the MCP tools on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := cardservice.NewService(rt.db, rt.inbox, rt.im)
	app.logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc).ServeStdio()
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP server and the inbox watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("inbox_path", cfg.Import.InboxPath),
		slog.String("sqlite_path", cfg.Collection.Path),
		slog.String("model", cfg.Collection.ModelName),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := app.open(
		importer.WithHook(broker.PublishImport),
		importer.WithCardHook(broker.PublishCardEvent),
	)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	// Run initial sync.
	if _, err := rt.im.Sync(ctx, rt.inbox); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := cardservice.NewService(rt.db, rt.inbox, rt.im)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Start inbox watcher.
	g.Go(func() error {
		return rt.im.Watch(gCtx, rt.inbox, rt.inbox.Root(), func(kind, path string, _ importer.Summary) {
			broker.PublishExportEvent(kind, path)
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stop()

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
