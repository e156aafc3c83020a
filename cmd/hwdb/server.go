package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/artpar/hwdb/internal/shell/api"
	"github.com/artpar/hwdb/internal/shell/snapshot"
	"github.com/artpar/hwdb/internal/shell/store"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitImportError     = 3
	ExitHTTPServerError = 4
)

// =============================================================================
// Server
// =============================================================================

// Server represents the inventory API server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	watcher    *snapshot.Watcher
	logger     *slog.Logger
}

// NewServer opens the store, imports the configured snapshot and prepares
// the HTTP server.
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	if cfg.Snapshot.Watch && cfg.Snapshot.Path == "" {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      errors.New("snapshot.watch requires snapshot.path"),
			ExitCode: ExitConfigError,
		}
	}

	// Connect to database
	db, err := store.NewSQLiteStore(cfg.Database.DSN)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}
	s := store.NewCachedStore(db, cfg.Database.CacheTTL)

	var watcher *snapshot.Watcher
	if cfg.Snapshot.Path != "" {
		if _, err := importSnapshot(ctx, s, cfg.Snapshot.Path, logger); err != nil {
			s.Close()
			return nil, &ServerError{
				Op:       "ImportSnapshot",
				Err:      err,
				ExitCode: ExitImportError,
			}
		}

		if cfg.Snapshot.Watch {
			watcher = snapshot.NewWatcher(cfg.Snapshot.Path, func(ctx context.Context, path string) error {
				_, err := importSnapshot(ctx, s, path, logger)
				return err
			}, snapshot.WithLogger(logger))
		}
	}

	handler := api.NewHandler(api.Config{
		Store:          s,
		Logger:         logger,
		Version:        Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		watcher:    watcher,
		logger:     logger,
	}, nil
}

// importSnapshot loads, resolves and stores the snapshot at path.
func importSnapshot(ctx context.Context, s store.Store, path string, logger *slog.Logger) (*store.Import, error) {
	snap, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}

	deployments, systems, err := snap.Resolve()
	if err != nil {
		return nil, err
	}

	imp, err := s.ImportSnapshot(ctx, deployments, systems, path)
	if err != nil {
		return nil, err
	}

	logger.Info("snapshot imported",
		"import_id", imp.ID,
		"source", imp.Source,
		"deployments", imp.Deployments,
		"systems", imp.Systems,
	)
	return imp, nil
}

// Start serves HTTP (and watches the snapshot if configured) until ctx is
// cancelled, SIGINT/SIGTERM arrives or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// HTTP server
	g.Go(func() error {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return &ServerError{
				Op:       "Start",
				Err:      err,
				ExitCode: ExitHTTPServerError,
			}
		}
		return nil
	})

	// Snapshot watcher
	if s.watcher != nil {
		g.Go(func() error {
			if err := s.watcher.Run(gctx); err != nil {
				return &ServerError{
					Op:       "WatchSnapshot",
					Err:      err,
					ExitCode: ExitImportError,
				}
			}
			return nil
		})
	}

	// Shutdown once anything above stops or a signal arrives
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			s.logger.Info("shutdown requested")
		}
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
