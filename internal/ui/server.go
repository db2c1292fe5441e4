// Package ui provides the web editor server for the configured table.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	"github.com/rowbench/rowbench/internal/ui/notifier"
	"github.com/rowbench/rowbench/internal/ui/router"
)

// Server is the main UI server.
type Server struct {
	svc       *table.Service
	sessions  *session.Manager
	writeLog  *history.Store
	port      int
	watchPath string
	logger    *slog.Logger
	notifier  *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Service       *table.Service
	WriteLog      *history.Store
	Port          int
	SessionSecret string

	// WatchPath, when set, is a warehouse file to watch for out-of-band
	// writes. Empty disables watching (server-based warehouses,
	// in-memory databases).
	WatchPath string

	Logger *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	return &Server{
		svc:       cfg.Service,
		sessions:  session.NewManager(cfg.SessionSecret),
		writeLog:  cfg.WriteLog,
		port:      cfg.Port,
		watchPath: cfg.WatchPath,
		logger:    cfg.Logger,
		notifier:  notifier.New(),
	}
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "table", s.svc.Table())

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.svc, s.sessions, s.writeLog, s.notifier, s.logger); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchPath != "" {
		eg.Go(func() error {
			return s.watchWarehouseFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchWarehouseFile watches the warehouse database file for writes made
// outside this process and marks every session's cached results stale.
//
// The watch covers the containing directory because some engines replace
// the file (or write sidecar WAL files) rather than appending in place.
func (s *Server) watchWarehouseFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.watchPath)
	base := filepath.Base(s.watchPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch warehouse file", "dir", dir, "error", err)
		// Don't fail - continue without watching
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			name := filepath.Base(event.Name)
			if name != base && name != base+".wal" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("warehouse file changed", "file", event.Name)

				s.svc.InvalidateSchema()
				s.sessions.InvalidateAllResults()
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
