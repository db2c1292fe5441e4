// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	browseFeature "github.com/rowbench/rowbench/internal/ui/features/browse"
	historyFeature "github.com/rowbench/rowbench/internal/ui/features/history"
	"github.com/rowbench/rowbench/internal/ui/notifier"
	"github.com/rowbench/rowbench/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	svc *table.Service,
	sessions *session.Manager,
	writeLog *history.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := browseFeature.SetupRoutes(router, svc, sessions, writeLog, notify, logger); err != nil {
		return err
	}

	if err := historyFeature.SetupRoutes(router, writeLog, logger); err != nil {
		return err
	}

	return nil
}
