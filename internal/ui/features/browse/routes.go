// Package browse is the single-table editor: search, in-grid edits, a
// confirm-to-apply update form, and row insertion.
package browse

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	"github.com/rowbench/rowbench/internal/ui/notifier"
)

// SetupRoutes registers the browse feature routes.
func SetupRoutes(
	router chi.Router,
	svc *table.Service,
	sessions *session.Manager,
	writeLog *history.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(svc, sessions, writeLog, notify, logger)

	router.Get("/", handlers.Page)

	router.Route("/api", func(r chi.Router) {
		r.Post("/search", handlers.SearchSSE) // Filter inputs, debounced
		r.Post("/cell", handlers.CellSSE)     // One grid cell changed
		r.Post("/update", handlers.UpdateSSE) // Update form confirmed
		r.Post("/add", handlers.AddSSE)       // Add form submitted
		r.Post("/clear", handlers.ClearSSE)   // Clear filters button
		r.Get("/updates", handlers.UpdatesSSE)
	})

	return nil
}
