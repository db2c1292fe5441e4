package history

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/rowbench/rowbench/internal/history"
)

// SetupRoutes registers the history feature routes.
func SetupRoutes(router chi.Router, writeLog *history.Store, logger *slog.Logger) error {
	handlers := NewHandlers(writeLog, logger)

	router.Get("/api/history", handlers.PanelSSE)

	return nil
}
