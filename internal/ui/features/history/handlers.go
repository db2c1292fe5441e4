// Package history serves the write log panel.
package history

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/ui/views"
)

const defaultLimit = 20

// Handlers serves the write history fragment.
type Handlers struct {
	writeLog *history.Store
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(writeLog *history.Store, logger *slog.Logger) *Handlers {
	return &Handlers{writeLog: writeLog, logger: logger}
}

// PanelSSE patches the history panel with the most recent writes. An
// optional ?limit= widens the window.
func (h *Handlers) PanelSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.writeLog.Recent(limit)
	if err != nil {
		h.logger.Warn("write log read failed", "error", err)
		_ = sse.ConsoleError(err)
		return
	}

	panel := make([]views.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		panel = append(panel, views.HistoryEntry{
			Op:      e.Op,
			RowID:   e.RowID,
			OK:      e.OK,
			Message: e.Message,
			When:    e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}

	html, err := views.Render("history", panel)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		_ = sse.ConsoleError(err)
	}
}
