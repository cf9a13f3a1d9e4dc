package handler

import (
	"context"
	"net/http"
	"time"
)

// MarketCounter reports the number of markets currently stored.
type MarketCounter interface {
	Count(ctx context.Context) (int64, error)
}

// StatusHandler serves a bot status snapshot for the dashboard.
type StatusHandler struct {
	mode      string
	startedAt time.Time
	markets   MarketCounter
	runs      RunSource
}

// NewStatusHandler creates a StatusHandler. markets and runs may be nil; the
// corresponding fields are then omitted from the snapshot.
func NewStatusHandler(mode string, markets MarketCounter, runs RunSource) *StatusHandler {
	return &StatusHandler{
		mode:      mode,
		startedAt: time.Now().UTC(),
		markets:   markets,
		runs:      runs,
	}
}

// GetStatus responds with the current mode, uptime, market count, and the most
// recent scrape run.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"mode":           h.mode,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}

	if h.markets != nil {
		if count, err := h.markets.Count(r.Context()); err == nil {
			status["market_count"] = count
		}
	}
	if h.runs != nil {
		if runs, err := h.runs.ListRecent(r.Context(), 1); err == nil && len(runs) > 0 {
			status["last_run"] = runs[0]
		}
	}

	writeJSON(w, http.StatusOK, status)
}
