package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// RunSource lists scrape run history. The Postgres ScrapeRunStore satisfies
// this implicitly.
type RunSource interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ScrapeRun, error)
}

// ScrapeHandler serves scrape run history and the on-demand trigger.
type ScrapeHandler struct {
	runs      RunSource
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending starts one scrape run
}

// NewScrapeHandler creates a ScrapeHandler with the given store and logger.
func NewScrapeHandler(runs RunSource, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{runs: runs, logger: logger}
}

// WithTriggerChannel sets the channel to send on when a run is requested. The
// scraper loop must receive from this channel to run one cycle.
func (h *ScrapeHandler) WithTriggerChannel(ch chan<- struct{}) *ScrapeHandler {
	h.triggerCh = ch
	return h
}

// listRunsResponse wraps the run history output.
type listRunsResponse struct {
	Runs []domain.ScrapeRun `json:"runs"`
}

// ListRuns returns the most recent scrape runs.
// GET /api/runs?limit=50
func (h *ScrapeHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	runs, err := h.runs.ListRecent(r.Context(), opts.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list runs failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list scrape runs")
		return
	}
	if runs == nil {
		runs = []domain.ScrapeRun{}
	}

	writeJSON(w, http.StatusOK, listRunsResponse{Runs: runs})
}

// TriggerScrape enqueues one scrape run. The send is non-blocking; a pending
// unconsumed trigger is left as-is.
// POST /api/scrape/trigger
func (h *ScrapeHandler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	if h.triggerCh == nil {
		writeError(w, http.StatusConflict, "scraper is not running in this mode")
		return
	}

	h.logger.InfoContext(r.Context(), "handler: scrape trigger requested")
	select {
	case h.triggerCh <- struct{}{}:
	default:
		// already triggered and not yet consumed
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
