package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

// BetPlacer defines what the bet handler needs from the service layer.
type BetPlacer interface {
	PlaceBet(ctx context.Context, amount int, contractID string, opts *manifold.BetOpts) (domain.PlacedBet, error)
	CancelBet(ctx context.Context, recordID string) error
}

// BetSource lists previously placed bets. The Postgres BetStore satisfies
// this implicitly.
type BetSource interface {
	ListByContract(ctx context.Context, contractID string, opts domain.ListOpts) ([]domain.PlacedBet, error)
	ListRecent(ctx context.Context, limit int) ([]domain.PlacedBet, error)
}

// BetHandler serves bet-related HTTP endpoints.
type BetHandler struct {
	service BetPlacer
	bets    BetSource
	logger  *slog.Logger
}

// NewBetHandler creates a BetHandler with the given service, store, and logger.
func NewBetHandler(service BetPlacer, bets BetSource, logger *slog.Logger) *BetHandler {
	return &BetHandler{
		service: service,
		bets:    bets,
		logger:  logger,
	}
}

// placeBetRequest is the JSON body accepted by PlaceBet.
type placeBetRequest struct {
	Amount     int      `json:"amount"`
	ContractID string   `json:"contract_id"`
	Outcome    string   `json:"outcome"`
	LimitProb  *float64 `json:"limit_prob"`
}

// listBetsResponse wraps the list endpoint output.
type listBetsResponse struct {
	Bets []domain.PlacedBet `json:"bets"`
}

// ListBets returns recent bets, optionally filtered by contract.
// GET /api/bets?contract_id=...&limit=50&offset=0
func (h *BetHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	var bets []domain.PlacedBet
	var err error
	if contractID := r.URL.Query().Get("contract_id"); contractID != "" {
		bets, err = h.bets.ListByContract(r.Context(), contractID, opts)
	} else {
		bets, err = h.bets.ListRecent(r.Context(), opts.Limit)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list bets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list bets")
		return
	}
	if bets == nil {
		bets = []domain.PlacedBet{}
	}

	writeJSON(w, http.StatusOK, listBetsResponse{Bets: bets})
}

// PlaceBet submits a bet from a JSON body. A bet the API rejects still returns
// 201 with the rejected record; clients inspect the record status.
// POST /api/bets
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ContractID == "" {
		writeError(w, http.StatusBadRequest, "contract_id is required")
		return
	}

	var opts *manifold.BetOpts
	if req.Outcome != "" || req.LimitProb != nil {
		outcome, err := manifold.ParseBetOutcome(req.Outcome)
		if req.Outcome != "" && err != nil {
			writeError(w, http.StatusBadRequest, "invalid outcome: "+req.Outcome)
			return
		}
		opts = &manifold.BetOpts{Outcome: outcome, LimitProb: req.LimitProb}
	}

	record, err := h.service.PlaceBet(r.Context(), req.Amount, req.ContractID, opts)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "rate limited")
			return
		}
		if errors.Is(err, manifold.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: place bet failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to place bet")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// CancelBet cancels an open limit order by its local record ID.
// DELETE /api/bets/{id}
func (h *BetHandler) CancelBet(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bet record id")
		return
	}

	if err := h.service.CancelBet(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: cancel bet failed",
			slog.String("record_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel bet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "cancelled",
		"record_id": id,
	})
}
