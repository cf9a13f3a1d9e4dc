// Package service contains the bot-side use cases built on top of the
// platform client and the domain stores.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/notify"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

// betRateKey throttles bet submission separately from the scraper.
const betRateKey = "manifold:bets"

// BetPoster submits bet requests to the Manifold API.
type BetPoster interface {
	CreateBet(ctx context.Context, bet *manifold.PlaceBet) (*manifold.Response, error)
	CancelBet(ctx context.Context, id string) (*manifold.Response, error)
}

// Notifier is the slice of the notifier the service needs.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// BetService handles the bet lifecycle: validate, persist a pending audit
// row, submit, and record the API's verdict. Limiter, audit store, and
// notifier are optional.
type BetService struct {
	api      BetPoster
	bets     domain.BetStore
	limiter  domain.RateLimiter
	audit    domain.AuditStore
	notifier Notifier
	logger   *slog.Logger
}

// NewBetService creates a BetService.
func NewBetService(api BetPoster, bets domain.BetStore, logger *slog.Logger) *BetService {
	return &BetService{
		api:    api,
		bets:   bets,
		logger: logger.With(slog.String("component", "bet_service")),
	}
}

// WithRateLimiter throttles bet submission through the given limiter.
func (s *BetService) WithRateLimiter(rl domain.RateLimiter) *BetService {
	s.limiter = rl
	return s
}

// WithAuditStore records bet outcomes in the audit log.
func (s *BetService) WithAuditStore(audit domain.AuditStore) *BetService {
	s.audit = audit
	return s
}

// WithNotifier makes the service emit bet_placed / bet_rejected events.
func (s *BetService) WithNotifier(n Notifier) *BetService {
	s.notifier = n
	return s
}

// PlaceBet validates and submits a bet, keeping a local audit row through the
// whole lifecycle. The returned record reflects the final state. Validation
// failures surface before anything is persisted; a non-2xx API response marks
// the record rejected but is not an error.
func (s *BetService) PlaceBet(ctx context.Context, amount int, contractID string, opts *manifold.BetOpts) (domain.PlacedBet, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, betRateKey, 10, time.Minute)
		if err != nil {
			return domain.PlacedBet{}, fmt.Errorf("bet_service: rate limiter: %w", err)
		}
		if !allowed {
			return domain.PlacedBet{}, domain.ErrRateLimited
		}
	}

	req, err := manifold.NewPlaceBet(amount, contractID, opts)
	if err != nil {
		return domain.PlacedBet{}, fmt.Errorf("bet_service: %w", err)
	}

	outcome := manifold.OutcomeYes
	var limitProb *float64
	if opts != nil {
		if opts.Outcome != "" {
			outcome = opts.Outcome
		}
		limitProb = opts.LimitProb
	}

	now := time.Now().UTC()
	record := domain.PlacedBet{
		RecordID:   uuid.New().String(),
		ContractID: contractID,
		Outcome:    string(outcome),
		Amount:     amount,
		LimitProb:  limitProb,
		Status:     domain.BetStatusPending,
		PlacedAt:   now,
		UpdatedAt:  now,
	}
	if err := s.bets.Create(ctx, record); err != nil {
		return domain.PlacedBet{}, fmt.Errorf("bet_service: persist pending bet: %w", err)
	}

	resp, err := s.api.CreateBet(ctx, req)
	if err != nil {
		s.finish(ctx, &record, domain.BetStatusRejected, "", 0)
		return record, fmt.Errorf("bet_service: submit bet: %w", err)
	}

	if !resp.OK() {
		s.finish(ctx, &record, domain.BetStatusRejected, "", resp.StatusCode)
		s.logger.Warn("bet rejected",
			slog.String("record_id", record.RecordID),
			slog.String("contract_id", contractID),
			slog.Int("status", resp.StatusCode),
		)
		s.logAudit(ctx, "bet.rejected", record, resp.StatusCode)
		s.notifyEvent(ctx, notify.EventBetRejected, "Bet rejected",
			fmt.Sprintf("M%d on %s: HTTP %d", amount, contractID, resp.StatusCode))
		return record, nil
	}

	var placed manifold.Bet
	if err := resp.Decode(&placed); err != nil {
		// Accepted but undecodable; keep the record placed without a bet ID.
		s.logger.Warn("bet response undecodable",
			slog.String("record_id", record.RecordID),
			slog.String("error", err.Error()),
		)
	}

	s.finish(ctx, &record, domain.BetStatusPlaced, placed.ID, resp.StatusCode)
	record.Shares = placed.Shares
	record.ProbBefore = placed.ProbBefore
	record.ProbAfter = placed.ProbAfter

	s.logger.Info("bet placed",
		slog.String("record_id", record.RecordID),
		slog.String("bet_id", placed.ID),
		slog.String("contract_id", contractID),
		slog.Int("amount", amount),
	)
	s.logAudit(ctx, "bet.placed", record, resp.StatusCode)
	s.notifyEvent(ctx, notify.EventBetPlaced, "Bet placed",
		fmt.Sprintf("M%d %s on %s", amount, outcome, contractID))

	return record, nil
}

// CancelBet cancels an open limit order and updates the local record when one
// matches the given record ID.
func (s *BetService) CancelBet(ctx context.Context, recordID string) error {
	record, err := s.bets.GetByRecordID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("bet_service: load bet %s: %w", recordID, err)
	}
	if record.BetID == "" {
		return fmt.Errorf("bet_service: bet %s has no API bet id: %w", recordID, domain.ErrNotFound)
	}

	resp, err := s.api.CancelBet(ctx, record.BetID)
	if err != nil {
		return fmt.Errorf("bet_service: cancel bet %s: %w", record.BetID, err)
	}
	if !resp.OK() {
		return fmt.Errorf("bet_service: cancel bet %s: status %d", record.BetID, resp.StatusCode)
	}

	if err := s.bets.UpdateStatus(ctx, recordID, domain.BetStatusCancelled, record.BetID, resp.StatusCode); err != nil {
		return fmt.Errorf("bet_service: record cancellation: %w", err)
	}
	s.logAudit(ctx, "bet.cancelled", record, resp.StatusCode)
	return nil
}

func (s *BetService) finish(ctx context.Context, record *domain.PlacedBet, status domain.BetStatus, betID string, code int) {
	record.Status = status
	record.BetID = betID
	record.StatusCode = code
	record.UpdatedAt = time.Now().UTC()

	if err := s.bets.UpdateStatus(ctx, record.RecordID, status, betID, code); err != nil {
		s.logger.Error("could not update bet status",
			slog.String("record_id", record.RecordID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BetService) logAudit(ctx context.Context, event string, record domain.PlacedBet, code int) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, event, map[string]any{
		"record_id":   record.RecordID,
		"bet_id":      record.BetID,
		"contract_id": record.ContractID,
		"outcome":     record.Outcome,
		"amount":      record.Amount,
		"status_code": code,
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}
}

func (s *BetService) notifyEvent(ctx context.Context, event, title, message string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, event, title, message)
}
