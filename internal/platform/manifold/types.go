package manifold

import (
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// LiteMarket is a market as returned by the /markets listing and /market
// endpoints. The transport client never decodes responses; callers that want
// typed access decode into this themselves. Timestamps are epoch
// milliseconds, matching the request encoding.
type LiteMarket struct {
	ID                    string   `json:"id"`
	CreatorID             string   `json:"creatorId"`
	CreatorUsername       string   `json:"creatorUsername"`
	CreatorName           string   `json:"creatorName"`
	Question              string   `json:"question"`
	Slug                  string   `json:"slug"`
	URL                   string   `json:"url"`
	OutcomeType           string   `json:"outcomeType"`
	Mechanism             string   `json:"mechanism"`
	Probability           float64  `json:"probability"`
	TotalLiquidity        float64  `json:"totalLiquidity"`
	Volume                float64  `json:"volume"`
	Volume24Hours         float64  `json:"volume24Hours"`
	UniqueBettorCount     int      `json:"uniqueBettorCount"`
	IsResolved            bool     `json:"isResolved"`
	Resolution            string   `json:"resolution,omitempty"`
	ResolutionProbability *float64 `json:"resolutionProbability,omitempty"`
	CreatedTime           int64    `json:"createdTime"`
	CloseTime             *int64   `json:"closeTime,omitempty"`
	ResolutionTime        *int64   `json:"resolutionTime,omitempty"`
	LastUpdatedTime       *int64   `json:"lastUpdatedTime,omitempty"`
	LastBetTime           *int64   `json:"lastBetTime,omitempty"`
}

// Bet is a bet as returned by the /bet and /bets endpoints.
type Bet struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	ContractID  string   `json:"contractId"`
	Outcome     string   `json:"outcome"`
	Amount      float64  `json:"amount"`
	Shares      float64  `json:"shares"`
	LimitProb   *float64 `json:"limitProb,omitempty"`
	ProbBefore  float64  `json:"probBefore"`
	ProbAfter   float64  `json:"probAfter"`
	IsFilled    *bool    `json:"isFilled,omitempty"`
	IsCancelled *bool    `json:"isCancelled,omitempty"`
	CreatedTime int64    `json:"createdTime"`
}

// ToDomainMarket converts a LiteMarket to a domain.Market.
func (m *LiteMarket) ToDomainMarket() domain.Market {
	market := domain.Market{
		ID:              m.ID,
		Question:        m.Question,
		Slug:            m.Slug,
		URL:             m.URL,
		OutcomeType:     m.OutcomeType,
		Mechanism:       m.Mechanism,
		CreatorID:       m.CreatorID,
		CreatorUsername: m.CreatorUsername,
		Probability:     m.Probability,
		TotalLiquidity:  m.TotalLiquidity,
		Volume:          m.Volume,
		Volume24h:       m.Volume24Hours,
		UniqueBettors:   m.UniqueBettorCount,
		Resolution:      m.Resolution,
		CreatedAt:       time.UnixMilli(m.CreatedTime),
		UpdatedAt:       time.UnixMilli(m.CreatedTime),
	}

	market.CloseTime = millisToTime(m.CloseTime)
	market.ResolutionTime = millisToTime(m.ResolutionTime)
	market.LastBetTime = millisToTime(m.LastBetTime)
	if m.LastUpdatedTime != nil {
		market.UpdatedAt = time.UnixMilli(*m.LastUpdatedTime)
	}

	switch {
	case m.IsResolved:
		market.Status = domain.MarketStatusResolved
	case market.CloseTime != nil && market.CloseTime.Before(time.Now()):
		market.Status = domain.MarketStatusClosed
	default:
		market.Status = domain.MarketStatusOpen
	}

	return market
}

// ToDomainBet converts an API Bet to the bot's audit record. Status is left
// for the caller, who knows how the request went.
func (b *Bet) ToDomainBet() domain.PlacedBet {
	bet := domain.PlacedBet{
		BetID:      b.ID,
		ContractID: b.ContractID,
		Outcome:    b.Outcome,
		Amount:     int(b.Amount),
		LimitProb:  b.LimitProb,
		Shares:     b.Shares,
		ProbBefore: b.ProbBefore,
		ProbAfter:  b.ProbAfter,
		PlacedAt:   time.UnixMilli(b.CreatedTime),
		UpdatedAt:  time.UnixMilli(b.CreatedTime),
	}
	return bet
}

func millisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}
