package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusOpen     MarketStatus = "open"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
)

// Market represents a Manifold prediction market.
type Market struct {
	ID              string
	Question        string
	Slug            string
	URL             string
	OutcomeType     string // BINARY, MULTIPLE_CHOICE, PSEUDO_NUMERIC, POLL, BOUNTIED_QUESTION
	Mechanism       string // cpmm-1, cpmm-multi-1, dpm-2
	CreatorID       string
	CreatorUsername string
	Probability     float64 // binary markets only
	TotalLiquidity  float64
	Volume          float64
	Volume24h       float64
	UniqueBettors   int
	Status          MarketStatus
	Resolution      string
	CloseTime       *time.Time
	ResolutionTime  *time.Time
	LastBetTime     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
