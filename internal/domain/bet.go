package domain

import "time"

// BetStatus is the lifecycle state of a bet this bot placed.
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"   // submitted, no response recorded yet
	BetStatusPlaced    BetStatus = "placed"    // accepted by the API
	BetStatusRejected  BetStatus = "rejected"  // non-2xx response
	BetStatusCancelled BetStatus = "cancelled" // open limit order cancelled
)

// PlacedBet is the audit record of a bet submitted through the bot. RecordID
// is generated locally; BetID is assigned by the API once accepted.
type PlacedBet struct {
	RecordID   string
	BetID      string
	ContractID string
	Outcome    string
	Amount     int
	LimitProb  *float64
	Shares     float64
	ProbBefore float64
	ProbAfter  float64
	Status     BetStatus
	StatusCode int
	PlacedAt   time.Time
	UpdatedAt  time.Time
}
