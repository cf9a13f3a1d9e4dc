package manifold

import (
	"fmt"
	"math"
	"time"
)

// BetOpts carries the optional fields of a bet placement.
type BetOpts struct {
	// Outcome defaults to YES when empty.
	Outcome BetOutcome
	// LimitProb turns the bet into a limit order at this probability. The
	// value is rounded to two decimals before serialization.
	LimitProb *float64
	// ExpiresAt expires an unfilled limit order at this instant.
	ExpiresAt *time.Time
}

// PlaceBet is a validated bet placement.
type PlaceBet struct {
	amount     int
	contractID string
	outcome    BetOutcome
	limitProb  *float64
	expiresAt  *time.Time
}

// NewPlaceBet validates a bet on the given contract. Amount is in mana and
// must be positive. A limit probability must round to a finite two-decimal
// value strictly between 0 and 1.
func NewPlaceBet(amount int, contractID string, opts *BetOpts) (*PlaceBet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("manifold: place bet: amount %d is not positive: %w", amount, ErrValidation)
	}
	if contractID == "" {
		return nil, fmt.Errorf("manifold: place bet: contract id is required: %w", ErrValidation)
	}
	b := &PlaceBet{amount: amount, contractID: contractID, outcome: OutcomeYes}
	if opts == nil {
		return b, nil
	}
	if opts.Outcome != "" {
		outcome, err := ParseBetOutcome(string(opts.Outcome))
		if err != nil {
			return nil, err
		}
		b.outcome = outcome
	}
	if opts.LimitProb != nil {
		rounded := math.Round(*opts.LimitProb*100) / 100
		if math.IsNaN(rounded) || math.IsInf(rounded, 0) || rounded <= 0 || rounded >= 1 {
			return nil, fmt.Errorf("manifold: place bet: limit probability %v outside (0, 1): %w",
				*opts.LimitProb, ErrValidation)
		}
		b.limitProb = &rounded
	}
	b.expiresAt = opts.ExpiresAt
	return b, nil
}

// Payload renders the wire form of the request.
func (b *PlaceBet) Payload() Payload {
	p := Payload{}
	p.set("amount", b.amount)
	p.set("contractId", b.contractID)
	p.set("outcome", string(b.outcome))
	p.setFloatPtr("limitprob", b.limitProb)
	p.setTime("expiresAt", b.expiresAt)
	return p
}

// SellShares sells shares in a market position. Every field is optional: the
// zero value sells the whole position and is valid as-is, so there is no
// constructor.
type SellShares struct {
	// Outcome restricts the sale to one side of the position.
	Outcome BetOutcome
	// Shares is how many shares to sell; absent means all.
	Shares *int
	// AnswerID selects the answer on multi-answer markets.
	AnswerID string
}

// Payload renders the wire form of the request.
func (s SellShares) Payload() Payload {
	p := Payload{}
	p.setString("outcome", string(s.Outcome))
	p.setIntPtr("shares", s.Shares)
	p.setString("answerId", s.AnswerID)
	return p
}

// SellSharesDPM sells shares on a legacy DPM market. The zero value is valid.
type SellSharesDPM struct {
	ContractID string
	BetID      string
}

// Payload renders the wire form of the request.
func (s SellSharesDPM) Payload() Payload {
	p := Payload{}
	p.setString("contractId", s.ContractID)
	p.setString("betId", s.BetID)
	return p
}

// AwardBounty pays part of a bountied question's bounty to a comment.
type AwardBounty struct {
	amount    int
	commentID string
}

// NewAwardBounty validates a bounty award.
func NewAwardBounty(amount int, commentID string) (*AwardBounty, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("manifold: award bounty: amount %d is not positive: %w", amount, ErrValidation)
	}
	if commentID == "" {
		return nil, fmt.Errorf("manifold: award bounty: comment id is required: %w", ErrValidation)
	}
	return &AwardBounty{amount: amount, commentID: commentID}, nil
}

// Payload renders the wire form of the request.
func (a *AwardBounty) Payload() Payload {
	return Payload{"amount": a.amount, "commentId": a.commentID}
}

// ModifyGroup adds a market to a topic, or removes it when remove is set.
type ModifyGroup struct {
	groupID string
	remove  bool
}

// NewModifyGroup validates a group membership change.
func NewModifyGroup(groupID string, remove bool) (*ModifyGroup, error) {
	if groupID == "" {
		return nil, fmt.Errorf("manifold: modify group: group id is required: %w", ErrValidation)
	}
	return &ModifyGroup{groupID: groupID, remove: remove}, nil
}

// Payload renders the wire form of the request. The remove flag is omitted
// when false, matching the endpoint's default.
func (m *ModifyGroup) Payload() Payload {
	p := Payload{"groupId": m.groupID}
	p.setBool("remove", m.remove)
	return p
}

// CreateComment posts a comment on a market.
type CreateComment struct {
	contractID string
	body       *CommentBody
}

// NewCreateComment validates a comment on the given contract.
func NewCreateComment(contractID string, body *CommentBody) (*CreateComment, error) {
	if contractID == "" {
		return nil, fmt.Errorf("manifold: create comment: contract id is required: %w", ErrValidation)
	}
	if body == nil || body.Text == "" {
		return nil, fmt.Errorf("manifold: create comment: body is required: %w", ErrValidation)
	}
	if body.Format != "" {
		if _, err := ParseCommentFormat(string(body.Format)); err != nil {
			return nil, err
		}
	}
	return &CreateComment{contractID: contractID, body: body}, nil
}

// Payload renders the wire form of the request.
func (c *CreateComment) Payload() Payload {
	p := Payload{"contractId": c.contractID}
	c.body.applyTo(p)
	return p
}

// ResolveRequest is implemented by the three resolution shapes and nothing
// else.
type ResolveRequest interface {
	Request
	resolveRequest()
}

// ResolveBinary resolves a binary market.
type ResolveBinary struct {
	outcome        BinaryResolution
	probabilityInt *int
}

// NewResolveBinary validates a binary resolution. probabilityInt is the
// resolution probability for MKT outcomes; nil omits it.
func NewResolveBinary(outcome BinaryResolution, probabilityInt *int) (*ResolveBinary, error) {
	if _, err := ParseBinaryResolution(string(outcome)); err != nil {
		return nil, err
	}
	if probabilityInt != nil && (*probabilityInt < 0 || *probabilityInt > 100) {
		return nil, fmt.Errorf("manifold: resolve binary: probability %d outside 0..100: %w",
			*probabilityInt, ErrInvalidResolution)
	}
	return &ResolveBinary{outcome: outcome, probabilityInt: probabilityInt}, nil
}

func (r *ResolveBinary) resolveRequest() {}

// Payload renders the wire form of the request.
func (r *ResolveBinary) Payload() Payload {
	p := Payload{"outcome": string(r.outcome)}
	p.setIntPtr("probabilityInt", r.probabilityInt)
	return p
}

// Allocation assigns a percentage of a multiple-choice resolution to one
// answer.
type Allocation struct {
	Answer string
	Pct    int
}

// ResolveMultipleChoice resolves a multiple-choice market. The outcome is
// either MKT/CANCEL or the index of the winning answer; the two constructors
// cover the two shapes.
type ResolveMultipleChoice struct {
	outcome     any
	allocations []Allocation
}

// NewResolveMultipleChoice resolves to market probabilities or cancels, with
// an optional explicit split across answers.
func NewResolveMultipleChoice(outcome ChoiceResolutionOutcome, allocations []Allocation) (*ResolveMultipleChoice, error) {
	if _, err := ParseChoiceResolutionOutcome(string(outcome)); err != nil {
		return nil, err
	}
	if err := validateAllocations(allocations); err != nil {
		return nil, err
	}
	return &ResolveMultipleChoice{outcome: string(outcome), allocations: allocations}, nil
}

// NewResolveAnswer resolves a multiple-choice market to the answer at the
// given index.
func NewResolveAnswer(index int, allocations []Allocation) (*ResolveMultipleChoice, error) {
	if index < 0 {
		return nil, fmt.Errorf("manifold: resolve answer: index %d is negative: %w", index, ErrInvalidResolution)
	}
	if err := validateAllocations(allocations); err != nil {
		return nil, err
	}
	return &ResolveMultipleChoice{outcome: index, allocations: allocations}, nil
}

// validateAllocations checks an optional allocation list: when present it
// must be non-empty, every percentage positive, and the percentages must sum
// to exactly 100.
func validateAllocations(allocations []Allocation) error {
	if allocations == nil {
		return nil
	}
	if len(allocations) == 0 {
		return fmt.Errorf("manifold: resolve: allocations present but empty: %w", ErrInvalidResolution)
	}
	sum := 0
	for i, a := range allocations {
		if a.Answer == "" {
			return fmt.Errorf("manifold: resolve: allocation %d has no answer: %w", i, ErrInvalidResolution)
		}
		if a.Pct <= 0 {
			return fmt.Errorf("manifold: resolve: allocation %d pct %d is not positive: %w",
				i, a.Pct, ErrInvalidResolution)
		}
		sum += a.Pct
	}
	if sum != 100 {
		return fmt.Errorf("manifold: resolve: allocation percentages sum to %d, want 100: %w",
			sum, ErrInvalidResolution)
	}
	return nil
}

func (r *ResolveMultipleChoice) resolveRequest() {}

// Payload renders the wire form of the request. Allocations reduce to plain
// {answer, pct} mappings.
func (r *ResolveMultipleChoice) Payload() Payload {
	p := Payload{"outcome": r.outcome}
	if r.allocations != nil {
		resolutions := make([]map[string]any, len(r.allocations))
		for i, a := range r.allocations {
			resolutions[i] = map[string]any{"answer": a.Answer, "pct": a.Pct}
		}
		p.set("resolutions", resolutions)
	}
	return p
}

// ResolveNumeric resolves a pseudo-numeric market to a bucket, optionally
// with the exact value, or cancels it.
type ResolveNumeric struct {
	outcome        any
	value          *float64
	probabilityInt *float64
}

// NewResolveNumeric resolves to the numeric bucket at the given index. When
// value is supplied, probabilityInt is required: the value's position within
// the market range (log-scaled when the market is).
func NewResolveNumeric(bucket int, value, probabilityInt *float64) (*ResolveNumeric, error) {
	if bucket < 0 {
		return nil, fmt.Errorf("manifold: resolve numeric: bucket %d is negative: %w", bucket, ErrInvalidResolution)
	}
	if value != nil && probabilityInt == nil {
		return nil, fmt.Errorf("manifold: resolve numeric: value given without probability: %w", ErrInvalidResolution)
	}
	return &ResolveNumeric{outcome: bucket, value: value, probabilityInt: probabilityInt}, nil
}

// NewResolveNumericCancel cancels a pseudo-numeric market.
func NewResolveNumericCancel() *ResolveNumeric {
	return &ResolveNumeric{outcome: string(ResolveCancel)}
}

func (r *ResolveNumeric) resolveRequest() {}

// Payload renders the wire form of the request.
func (r *ResolveNumeric) Payload() Payload {
	p := Payload{"outcome": r.outcome}
	p.setFloatPtr("value", r.value)
	p.setFloatPtr("probabilityInt", r.probabilityInt)
	return p
}
