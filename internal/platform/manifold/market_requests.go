package manifold

import (
	"fmt"
	"time"
)

// MarketOpts carries the optional fields shared by every market-creation
// variant. A nil *MarketOpts means all defaults; absent fields are omitted
// from the wire payload entirely.
type MarketOpts struct {
	// CloseTime is when trading stops. Nil leaves the platform default.
	CloseTime *time.Time
	// Description attaches a plain or format-tagged description.
	Description *Description
	// Visibility defaults to public on the platform side when empty.
	Visibility Visibility
	// GroupIDs tags the market with existing topics. An empty slice is
	// treated the same as nil: the field is omitted from the payload.
	GroupIDs []string
	// ExtraLiquidity adds subsidy beyond the creation cost.
	ExtraLiquidity *int
}

// marketCommon holds the validated shared portion of a creation request.
type marketCommon struct {
	question string
	opts     MarketOpts
}

func newMarketCommon(question string, opts *MarketOpts) (marketCommon, error) {
	if question == "" {
		return marketCommon{}, fmt.Errorf("manifold: create market: question is required: %w", ErrValidation)
	}
	c := marketCommon{question: question}
	if opts != nil {
		c.opts = *opts
	}
	if c.opts.ExtraLiquidity != nil && *c.opts.ExtraLiquidity < 0 {
		return marketCommon{}, fmt.Errorf("manifold: create market: extra liquidity %d is negative: %w",
			*c.opts.ExtraLiquidity, ErrValidation)
	}
	if v := c.opts.Visibility; v != "" {
		if _, err := ParseVisibility(string(v)); err != nil {
			return marketCommon{}, err
		}
	}
	if d := c.opts.Description; d != nil && d.Format != "" {
		if _, err := ParseDescriptionFormat(string(d.Format)); err != nil {
			return marketCommon{}, err
		}
	}
	return c, nil
}

// apply writes the shared fields plus the family discriminator into p.
func (c marketCommon) apply(p Payload, outcome OutcomeType) {
	p.set("outcomeType", string(outcome))
	p.set("question", c.question)
	p.setTime("closeTime", c.opts.CloseTime)
	c.opts.Description.applyTo(p)
	p.setString("visibility", string(c.opts.Visibility))
	p.setStrings("groupIds", c.opts.GroupIDs)
	p.setIntPtr("extraLiquidity", c.opts.ExtraLiquidity)
}

// CreateMarketRequest is implemented by the five market-creation variants and
// nothing else.
type CreateMarketRequest interface {
	Request
	outcomeType() OutcomeType
}

// BinaryMarket creates a YES/NO market.
type BinaryMarket struct {
	marketCommon
	initialProb int
}

// NewBinaryMarket validates a binary creation request. The initial
// probability is a whole percentage strictly between 0 and 100.
func NewBinaryMarket(question string, initialProb int, opts *MarketOpts) (*BinaryMarket, error) {
	common, err := newMarketCommon(question, opts)
	if err != nil {
		return nil, err
	}
	if initialProb < 1 || initialProb > 99 {
		return nil, fmt.Errorf("manifold: create binary market: initial probability %d outside 1..99: %w",
			initialProb, ErrValidation)
	}
	return &BinaryMarket{marketCommon: common, initialProb: initialProb}, nil
}

func (m *BinaryMarket) outcomeType() OutcomeType { return OutcomeTypeBinary }

// Payload renders the wire form of the request.
func (m *BinaryMarket) Payload() Payload {
	p := Payload{}
	m.apply(p, m.outcomeType())
	p.set("initialProb", m.initialProb)
	return p
}

// PseudoNumericMarket creates a numeric-range market.
type PseudoNumericMarket struct {
	marketCommon
	min          float64
	max          float64
	initialValue float64
	isLogScale   bool
}

// NewPseudoNumericMarket validates a numeric creation request: the range must
// be non-empty and the initial value must lie within it.
func NewPseudoNumericMarket(question string, min, max, initialValue float64, isLogScale bool, opts *MarketOpts) (*PseudoNumericMarket, error) {
	common, err := newMarketCommon(question, opts)
	if err != nil {
		return nil, err
	}
	if min >= max {
		return nil, fmt.Errorf("manifold: create numeric market: min %v is not below max %v: %w",
			min, max, ErrValidation)
	}
	if initialValue < min || initialValue > max {
		return nil, fmt.Errorf("manifold: create numeric market: initial value %v outside [%v, %v]: %w",
			initialValue, min, max, ErrValidation)
	}
	return &PseudoNumericMarket{
		marketCommon: common,
		min:          min,
		max:          max,
		initialValue: initialValue,
		isLogScale:   isLogScale,
	}, nil
}

func (m *PseudoNumericMarket) outcomeType() OutcomeType { return OutcomeTypePseudoNumeric }

// Payload renders the wire form of the request. isLogScale is always sent;
// false is meaningful here, not a default to elide.
func (m *PseudoNumericMarket) Payload() Payload {
	p := Payload{}
	m.apply(p, m.outcomeType())
	p.set("min", m.min)
	p.set("max", m.max)
	p.set("initialValue", m.initialValue)
	p.set("isLogScale", m.isLogScale)
	return p
}

// MultipleChoiceMarket creates a market with a fixed or extensible answer set.
type MultipleChoiceMarket struct {
	marketCommon
	answers        []string
	addAnswersMode AddAnswersMode
}

// NewMultipleChoiceMarket validates a multiple-choice creation request: at
// least two non-empty answers and a recognized add-answers mode.
func NewMultipleChoiceMarket(question string, answers []string, mode AddAnswersMode, opts *MarketOpts) (*MultipleChoiceMarket, error) {
	common, err := newMarketCommon(question, opts)
	if err != nil {
		return nil, err
	}
	if err := validateAnswers("create multiple-choice market", answers); err != nil {
		return nil, err
	}
	if _, err := ParseAddAnswersMode(string(mode)); err != nil {
		return nil, err
	}
	return &MultipleChoiceMarket{
		marketCommon:   common,
		answers:        answers,
		addAnswersMode: mode,
	}, nil
}

func (m *MultipleChoiceMarket) outcomeType() OutcomeType { return OutcomeTypeMultipleChoice }

// Payload renders the wire form of the request.
func (m *MultipleChoiceMarket) Payload() Payload {
	p := Payload{}
	m.apply(p, m.outcomeType())
	p.set("answers", m.answers)
	p.set("addAnswersMode", string(m.addAnswersMode))
	return p
}

// PollMarket creates a non-tradeable opinion poll.
type PollMarket struct {
	marketCommon
	answers []string
}

// NewPollMarket validates a poll creation request.
func NewPollMarket(question string, answers []string, opts *MarketOpts) (*PollMarket, error) {
	common, err := newMarketCommon(question, opts)
	if err != nil {
		return nil, err
	}
	if err := validateAnswers("create poll", answers); err != nil {
		return nil, err
	}
	return &PollMarket{marketCommon: common, answers: answers}, nil
}

func (m *PollMarket) outcomeType() OutcomeType { return OutcomeTypePoll }

// Payload renders the wire form of the request.
func (m *PollMarket) Payload() Payload {
	p := Payload{}
	m.apply(p, m.outcomeType())
	p.set("answers", m.answers)
	return p
}

// BountiedQuestionMarket creates a bountied question.
type BountiedQuestionMarket struct {
	marketCommon
	totalBounty int
}

// NewBountiedQuestionMarket validates a bountied-question creation request.
func NewBountiedQuestionMarket(question string, totalBounty int, opts *MarketOpts) (*BountiedQuestionMarket, error) {
	common, err := newMarketCommon(question, opts)
	if err != nil {
		return nil, err
	}
	if totalBounty <= 0 {
		return nil, fmt.Errorf("manifold: create bountied question: total bounty %d is not positive: %w",
			totalBounty, ErrValidation)
	}
	return &BountiedQuestionMarket{marketCommon: common, totalBounty: totalBounty}, nil
}

func (m *BountiedQuestionMarket) outcomeType() OutcomeType { return OutcomeTypeBountiedQuestion }

// Payload renders the wire form of the request.
func (m *BountiedQuestionMarket) Payload() Payload {
	p := Payload{}
	m.apply(p, m.outcomeType())
	p.set("totalBounty", m.totalBounty)
	return p
}

func validateAnswers(op string, answers []string) error {
	if len(answers) < 2 {
		return fmt.Errorf("manifold: %s: need at least 2 answers, got %d: %w", op, len(answers), ErrValidation)
	}
	for i, a := range answers {
		if a == "" {
			return fmt.Errorf("manifold: %s: answer %d is empty: %w", op, i, ErrValidation)
		}
	}
	return nil
}
