package manifold

import (
	"errors"
	"testing"
	"time"
)

func TestNewBinaryMarketProbabilityBounds(t *testing.T) {
	tests := []struct {
		prob    int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{50, false},
		{99, false},
		{100, true},
		{-5, true},
	}

	for _, tt := range tests {
		_, err := NewBinaryMarket("Will it rain?", tt.prob, nil)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("NewBinaryMarket(prob=%d) error = %v, want ErrValidation", tt.prob, err)
			}
		} else if err != nil {
			t.Errorf("NewBinaryMarket(prob=%d) unexpected error: %v", tt.prob, err)
		}
	}
}

func TestNewBinaryMarketRequiresQuestion(t *testing.T) {
	if _, err := NewBinaryMarket("", 50, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty question error = %v, want ErrValidation", err)
	}
}

func TestBinaryMarketPayload(t *testing.T) {
	closeTime := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
	m, err := NewBinaryMarket("Will it rain?", 40, &MarketOpts{
		CloseTime:   &closeTime,
		Description: &Description{Text: "<p>details</p>", Format: DescriptionHTML},
		Visibility:  VisibilityUnlisted,
		GroupIDs:    []string{"g1", "g2"},
	})
	if err != nil {
		t.Fatalf("NewBinaryMarket: %v", err)
	}

	p := m.Payload()
	if p["outcomeType"] != "BINARY" {
		t.Errorf("outcomeType = %v, want BINARY", p["outcomeType"])
	}
	if p["question"] != "Will it rain?" {
		t.Errorf("question = %v", p["question"])
	}
	if p["initialProb"] != 40 {
		t.Errorf("initialProb = %v, want 40", p["initialProb"])
	}
	if p["closeTime"] != closeTime.UnixMilli() {
		t.Errorf("closeTime = %v, want %d", p["closeTime"], closeTime.UnixMilli())
	}
	if p["descriptionHTML"] != "<p>details</p>" {
		t.Errorf("descriptionHTML = %v", p["descriptionHTML"])
	}
	if _, ok := p["description"]; ok {
		t.Error("tagged description must not also emit a description field")
	}
	if p["visibility"] != "unlisted" {
		t.Errorf("visibility = %v, want unlisted", p["visibility"])
	}
}

func TestNewPseudoNumericMarketValidation(t *testing.T) {
	tests := []struct {
		name             string
		min, max, initial float64
		wantErr          bool
	}{
		{"valid", 0, 100, 50, false},
		{"initial at min", 0, 100, 0, false},
		{"initial at max", 0, 100, 100, false},
		{"min equals max", 10, 10, 10, true},
		{"min above max", 100, 0, 50, true},
		{"initial below range", 0, 100, -1, true},
		{"initial above range", 0, 100, 101, true},
	}

	for _, tt := range tests {
		_, err := NewPseudoNumericMarket("How many?", tt.min, tt.max, tt.initial, false, nil)
		if tt.wantErr && !errors.Is(err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestPseudoNumericMarketPayloadAlwaysSendsLogScale(t *testing.T) {
	m, err := NewPseudoNumericMarket("How many?", 1, 1000, 10, false, nil)
	if err != nil {
		t.Fatalf("NewPseudoNumericMarket: %v", err)
	}
	p := m.Payload()
	if got, ok := p["isLogScale"]; !ok || got != false {
		t.Errorf("isLogScale = %v (present=%v), want explicit false", got, ok)
	}
	if p["outcomeType"] != "PSEUDO_NUMERIC" {
		t.Errorf("outcomeType = %v", p["outcomeType"])
	}
}

func TestNewMultipleChoiceMarketValidation(t *testing.T) {
	if _, err := NewMultipleChoiceMarket("Pick one", []string{"only"}, AddAnswersDisabled, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("single answer error = %v, want ErrValidation", err)
	}
	if _, err := NewMultipleChoiceMarket("Pick one", []string{"a", ""}, AddAnswersDisabled, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty answer error = %v, want ErrValidation", err)
	}
	if _, err := NewMultipleChoiceMarket("Pick one", []string{"a", "b"}, "SOMETIMES", nil); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("bad mode error = %v, want ErrInvalidEnumValue", err)
	}

	m, err := NewMultipleChoiceMarket("Pick one", []string{"a", "b"}, AddAnswersAnyone, nil)
	if err != nil {
		t.Fatalf("NewMultipleChoiceMarket: %v", err)
	}
	p := m.Payload()
	if p["addAnswersMode"] != "ANYONE" {
		t.Errorf("addAnswersMode = %v, want ANYONE", p["addAnswersMode"])
	}
}

func TestPollMarketPayloadOmitsUnsetOptionals(t *testing.T) {
	m, err := NewPollMarket("Favorite color?", []string{"red", "blue"}, nil)
	if err != nil {
		t.Fatalf("NewPollMarket: %v", err)
	}
	p := m.Payload()
	for _, absent := range []string{"closeTime", "description", "visibility", "groupIds", "extraLiquidity"} {
		if _, ok := p[absent]; ok {
			t.Errorf("unset optional %q present in payload", absent)
		}
	}
	if p["outcomeType"] != "POLL" {
		t.Errorf("outcomeType = %v, want POLL", p["outcomeType"])
	}
}

func TestNewBountiedQuestionMarket(t *testing.T) {
	if _, err := NewBountiedQuestionMarket("Best answer?", 0, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("zero bounty error = %v, want ErrValidation", err)
	}
	m, err := NewBountiedQuestionMarket("Best answer?", 500, nil)
	if err != nil {
		t.Fatalf("NewBountiedQuestionMarket: %v", err)
	}
	if p := m.Payload(); p["totalBounty"] != 500 {
		t.Errorf("totalBounty = %v, want 500", p["totalBounty"])
	}
}

func TestNewMarketRejectsNegativeExtraLiquidity(t *testing.T) {
	_, err := NewBinaryMarket("Q?", 50, &MarketOpts{ExtraLiquidity: intPtr(-10)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("negative extra liquidity error = %v, want ErrValidation", err)
	}
}

func TestNewMarketRejectsUnknownDescriptionFormat(t *testing.T) {
	_, err := NewBinaryMarket("Q?", 50, &MarketOpts{
		Description: &Description{Text: "x", Format: "descriptionYAML"},
	})
	if !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("unknown description format error = %v, want ErrInvalidEnumValue", err)
	}

	// The declared formats and plain text still pass.
	for _, f := range []DescriptionFormat{"", DescriptionHTML, DescriptionMarkdown, DescriptionJSON} {
		if _, err := NewBinaryMarket("Q?", 50, &MarketOpts{
			Description: &Description{Text: "x", Format: f},
		}); err != nil {
			t.Errorf("format %q: unexpected error %v", f, err)
		}
	}
}
