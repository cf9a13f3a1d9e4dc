package manifold

import (
	"errors"
	"testing"
)

func TestParseOutcomeType(t *testing.T) {
	tests := []struct {
		in      string
		want    OutcomeType
		wantErr bool
	}{
		{"BINARY", OutcomeTypeBinary, false},
		{"PSEUDO_NUMERIC", OutcomeTypePseudoNumeric, false},
		{"MULTIPLE_CHOICE", OutcomeTypeMultipleChoice, false},
		{"POLL", OutcomeTypePoll, false},
		{"BOUNTIED_QUESTION", OutcomeTypeBountiedQuestion, false},
		{"binary", "", true},
		{"NUMERIC", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOutcomeType(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidEnumValue) {
				t.Errorf("ParseOutcomeType(%q) error = %v, want ErrInvalidEnumValue", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOutcomeType(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutcomeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAddAnswersModeDistinctTokens(t *testing.T) {
	// All three modes must keep their own wire token; ANYONE in particular
	// must not alias DISABLED.
	tests := []struct {
		in   string
		want AddAnswersMode
	}{
		{"DISABLED", AddAnswersDisabled},
		{"ONLY_CREATORS", AddAnswersOnlyCreators},
		{"ANYONE", AddAnswersAnyone},
	}

	seen := map[AddAnswersMode]string{}
	for _, tt := range tests {
		got, err := ParseAddAnswersMode(tt.in)
		if err != nil {
			t.Fatalf("ParseAddAnswersMode(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseAddAnswersMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if prev, dup := seen[got]; dup {
			t.Errorf("mode %q and %q share wire token %q", prev, tt.in, got)
		}
		seen[got] = tt.in
	}

	if _, err := ParseAddAnswersMode("EVERYONE"); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("ParseAddAnswersMode(EVERYONE) error = %v, want ErrInvalidEnumValue", err)
	}
}

func TestParseBetOutcome(t *testing.T) {
	if got, err := ParseBetOutcome("YES"); err != nil || got != OutcomeYes {
		t.Errorf("ParseBetOutcome(YES) = %q, %v", got, err)
	}
	if got, err := ParseBetOutcome("NO"); err != nil || got != OutcomeNo {
		t.Errorf("ParseBetOutcome(NO) = %q, %v", got, err)
	}
	if _, err := ParseBetOutcome("yes"); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("ParseBetOutcome(yes) error = %v, want ErrInvalidEnumValue", err)
	}
}

func TestParseSearchFilter(t *testing.T) {
	valid := []string{"all", "open", "closed", "resolved", "closing-this-month", "closing-next-month"}
	for _, in := range valid {
		if _, err := ParseSearchFilter(in); err != nil {
			t.Errorf("ParseSearchFilter(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseSearchFilter("closing-soon"); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("ParseSearchFilter(closing-soon) error = %v, want ErrInvalidEnumValue", err)
	}
}

func TestParseBinaryResolution(t *testing.T) {
	for _, in := range []string{"YES", "NO", "MKT", "CANCEL"} {
		if _, err := ParseBinaryResolution(in); err != nil {
			t.Errorf("ParseBinaryResolution(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseBinaryResolution("N/A"); !errors.Is(err, ErrInvalidEnumValue) {
		t.Errorf("ParseBinaryResolution(N/A) error = %v, want ErrInvalidEnumValue", err)
	}
}
