package manifold

import (
	"testing"
	"time"
)

func intPtr(i int) *int             { return &i }
func floatPtr(f float64) *float64   { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func TestPayloadOmitsAbsentValues(t *testing.T) {
	p := Payload{}
	p.setString("present", "x")
	p.setString("empty", "")
	p.setIntPtr("limit", nil)
	p.setFloatPtr("prob", nil)
	p.setTime("when", nil)
	p.setStrings("ids", nil)
	p.setStrings("tags", []string{}) // explicit empty means absent too
	p.setBool("flag", false)

	if len(p) != 1 {
		t.Fatalf("payload has %d fields, want 1: %v", len(p), p)
	}
	if p["present"] != "x" {
		t.Errorf("present = %v, want x", p["present"])
	}
}

func TestPayloadTimeIsEpochMillis(t *testing.T) {
	// The same instant in different zones must serialize identically.
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	est := utc.In(time.FixedZone("EST", -5*3600))

	p1 := Payload{}
	p1.setTime("closeTime", &utc)
	p2 := Payload{}
	p2.setTime("closeTime", &est)

	want := utc.UnixMilli()
	if p1["closeTime"] != want {
		t.Errorf("closeTime = %v, want %d", p1["closeTime"], want)
	}
	if p1["closeTime"] != p2["closeTime"] {
		t.Errorf("same instant encoded differently: %v vs %v", p1["closeTime"], p2["closeTime"])
	}
}

func TestPayloadEncodeJSONDeterministic(t *testing.T) {
	build := func() Payload {
		return Payload{"b": 2, "a": "x", "c": true}
	}
	first, err := build().EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := build().EncodeJSON()
		if err != nil {
			t.Fatalf("EncodeJSON: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("encoding not deterministic: %s vs %s", first, again)
		}
	}
	if string(first) != `{"a":"x","b":2,"c":true}` {
		t.Errorf("EncodeJSON = %s", first)
	}
}

func TestPayloadEncodeJSONNil(t *testing.T) {
	var p Payload
	b, err := p.EncodeJSON()
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("nil payload = %s, want {}", b)
	}
}

func TestPayloadValues(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := Payload{}
	p.setIntPtr("limit", intPtr(50))
	p.setString("sort", "created-time")
	p.setFloatPtr("prob", floatPtr(0.25))
	p.setTime("beforeTime", &when)
	p.setBool("remove", true)

	vals := p.Values()
	tests := []struct{ key, want string }{
		{"limit", "50"},
		{"sort", "created-time"},
		{"prob", "0.25"},
		{"beforeTime", "1767323045000"},
		{"remove", "true"},
	}
	for _, tt := range tests {
		if got := vals.Get(tt.key); got != tt.want {
			t.Errorf("Values()[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}
	if len(vals) != len(tests) {
		t.Errorf("Values() has %d keys, want %d", len(vals), len(tests))
	}
}

func TestDescriptionTagging(t *testing.T) {
	tests := []struct {
		name      string
		desc      *Description
		wantField string
	}{
		{"plain", PlainDescription("hello"), "description"},
		{"html", &Description{Text: "<p>hi</p>", Format: DescriptionHTML}, "descriptionHTML"},
		{"markdown", &Description{Text: "# hi", Format: DescriptionMarkdown}, "descriptionMarkdown"},
		{"json", &Description{Text: `{"type":"doc"}`, Format: DescriptionJSON}, "descriptionJSON"},
	}

	for _, tt := range tests {
		p := Payload{}
		tt.desc.applyTo(p)
		if len(p) != 1 {
			t.Errorf("%s: payload has %d fields, want 1", tt.name, len(p))
			continue
		}
		if got := p[tt.wantField]; got != tt.desc.Text {
			t.Errorf("%s: field %q = %v, want %q", tt.name, tt.wantField, got, tt.desc.Text)
		}
	}

	// A nil description contributes nothing.
	p := Payload{}
	var none *Description
	none.applyTo(p)
	if len(p) != 0 {
		t.Errorf("nil description added fields: %v", p)
	}
}

func TestCommentBodyTagging(t *testing.T) {
	tests := []struct {
		body      *CommentBody
		wantField string
	}{
		{PlainComment("plain"), "description"},
		{&CommentBody{Text: "tiptap", Format: CommentContent}, "content"},
		{&CommentBody{Text: "<b>x</b>", Format: CommentHTML}, "html"},
		{&CommentBody{Text: "*x*", Format: CommentMarkdown}, "markdown"},
	}
	for _, tt := range tests {
		p := Payload{}
		tt.body.applyTo(p)
		if got := p[tt.wantField]; got != tt.body.Text {
			t.Errorf("field %q = %v, want %q", tt.wantField, got, tt.body.Text)
		}
	}
}
