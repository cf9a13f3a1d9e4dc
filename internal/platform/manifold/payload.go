package manifold

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Payload is the wire form of a request: the exact set of fields that will be
// serialized, with absent optionals already omitted. Every request family
// builds its Payload through the typed setters below so that omission,
// enum-to-token conversion and timestamp encoding behave identically across
// the whole surface. JSON encoding is deterministic (encoding/json emits map
// keys in sorted order), so equal requests produce byte-identical bodies.
type Payload map[string]any

// set stores a value unconditionally.
func (p Payload) set(key string, v any) {
	p[key] = v
}

// setString stores s unless it is empty.
func (p Payload) setString(key, s string) {
	if s != "" {
		p[key] = s
	}
}

// setIntPtr stores *v when v is non-nil.
func (p Payload) setIntPtr(key string, v *int) {
	if v != nil {
		p[key] = *v
	}
}

// setInt64Ptr stores *v when v is non-nil.
func (p Payload) setInt64Ptr(key string, v *int64) {
	if v != nil {
		p[key] = *v
	}
}

// setFloatPtr stores *v when v is non-nil.
func (p Payload) setFloatPtr(key string, v *float64) {
	if v != nil {
		p[key] = *v
	}
}

// setBoolPtr stores *v when v is non-nil.
func (p Payload) setBoolPtr(key string, v *bool) {
	if v != nil {
		p[key] = *v
	}
}

// setBool stores v only when true. Flags on this API default to false and the
// wire form omits the default rather than sending it.
func (p Payload) setBool(key string, v bool) {
	if v {
		p[key] = v
	}
}

// setTime stores t as epoch milliseconds when t is non-nil. The instant is
// taken from the time.Time itself; callers in any timezone produce the same
// milliseconds for the same instant.
func (p Payload) setTime(key string, t *time.Time) {
	if t != nil {
		p[key] = t.UnixMilli()
	}
}

// setStrings stores vs unless it is empty.
func (p Payload) setStrings(key string, vs []string) {
	if len(vs) > 0 {
		p[key] = vs
	}
}

// EncodeJSON serializes the payload as a JSON object. A nil Payload encodes
// as an empty object, which several endpoints (close-time clearing among
// them) rely on.
func (p Payload) EncodeJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("manifold: encode payload: %w", err)
	}
	return b, nil
}

// Values renders the payload as URL query parameters. Numbers are formatted
// in their shortest exact form, booleans as true/false, epoch milliseconds as
// plain integers. Repeated keys are not produced; list-valued query
// parameters do not occur on this API.
func (p Payload) Values() url.Values {
	vals := url.Values{}
	for k, v := range p {
		switch t := v.(type) {
		case string:
			vals.Set(k, t)
		case int:
			vals.Set(k, strconv.Itoa(t))
		case int64:
			vals.Set(k, strconv.FormatInt(t, 10))
		case float64:
			vals.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			vals.Set(k, strconv.FormatBool(t))
		default:
			vals.Set(k, fmt.Sprintf("%v", t))
		}
	}
	return vals
}

// Request is any value that can produce its own wire payload. Construction
// has already validated the request by the time Payload is called, so Payload
// never fails.
type Request interface {
	Payload() Payload
}

// Description is a market description in one of the encodings Manifold
// accepts. A zero Format means plain text carried in the "description" field;
// otherwise the format tag itself names the field the content travels in.
type Description struct {
	Text   string
	Format DescriptionFormat
}

// PlainDescription wraps plain text as a Description.
func PlainDescription(text string) *Description {
	return &Description{Text: text}
}

// applyTo flattens the tagged value into p under the field the tag selects.
func (d *Description) applyTo(p Payload) {
	if d == nil {
		return
	}
	field := "description"
	if d.Format != "" {
		field = string(d.Format)
	}
	p.set(field, d.Text)
}

// CommentBody is a comment body in one of the encodings the comment endpoint
// accepts. A zero Format means the body travels untagged in the "description"
// field; otherwise the format tag names the field.
type CommentBody struct {
	Text   string
	Format CommentFormat
}

// PlainComment wraps plain text as a CommentBody.
func PlainComment(text string) *CommentBody {
	return &CommentBody{Text: text}
}

// applyTo flattens the tagged value into p under the field the tag selects.
func (c *CommentBody) applyTo(p Payload) {
	if c == nil {
		return
	}
	field := "description"
	if c.Format != "" {
		field = string(c.Format)
	}
	p.set(field, c.Text)
}
