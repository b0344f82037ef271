// Package validate holds the small schema-validation helpers used by the
// request normalizers. Payloads arrive as map[string]any straight from
// encoding/json, so every accessor has to cope with missing keys, nulls and
// wrong types without panicking.
package validate

import (
	"math"
	"strings"
)

// Result collects field-scoped failure messages for one payload.
type Result struct {
	details []string
}

func (r *Result) Fail(field, msg string) {
	r.details = append(r.details, field+": "+msg)
}

func (r *Result) OK() bool {
	return len(r.details) == 0
}

func (r *Result) Details() []string {
	return r.details
}

// OptionalString reads an optional string field. Absent, null and
// empty-after-trim all normalize to nil. A present non-string value is a
// field failure.
func OptionalString(payload map[string]any, key string, r *Result) *string {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.Fail(key, "must be a string")
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// String extracts a trimmed string from an arbitrary value.
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Int extracts an integer from an arbitrary JSON value. encoding/json
// decodes every number as float64, so integral floats are accepted and
// anything fractional is not.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Array reads a field as a JSON array. Absent and null return nil.
func Array(payload map[string]any, key string) []any {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	arr, _ := v.([]any)
	return arr
}
