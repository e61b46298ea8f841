// Package wire validates JSON payloads from the branch API field by field.
// A Reader keeps the first failure; callers check Err once and discard the
// partially filled value when it is non-nil.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"saas-pos/internal/domain"
)

// ParseError describes why a payload was rejected.
type ParseError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("parse %s: field %q %s", e.Entity, e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return domain.ErrMalformedResponse
}

// Object is a decoded JSON object. Numbers are json.Number.
type Object map[string]any

// Decode parses data as a single JSON object.
func Decode(entity string, data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Entity: entity, Reason: "invalid json: " + err.Error()}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Entity: entity, Reason: "not an object"}
	}
	return Object(obj), nil
}

// Reader extracts typed fields from an Object.
type Reader struct {
	entity string
	obj    Object
	err    *ParseError
}

func NewReader(entity string, obj Object) *Reader {
	return &Reader{entity: entity, obj: obj}
}

// Err returns the first failure, or nil.
func (r *Reader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *Reader) fail(field, reason string) {
	if r.err == nil {
		r.err = &ParseError{Entity: r.entity, Field: field, Reason: reason}
	}
}

func (r *Reader) raw(field string) (any, bool) {
	v, ok := r.obj[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String reads a required, non-empty string. The value is trimmed.
func (r *Reader) String(field string) string {
	v, ok := r.raw(field)
	if !ok {
		r.fail(field, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "must be a string")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		r.fail(field, "must not be empty")
	}
	return s
}

// OptString reads a nullable string; absent, null and blank all yield nil.
func (r *Reader) OptString(field string) *string {
	v, ok := r.raw(field)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "must be a string or null")
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Text reads an optional string defaulting to "".
func (r *Reader) Text(field string) string {
	if s := r.OptString(field); s != nil {
		return *s
	}
	return ""
}

// Money reads a required decimal carried as a JSON string. The trimmed text is
// returned unchanged; it is never converted to a float.
func (r *Reader) Money(field string) string {
	v, ok := r.raw(field)
	if !ok {
		r.fail(field, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "must be a decimal string")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		r.fail(field, "must not be empty")
		return ""
	}
	if _, err := decimal.NewFromString(s); err != nil {
		r.fail(field, "is not a decimal")
		return ""
	}
	return s
}

// Quantity reads a required non-negative integer.
func (r *Reader) Quantity(field string) int {
	v, ok := r.raw(field)
	if !ok {
		r.fail(field, "is required")
		return 0
	}
	n, ok := v.(json.Number)
	if !ok {
		r.fail(field, "must be a number")
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		r.fail(field, "must be an integer")
		return 0
	}
	if i < 0 || i > math.MaxInt32 {
		r.fail(field, "is out of range")
		return 0
	}
	return int(i)
}

// OptTime reads a nullable RFC 3339 timestamp.
func (r *Reader) OptTime(field string) *time.Time {
	s := r.OptString(field)
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		r.fail(field, "is not an RFC 3339 timestamp")
		return nil
	}
	return &t
}

// Object reads a required nested object.
func (r *Reader) Object(field string) Object {
	v, ok := r.raw(field)
	if !ok {
		r.fail(field, "is required")
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		r.fail(field, "must be an object")
		return nil
	}
	return Object(obj)
}

// Objects reads an array whose elements must all be objects. An absent or
// null array is empty.
func (r *Reader) Objects(field string) []Object {
	v, ok := r.raw(field)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		r.fail(field, "must be an array")
		return nil
	}
	out := make([]Object, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			r.fail(fmt.Sprintf("%s[%d]", field, i), "must be an object")
			return nil
		}
		out = append(out, Object(obj))
	}
	return out
}

// Nest reports a failure from a nested reader under prefix.
func (r *Reader) Nest(prefix string, err error) {
	if err == nil || r.err != nil {
		return
	}
	if pe, ok := err.(*ParseError); ok {
		field := prefix
		if pe.Field != "" {
			field = prefix + "." + pe.Field
		}
		r.err = &ParseError{Entity: r.entity, Field: field, Reason: pe.Reason}
		return
	}
	r.fail(prefix, err.Error())
}
