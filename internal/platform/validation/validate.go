// Package validation evaluates declarative per-operation rule sets against a
// raw JSON object and produces either a typed payload or per-field messages.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Lookup answers the collection questions behind Unique and Exists.
type Lookup interface {
	Exists(ctx context.Context, table, column string, value interface{}, excludeID string) (bool, error)
}

// Options carries the context of an update.
type Options struct {
	// IgnoreID is the id of the record being updated; it never collides
	// with itself in Unique checks.
	IgnoreID string
	// Current holds persisted values. A Unique check is skipped when the
	// submitted value equals the persisted one.
	Current map[string]interface{}
}

// Error lists the messages of every failing field.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// ErrInvalidBody is returned by DecodeBody for anything but a JSON object.
var ErrInvalidBody = errors.New("request body must be a JSON object")

// DecodeBody reads a JSON object into its raw members. An empty body is an
// empty object.
func DecodeBody(r io.Reader) (map[string]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	raw := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}
	return raw, nil
}

type Validator struct {
	lookup Lookup
	format *validator.Validate
}

func New(lookup Lookup) *Validator {
	return &Validator{lookup: lookup, format: validator.New()}
}

// Validate evaluates rules against raw. Only declared fields reach the
// payload; absent optional fields are absent from it. A failing rule set
// yields *Error; a failing lookup yields a plain error.
func (v *Validator) Validate(ctx context.Context, rules Rules, raw map[string]json.RawMessage, opts Options) (Payload, error) {
	payload := make(Payload, len(rules))
	verr := &Error{}

	for _, f := range rules {
		msg, ok := raw[f.Name]
		if !ok {
			if f.has(kindRequired) {
				verr.add(f.Name, message("required", f.Name))
			}
			continue
		}

		value, failed := v.decode(f, msg, verr)
		if failed {
			continue
		}
		if value == nil {
			payload[f.Name] = nil
			continue
		}
		if !v.checkBounds(f, value, verr) {
			continue
		}
		ok, err := v.checkCollections(ctx, f, value, opts, verr)
		if err != nil {
			return nil, err
		}
		if ok {
			payload[f.Name] = value
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return payload, nil
}

// decode turns the raw member into a typed value (string, int64 or nil).
func (v *Validator) decode(f Field, msg json.RawMessage, verr *Error) (interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		verr.add(f.Name, message(typeKey(f.typ()), f.Name))
		return nil, true
	}

	if raw == nil {
		switch {
		case f.has(kindNullable):
			return nil, false
		case f.has(kindRequired):
			verr.add(f.Name, message("required", f.Name))
		default:
			verr.add(f.Name, message("not_null", f.Name))
		}
		return nil, true
	}

	switch f.typ() {
	case kindInt:
		n, ok := toInt(raw)
		if !ok {
			verr.add(f.Name, message("integer", f.Name))
			return nil, true
		}
		return n, false
	default:
		s, ok := toString(raw, f.has(kindString) || f.has(kindEmail) || f.has(kindUUID))
		if !ok {
			verr.add(f.Name, message(typeKey(f.typ()), f.Name))
			return nil, true
		}
		// Text columns cannot store NUL.
		if strings.ContainsRune(s, 0) {
			verr.add(f.Name, message("nul", f.Name))
			return nil, true
		}
		if strings.TrimSpace(s) == "" && f.has(kindRequired) {
			verr.add(f.Name, message("required", f.Name))
			return nil, true
		}
		switch f.typ() {
		case kindEmail:
			if v.format.Var(s, "email") != nil {
				verr.add(f.Name, message("email", f.Name))
				return nil, true
			}
		case kindUUID:
			if v.format.Var(s, "uuid") != nil {
				verr.add(f.Name, message("uuid", f.Name))
				return nil, true
			}
		}
		return s, false
	}
}

func (v *Validator) checkBounds(f Field, value interface{}, verr *Error) bool {
	ok := true
	for _, c := range f.Checks {
		switch c.kind {
		case kindMax:
			if s, isStr := value.(string); isStr && utf8.RuneCountInString(s) > c.n {
				verr.add(f.Name, message("max.string", f.Name, c.n))
				ok = false
			}
			if n, isInt := value.(int64); isInt && n > int64(c.n) {
				verr.add(f.Name, message("max.numeric", f.Name, c.n))
				ok = false
			}
		case kindMin:
			if s, isStr := value.(string); isStr && utf8.RuneCountInString(s) < c.n {
				verr.add(f.Name, message("min.string", f.Name, c.n))
				ok = false
			}
			if n, isInt := value.(int64); isInt && n < int64(c.n) {
				verr.add(f.Name, message("min.numeric", f.Name, c.n))
				ok = false
			}
		case kindIn:
			if !contains(c.values, fmt.Sprint(value)) {
				verr.add(f.Name, message("in", f.Name))
				ok = false
			}
		}
	}
	return ok
}

func (v *Validator) checkCollections(ctx context.Context, f Field, value interface{}, opts Options, verr *Error) (bool, error) {
	for _, c := range f.Checks {
		switch c.kind {
		case kindUnique:
			if cur, ok := opts.Current[f.Name]; ok && cur == value {
				continue
			}
			taken, err := v.lookupExists(ctx, c, value, opts.IgnoreID)
			if err != nil {
				return false, err
			}
			if taken {
				verr.add(f.Name, message("unique", f.Name))
				return false, nil
			}
		case kindExists:
			found, err := v.lookupExists(ctx, c, value, "")
			if err != nil {
				return false, err
			}
			if !found {
				verr.add(f.Name, message("exists", f.Name))
				return false, nil
			}
		}
	}
	return true, nil
}

func (v *Validator) lookupExists(ctx context.Context, c Check, value interface{}, excludeID string) (bool, error) {
	if v.lookup == nil {
		return false, fmt.Errorf("validation: no lookup configured for %s.%s", c.table, c.column)
	}
	return v.lookup.Exists(ctx, c.table, c.column, value, excludeID)
}

func toInt(raw interface{}) (int64, bool) {
	switch x := raw.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// toString accepts JSON strings, and numbers unless strict.
func toString(raw interface{}, strict bool) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case json.Number:
		if strict {
			return "", false
		}
		return x.String(), true
	}
	return "", false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Taken builds the error reported when a unique value is already in use.
// Repositories hitting the database constraint use it so a lost race reads
// the same as a failed check.
func Taken(field string) *Error {
	e := &Error{}
	e.add(field, message("unique", field))
	return e
}
