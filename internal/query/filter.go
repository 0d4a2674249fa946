package query

import (
	"strings"
	"time"

	"fleetops/internal/apierr"
)

// Op is the closed set of predicate kinds a filter condition may use.
type Op string

const (
	OpEquals    Op = "equals"
	OpDateRange Op = "dateRange"
	OpMin       Op = "min"
	OpMax       Op = "max"
)

// Condition is one field predicate. Conditions in a Filter are AND-composed.
// Field supports dotted paths into nested documents ("resources.cpu_percent").
type Condition struct {
	Field string
	Op    Op

	// Equals payload.
	Value any

	// DateRange payload; a nil bound is unbounded on that side.
	From *time.Time
	To   *time.Time

	// Min/Max payload.
	Bound float64
}

// Filter is an AND-composed list of conditions. An empty filter matches
// everything.
type Filter []Condition

// Equals matches records whose field equals value exactly. An empty string
// value matches everything, mirroring a blank filter input in the UI.
func Equals(field string, value any) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

// DateRange matches records whose timestamp field falls inside the inclusive
// range. Nil bounds are open.
func DateRange(field string, from, to *time.Time) Condition {
	return Condition{Field: field, Op: OpDateRange, From: from, To: to}
}

// Min matches records whose numeric field is >= bound.
func Min(field string, bound float64) Condition {
	return Condition{Field: field, Op: OpMin, Bound: bound}
}

// Max matches records whose numeric field is <= bound.
func Max(field string, bound float64) Condition {
	return Condition{Field: field, Op: OpMax, Bound: bound}
}

// Validate rejects malformed filters: unknown ops, empty field names, and a
// Min bound above a Max bound on the same field.
func (f Filter) Validate() error {
	mins := map[string]float64{}
	maxs := map[string]float64{}
	for _, c := range f {
		if c.Field == "" {
			return apierr.New(apierr.ValidationFailure, "filter condition with empty field")
		}
		switch c.Op {
		case OpEquals, OpDateRange:
		case OpMin:
			mins[c.Field] = c.Bound
		case OpMax:
			maxs[c.Field] = c.Bound
		default:
			return apierr.New(apierr.ValidationFailure, "unknown filter op %q", c.Op)
		}
	}
	for field, lo := range mins {
		if hi, ok := maxs[field]; ok && lo > hi {
			return apierr.New(apierr.ValidationFailure, "min_%s (%v) exceeds max_%s (%v)", field, lo, field, hi)
		}
	}
	return nil
}

// lookup resolves a dotted path in a decoded JSON document.
func lookup(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// asFloat coerces JSON numbers (and numeric-looking ints) to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asTime parses a document timestamp field.
func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c Condition) matches(doc map[string]any) bool {
	switch c.Op {
	case OpEquals:
		if c.Value == nil {
			return true
		}
		if s, ok := c.Value.(string); ok && s == "" {
			return true
		}
		v, ok := lookup(doc, c.Field)
		if !ok {
			return false
		}
		if want, ok := asFloat(c.Value); ok {
			got, gok := asFloat(v)
			return gok && got == want
		}
		return v == c.Value
	case OpDateRange:
		if c.From == nil && c.To == nil {
			return true
		}
		v, ok := lookup(doc, c.Field)
		if !ok {
			return false
		}
		t, ok := asTime(v)
		if !ok {
			return false
		}
		if c.From != nil && t.Before(*c.From) {
			return false
		}
		if c.To != nil && t.After(*c.To) {
			return false
		}
		return true
	case OpMin:
		v, ok := lookup(doc, c.Field)
		if !ok {
			return false
		}
		n, ok := asFloat(v)
		return ok && n >= c.Bound
	case OpMax:
		v, ok := lookup(doc, c.Field)
		if !ok {
			return false
		}
		n, ok := asFloat(v)
		return ok && n <= c.Bound
	}
	return false
}

// Matches reports whether the document satisfies every condition.
func (f Filter) Matches(doc map[string]any) bool {
	for _, c := range f {
		if !c.matches(doc) {
			return false
		}
	}
	return true
}
