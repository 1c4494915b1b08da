package query

import (
	"fmt"
	"strconv"
	"time"
)

// Compare orders two metadata values. Numbers compare across int/int64/float64
// representations, strings compare lexicographically and times chronologically.
// Any other pairing fails with *ErrIncomparable.
func Compare(a, b any) (int, error) {
	if ia, ok := asInt64(a); ok {
		if ib, ok := asInt64(b); ok {
			return cmpOrdered(ia, ib), nil
		}
	}
	if fa, ok := asFloat64(a); ok {
		if fb, ok := asFloat64(b); ok {
			return cmpOrdered(fa, fb), nil
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmpOrdered(av, bv), nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	}

	return 0, &ErrIncomparable{A: a, B: b}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Canonical returns the stable string form of a metadata value, used to unify
// numeric and string representations in rank tables, inverted indexes and
// availability trees.
func Canonical(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

// coerceTo casts member to the runtime type of probe. Members that cannot be
// cast are kept as-is; they can never equal the probe anyway.
func coerceTo(probe, member any) any {
	switch probe.(type) {
	case string:
		return Canonical(member)
	case int:
		switch m := member.(type) {
		case int:
			return m
		case int64:
			return int(m)
		case float64:
			return int(m)
		case string:
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	case int64:
		switch m := member.(type) {
		case int:
			return int64(m)
		case int64:
			return m
		case float64:
			return int64(m)
		case string:
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n
			}
		}
	case float64:
		switch m := member.(type) {
		case int:
			return float64(m)
		case int64:
			return float64(m)
		case float64:
			return m
		case string:
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f
			}
		}
	case time.Time:
		switch m := member.(type) {
		case time.Time:
			return m
		case string:
			if t, err := time.Parse(time.RFC3339Nano, m); err == nil {
				return t
			}
			if t, err := time.Parse("2006-01-02", m); err == nil {
				return t
			}
		}
	}
	return member
}
