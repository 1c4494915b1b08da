package query

import (
	"reflect"
	"sort"
	"sync"
	"time"
)

// Element is the unit of data the compilers evaluate. Elements are opaque to
// this package; only their per-key metadata is visible.
type Element interface {
	// Metadata returns the value stored under key, or nil when absent.
	Metadata(key string) any
}

// Predicate evaluates a single metadata value.
type Predicate func(v any) bool

type wildcard struct{}

// All is the tagged match-all marker. Using it as a selection value accepts
// every element, like leaving the key unconstrained.
var All wildcard

type actionKind uint8

const (
	actionAll actionKind = iota
	actionFunc
	actionMembers
)

type action struct {
	kind    actionKind
	pred    Predicate
	members []any // raw members, only for actionMembers
}

// Selection is a compiled conjunction of per-key predicates.
//
// A Selection is immutable after construction apart from the guarded one-time
// coercion inside membership sets, and is safe for concurrent use.
type Selection struct {
	kwargs  map[string]any
	keys    []string
	actions map[string]action
}

// NewSelection merges the given maps left-to-right (later maps win per key)
// and compiles one predicate per key. Supported values are nil or All
// (match anything), a Predicate or func(any) bool, a scalar, or a slice of
// scalars. Anything else fails with *ErrUnsupportedValue.
func NewSelection(dicts ...map[string]any) (*Selection, error) {
	kwargs := make(map[string]any)
	for _, d := range dicts {
		for k, v := range d {
			kwargs[k] = v
		}
	}

	s := &Selection{
		kwargs:  kwargs,
		keys:    make([]string, 0, len(kwargs)),
		actions: make(map[string]action, len(kwargs)),
	}
	for k := range kwargs {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)

	for _, k := range s.keys {
		act, err := compileAction(k, kwargs[k])
		if err != nil {
			return nil, err
		}
		s.actions[k] = act
	}

	return s, nil
}

func compileAction(key string, v any) (action, error) {
	switch fn := v.(type) {
	case nil:
		return action{kind: actionAll, pred: func(any) bool { return true }}, nil
	case wildcard:
		return action{kind: actionAll, pred: func(any) bool { return true }}, nil
	case Predicate:
		return action{kind: actionFunc, pred: fn}, nil
	case func(any) bool:
		return action{kind: actionFunc, pred: fn}, nil
	}

	members, err := scalarList(key, v)
	if err != nil {
		return action{}, err
	}

	set := newMemberSet(members)
	return action{kind: actionMembers, pred: set.match, members: members}, nil
}

// scalarList normalizes v into a list of scalar members: a scalar becomes a
// singleton, a slice or array is expanded element-wise.
func scalarList(key string, v any) ([]any, error) {
	if isScalar(v) {
		return []any{v}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &ErrUnsupportedValue{Key: key, Value: v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		m := rv.Index(i).Interface()
		if !isScalar(m) {
			return nil, &ErrUnsupportedValue{Key: key, Value: m}
		}
		out[i] = m
	}
	return out, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, int, int64, float64, time.Time:
		return true
	default:
		return false
	}
}

// memberSet is a two-state membership test. It starts with the raw member
// values and coerces every member to the probe's runtime type exactly once,
// on the first non-nil probe. A nil probe is checked against the raw members
// and does not trigger the transition.
type memberSet struct {
	mu      sync.Mutex
	coerced bool
	raw     []any
	values  map[any]struct{}
}

func newMemberSet(members []any) *memberSet {
	values := make(map[any]struct{}, len(members))
	for _, m := range members {
		values[m] = struct{}{}
	}
	return &memberSet{raw: members, values: values}
}

func (s *memberSet) match(v any) bool {
	s.mu.Lock()
	if !s.coerced && v != nil {
		values := make(map[any]struct{}, len(s.raw))
		for _, m := range s.raw {
			values[coerceTo(v, m)] = struct{}{}
		}
		s.values = values
		s.coerced = true
	}
	_, ok := s.values[v]
	s.mu.Unlock()
	return ok
}

// IsEmpty reports whether no keys were supplied. Empty selections let callers
// short-circuit to the unfiltered collection.
func (s *Selection) IsEmpty() bool { return len(s.keys) == 0 }

// Keys returns the selection keys in deterministic (sorted) order.
func (s *Selection) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// MatchElement reports whether every compiled predicate accepts the element's
// metadata value for its key.
func (s *Selection) MatchElement(e Element) bool {
	for _, k := range s.keys {
		if !s.actions[k].pred(e.Metadata(k)) {
			return false
		}
	}
	return true
}

// IsWildcard reports whether the key's condition matches everything.
func (s *Selection) IsWildcard(key string) bool {
	act, ok := s.actions[key]
	return ok && act.kind == actionAll
}

// Values returns the raw (uncoerced) membership values for a key. It reports
// ok=false for wildcard and callable conditions, which cannot be enumerated.
// Accelerators use this to compile selections into posting-list lookups.
func (s *Selection) Values(key string) ([]any, bool) {
	act, ok := s.actions[key]
	if !ok || act.kind != actionMembers {
		return nil, false
	}
	out := make([]any, len(act.members))
	copy(out, act.members)
	return out, true
}

// Fingerprint returns a deterministic content hash of the selection: two
// selections built from the same keys and values hash identically regardless
// of argument order.
func (s *Selection) Fingerprint() string {
	return fingerprint("Selection", s.keys, s.kwargs)
}
