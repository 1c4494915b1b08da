package query

import (
	"fmt"
	"sort"
	"strconv"
)

// Comparator orders two metadata values for one key. It returns a negative,
// zero or positive result, or an error when the values cannot be ordered.
type Comparator func(a, b any) (int, error)

// KeyOrder pairs a key with its ordering spec. Build them with Asc, Desc,
// ByRank or ByFunc to keep multi-key declarations in a stable order.
type KeyOrder struct {
	Key  string
	Spec any
}

// Asc orders a key ascending.
func Asc(key string) KeyOrder { return KeyOrder{Key: key, Spec: "ascending"} }

// Desc orders a key descending.
func Desc(key string) KeyOrder { return KeyOrder{Key: key, Spec: "descending"} }

// ByRank orders a key by the position of its value in the given reference
// list. Values absent from the list sort after every listed value and compare
// equal among themselves.
func ByRank(key string, values ...any) KeyOrder {
	return KeyOrder{Key: key, Spec: values}
}

// ByFunc orders a key with a caller-supplied comparator.
func ByFunc(key string, cmp Comparator) KeyOrder {
	return KeyOrder{Key: key, Spec: cmp}
}

// ActionBuilder compiles one key's ordering spec into a Comparator. The hook
// exists so concrete collections can specialize ordering semantics.
type ActionBuilder func(key string, spec any) (Comparator, error)

// Order is a compiled multi-key comparator. Keys compare in declaration
// order; the first nonzero per-key result wins.
type Order struct {
	kwargs  map[string]any
	keys    []string
	actions map[string]Comparator
}

// NewOrder compiles ordering arguments with the default action builder.
// Each argument is a key name (ascending), a KeyOrder, or a map whose keys
// are added in sorted order for determinism.
func NewOrder(args ...any) (*Order, error) {
	return NewOrderWith(BuildAction, args...)
}

// NewOrderWith compiles ordering arguments with a custom action builder.
func NewOrderWith(build ActionBuilder, args ...any) (*Order, error) {
	o := &Order{
		kwargs:  make(map[string]any),
		actions: make(map[string]Comparator),
	}

	add := func(key string, spec any) {
		if _, seen := o.kwargs[key]; !seen {
			o.keys = append(o.keys, key)
		}
		o.kwargs[key] = spec
	}

	for _, a := range args {
		switch av := a.(type) {
		case nil:
			continue
		case string:
			add(av, "ascending")
		case KeyOrder:
			add(av.Key, av.Spec)
		case map[string]any:
			keys := make([]string, 0, len(av))
			for k := range av {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				add(k, av[k])
			}
		default:
			return nil, &ErrUnsupportedValue{Value: a}
		}
	}

	for _, k := range o.keys {
		cmp, err := build(k, o.kwargs[k])
		if err != nil {
			return nil, err
		}
		o.actions[k] = cmp
	}

	return o, nil
}

// BuildAction is the default ordering semantics: nil and "ascending" compare
// raw values ascending, "descending" is the mirror, a Comparator is used
// verbatim and a list of values builds a rank table.
func BuildAction(key string, spec any) (Comparator, error) {
	switch sv := spec.(type) {
	case nil:
		return ascending, nil
	case string:
		switch sv {
		case "ascending":
			return ascending, nil
		case "descending":
			return descending, nil
		default:
			return nil, &ErrUnsupportedValue{Key: key, Value: sv}
		}
	case Comparator:
		return sv, nil
	case func(a, b any) (int, error):
		return sv, nil
	}

	values, err := scalarList(key, spec)
	if err != nil {
		return nil, err
	}
	return newRankTable(values).compare, nil
}

func ascending(a, b any) (int, error) { return Compare(a, b) }

func descending(a, b any) (int, error) {
	n, err := Compare(a, b)
	return -n, err
}

// rankTable maps every listed value, registered under its string, integer and
// float castings, to its position in the reference list.
type rankTable struct {
	rank map[any]int
	n    int
}

func newRankTable(values []any) *rankTable {
	t := &rankTable{rank: make(map[any]int, len(values)), n: len(values)}
	for i, v := range values {
		s := Canonical(v)
		if _, ok := t.rank[s]; !ok {
			t.rank[s] = i
		}
		if n, err := strconv.Atoi(s); err == nil {
			if _, ok := t.rank[n]; !ok {
				t.rank[n] = i
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if _, ok := t.rank[f]; !ok {
				t.rank[f] = i
			}
		}
	}
	return t
}

func (t *rankTable) get(v any) int {
	if r, ok := t.rank[v]; ok {
		return r
	}
	if r, ok := t.rank[Canonical(v)]; ok {
		return r
	}
	// Unlisted values sort last and tie with each other.
	return t.n
}

func (t *rankTable) compare(a, b any) (int, error) {
	ra, rb := t.get(a), t.get(b)
	switch {
	case ra < rb:
		return -1, nil
	case ra > rb:
		return 1, nil
	default:
		return 0, nil
	}
}

// IsEmpty reports whether no keys were supplied.
func (o *Order) IsEmpty() bool { return len(o.keys) == 0 }

// Keys returns the ordering keys in declaration order.
func (o *Order) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// CompareElements compares two elements key by key in declaration order and
// returns the first nonzero result, or 0 when every key ties. Callers must
// sort stably so that full ties keep their prior relative order.
func (o *Order) CompareElements(a, b Element) (int, error) {
	for _, k := range o.keys {
		n, err := o.actions[k](a.Metadata(k), b.Metadata(k))
		if err != nil {
			return 0, fmt.Errorf("order key %q: %w", k, err)
		}
		if n != 0 {
			return n, nil
		}
	}
	return 0, nil
}

// Fingerprint returns a deterministic content hash of the ordering. Unlike
// Selection, key declaration order is part of the identity, since it changes
// the resulting order.
func (o *Order) Fingerprint() string {
	return fingerprint("Order", o.keys, o.kwargs)
}
