package metagrid

import (
	"fmt"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/longtsing/metagrid/query"
)

// Element is an opaque unit of data exposing per-key metadata. Ownership of
// the underlying data lives entirely with the backend.
type Element = query.Element

// ArrayElement is implemented by elements that can expose their payload as a
// numeric row, enabling bulk export.
type ArrayElement interface {
	Element
	Values() ([]float64, error)
}

// Index is a lazy, random-access, length-bearing virtual collection.
//
// Indexes are immutable after construction: Sel, OrderBy and slicing never
// mutate the receiver, they return a new view (or the receiver itself when
// the operation is a no-op).
type Index interface {
	// Len returns the number of elements in the collection.
	Len() int

	// Get returns the element at position n (0-indexed).
	Get(n int) (Element, error)

	// Sel filters elements on their metadata and returns a new view.
	Sel(dicts ...map[string]any) (Index, error)

	// OrderBy sorts elements on their metadata and returns a new view.
	OrderBy(args ...any) (Index, error)
}

// MaskBuilder is an optional backend hook: indexes implementing it wrap
// derived views in their own type instead of the generic MaskIndex, so that
// backend behavior (key aliases, retrieval contract) survives composition.
type MaskBuilder interface {
	NewMaskIndex(positions []int) (Index, error)
}

// NewMask builds a masked view over ix with the given positions, honoring the
// backend's MaskBuilder hook when present.
func NewMask(ix Index, positions []int) (Index, error) {
	if mb, ok := ix.(MaskBuilder); ok {
		return mb.NewMaskIndex(positions)
	}
	return NewMaskIndex(ix, positions)
}

// Sel is the generic selection implementation usable by any backend. An empty
// selection returns ix unchanged. Otherwise every element is scanned in order
// and matching positions become a masked view, so filtering preserves the
// relative order of elements.
func Sel(ix Index, dicts ...map[string]any) (Index, error) {
	sel, err := query.NewSelection(dicts...)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		return ix, nil
	}

	positions, err := matchPositions(ix, sel)
	if err != nil {
		return nil, err
	}
	return NewMask(ix, positions)
}

// OrderBy is the generic ordering implementation usable by any backend. An
// empty order returns ix unchanged. Otherwise positions are sorted stably by
// the compiled comparator, so ties keep their prior relative order and
// repeated application with extra tie-break keys composes predictably.
func OrderBy(ix Index, args ...any) (Index, error) {
	order, err := query.NewOrder(args...)
	if err != nil {
		return nil, err
	}
	if order.IsEmpty() {
		return ix, nil
	}

	n := ix.Len()
	elements := make([]Element, n)
	for i := range elements {
		e, err := ix.Get(i)
		if err != nil {
			return nil, err
		}
		elements[i] = e
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}

	var sortErr error
	sort.SliceStable(positions, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := order.CompareElements(elements[positions[i]], elements[positions[j]])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	return NewMask(ix, positions)
}

// Slice returns a masked view over the half-open range [start, stop) with
// step 1. Negative bounds count from the end.
func Slice(ix Index, start, stop int) (Index, error) {
	return SliceStep(ix, start, stop, 1)
}

// SliceStep returns a masked view over the positions selected by
// start:stop:step, with the usual slicing semantics: negative bounds count
// from the end, bounds are clamped, and a negative step walks backwards.
func SliceStep(ix Index, start, stop, step int) (Index, error) {
	if step == 0 {
		return nil, fmt.Errorf("slice step cannot be zero")
	}

	n := ix.Len()
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}

	var positions []int
	if step > 0 {
		start = max(start, 0)
		stop = min(stop, n)
		for i := start; i < stop; i += step {
			positions = append(positions, i)
		}
	} else {
		start = min(start, n-1)
		stop = max(stop, -1)
		for i := start; i > stop; i += step {
			positions = append(positions, i)
		}
	}

	return NewMask(ix, positions)
}

// Where returns a masked view over the positions whose flag is true. The
// flag count must equal the collection length.
func Where(ix Index, flags []bool) (Index, error) {
	if len(flags) != ix.Len() {
		return nil, &ErrMismatch{Property: "mask length", Want: ix.Len(), Got: len(flags)}
	}

	var positions []int
	for i, ok := range flags {
		if ok {
			positions = append(positions, i)
		}
	}
	return NewMask(ix, positions)
}

// Init captures the construction arguments of a concrete index so derived
// views can rebuild an equivalent filtered and ordered instance.
type Init struct {
	// Select holds positional selection maps, applied left to right.
	Select []map[string]any

	// Kwargs holds keyword-style arguments, taking precedence over Select.
	Kwargs map[string]any

	// OrderBy holds an explicit ordering, applied last.
	OrderBy []any
}

func (in Init) selArgs() []map[string]any {
	args := make([]map[string]any, 0, len(in.Select)+1)
	args = append(args, in.Select...)
	if len(in.Kwargs) > 0 {
		args = append(args, in.Kwargs)
	}
	return args
}

// orderArgs keeps only the entries whose values carry ordering semantics:
// nil, "ascending"/"descending", rank lists and comparators. Wildcards and
// selection predicates have no meaning for ordering and are dropped.
func (in Init) orderArgs() []any {
	var args []any
	for _, m := range in.selArgs() {
		om := make(map[string]any, len(m))
		for k, v := range m {
			if orderable(v) {
				om[k] = v
			}
		}
		if len(om) > 0 {
			args = append(args, om)
		}
	}
	return args
}

func orderable(v any) bool {
	switch vv := v.(type) {
	case nil, []any, []string, []int, []int64, []float64, query.Comparator:
		return true
	case string:
		return vv == "ascending" || vv == "descending"
	default:
		return false
	}
}

// Mutate applies the construction-time pipeline: filter with the captured
// arguments, order by the same arguments, then apply the explicit ordering
// last. Filtering always happens before ordering.
func Mutate(ix Index, init Init) (Index, error) {
	out, err := ix.Sel(init.selArgs()...)
	if err != nil {
		return nil, err
	}

	out, err = out.OrderBy(init.orderArgs()...)
	if err != nil {
		return nil, err
	}

	if len(init.OrderBy) > 0 {
		out, err = out.OrderBy(init.OrderBy...)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Coorder is implemented by views that cache derived coordinate values.
type Coorder interface {
	Coord(key string) ([]any, error)
}

// Coord returns the distinct values of a metadata key across the collection,
// in first-seen order, using the view's cache when available.
func Coord(ix Index, key string) ([]any, error) {
	if c, ok := ix.(Coorder); ok {
		return c.Coord(key)
	}
	return scanCoord(ix, key)
}

// coordCache lazily caches distinct metadata values per key. Safe for
// concurrent readers holding the same view.
type coordCache struct {
	once sync.Once
	m    *xsync.MapOf[string, []any]
}

func (c *coordCache) coord(ix Index, key string) ([]any, error) {
	c.once.Do(func() { c.m = xsync.NewMapOf[string, []any]() })
	if vals, ok := c.m.Load(key); ok {
		return vals, nil
	}
	vals, err := scanCoord(ix, key)
	if err != nil {
		return nil, err
	}
	c.m.Store(key, vals)
	return vals, nil
}

func scanCoord(ix Index, key string) ([]any, error) {
	var vals []any
	seen := make(map[string]struct{})
	for i := 0; i < ix.Len(); i++ {
		e, err := ix.Get(i)
		if err != nil {
			return nil, err
		}
		v := e.Metadata(key)
		if v == nil {
			continue
		}
		ck := query.Canonical(v)
		if _, ok := seen[ck]; ok {
			continue
		}
		seen[ck] = struct{}{}
		vals = append(vals, v)
	}
	return vals, nil
}
