package metagrid

import (
	"fmt"
	"io"
	"strings"

	"github.com/longtsing/metagrid/query"
)

// MultiIndex logically concatenates an ordered list of child indexes into one
// collection. Children are shared references; the concatenation itself owns
// no elements.
type MultiIndex struct {
	children []Index
	coords   coordCache
}

// NewMultiIndex concatenates the given children in order.
func NewMultiIndex(children ...Index) *MultiIndex {
	owned := make([]Index, len(children))
	copy(owned, children)
	return &MultiIndex{children: owned}
}

// Len returns the sum of the child lengths.
func (m *MultiIndex) Len() int {
	total := 0
	for _, c := range m.children {
		total += c.Len()
	}
	return total
}

// Get maps the global position onto the owning child via a linear scan of
// child lengths. O(children) per access, acceptable while the child count
// stays small relative to per-child size.
func (m *MultiIndex) Get(n int) (Element, error) {
	if n < 0 {
		return nil, &ErrOutOfRange{Position: n, Len: m.Len()}
	}
	rest := n
	for _, c := range m.children {
		if rest < c.Len() {
			return c.Get(rest)
		}
		rest -= c.Len()
	}
	return nil, &ErrOutOfRange{Position: n, Len: m.Len()}
}

// Sel distributes the selection to every child and rebuilds a new MultiIndex
// from the per-child results. Selection composes with concatenation; it never
// collapses the structure into a single mask.
func (m *MultiIndex) Sel(dicts ...map[string]any) (Index, error) {
	sel, err := query.NewSelection(dicts...)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		return m, nil
	}

	children := make([]Index, len(m.children))
	for i, c := range m.children {
		children[i], err = c.Sel(dicts...)
		if err != nil {
			return nil, err
		}
	}
	return NewMultiIndex(children...), nil
}

// OrderBy sorts the concatenated view as a whole.
func (m *MultiIndex) OrderBy(args ...any) (Index, error) {
	return OrderBy(m, args...)
}

// Coord returns the cached distinct values of a metadata key across all
// children.
func (m *MultiIndex) Coord(key string) ([]any, error) {
	return m.coords.coord(m, key)
}

// Children returns a copy of the child list.
func (m *MultiIndex) Children() []Index {
	out := make([]Index, len(m.children))
	copy(out, m.children)
	return out
}

func (m *MultiIndex) String() string {
	parts := make([]string, len(m.children))
	for i, c := range m.children {
		parts[i] = fmt.Sprintf("%T(len=%d)", c, c.Len())
	}
	return "MultiIndex(" + strings.Join(parts, ",") + ")"
}

// Graph writes an indented rendering of a view tree, descending through
// masks and concatenations. Useful when debugging deep pipelines.
func Graph(w io.Writer, ix Index) {
	graph(w, ix, 0)
}

func graph(w io.Writer, ix Index, depth int) {
	fmt.Fprintf(w, "%s%T(len=%d)\n", strings.Repeat(" ", depth), ix, ix.Len())
	switch v := ix.(type) {
	case *MultiIndex:
		for _, c := range v.children {
			graph(w, c, depth+3)
		}
	case *MaskIndex:
		graph(w, v.index, depth+3)
	case interface{ Backing() Index }:
		graph(w, v.Backing(), depth+3)
	}
}
