package metagrid

import "fmt"

// MaskIndex is a view over a backing index defined by an explicit ordered
// list of positions into it. The backing index is shared, never owned; the
// position list is owned and never mutated after construction.
type MaskIndex struct {
	index     Index
	positions []int
	coords    coordCache
}

// NewMaskIndex builds a masked view over ix. Every position must be in
// [0, ix.Len()).
func NewMaskIndex(ix Index, positions []int) (*MaskIndex, error) {
	n := ix.Len()
	owned := make([]int, len(positions))
	for i, p := range positions {
		if p < 0 || p >= n {
			return nil, &ErrOutOfRange{Position: p, Len: n}
		}
		owned[i] = p
	}
	return &MaskIndex{index: ix, positions: owned}, nil
}

// Len returns the number of masked positions.
func (m *MaskIndex) Len() int { return len(m.positions) }

// Get translates n through the position list and delegates to the backing
// index. Each hop in a chain of masks costs O(1).
func (m *MaskIndex) Get(n int) (Element, error) {
	if n < 0 || n >= len(m.positions) {
		return nil, &ErrOutOfRange{Position: n, Len: len(m.positions)}
	}
	return m.index.Get(m.positions[n])
}

// Sel filters the masked view.
func (m *MaskIndex) Sel(dicts ...map[string]any) (Index, error) {
	return Sel(m, dicts...)
}

// OrderBy sorts the masked view.
func (m *MaskIndex) OrderBy(args ...any) (Index, error) {
	return OrderBy(m, args...)
}

// Coord returns the cached distinct values of a metadata key.
func (m *MaskIndex) Coord(key string) ([]any, error) {
	return m.coords.coord(m, key)
}

// Backing returns the index this mask translates into.
func (m *MaskIndex) Backing() Index { return m.index }

// Positions returns a copy of the position list.
func (m *MaskIndex) Positions() []int {
	out := make([]int, len(m.positions))
	copy(out, m.positions)
	return out
}

func (m *MaskIndex) String() string {
	return fmt.Sprintf("MaskIndex(len=%d, over=%T)", len(m.positions), m.index)
}
