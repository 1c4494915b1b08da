package invidx

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/longtsing/metagrid"
	"github.com/longtsing/metagrid/query"
)

// Index is an inverted metadata index: key -> canonical value -> positions.
type Index struct {
	mu     sync.RWMutex
	fields map[string]map[string]*roaring.Bitmap
	n      int
}

// New creates an empty inverted index for a collection of the given length.
func New(n int) *Index {
	return &Index{fields: make(map[string]map[string]*roaring.Bitmap), n: n}
}

// Build scans the collection once and indexes the given metadata keys.
func Build(ix metagrid.Index, keys ...string) (*Index, error) {
	inv := New(ix.Len())
	for pos := 0; pos < ix.Len(); pos++ {
		e, err := ix.Get(pos)
		if err != nil {
			return nil, err
		}
		doc := make(map[string]any, len(keys))
		for _, k := range keys {
			doc[k] = e.Metadata(k)
		}
		inv.Add(pos, doc)
	}
	return inv, nil
}

// Add indexes one element's metadata under the given position. Nil values
// are skipped.
func (inv *Index) Add(pos int, doc map[string]any) {
	if inv == nil || doc == nil {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for k, v := range doc {
		if v == nil {
			continue
		}
		vm, ok := inv.fields[k]
		if !ok {
			vm = make(map[string]*roaring.Bitmap)
			inv.fields[k] = vm
		}
		vk := query.Canonical(v)
		bm, ok := vm[vk]
		if !ok {
			bm = roaring.New()
			vm[vk] = bm
		}
		bm.Add(uint32(pos))
	}
}

// Compile attempts to compile a selection into a position bitmap. If the
// selection contains conditions the index cannot answer (callable predicates
// or unindexed keys), ok=false and the caller must fall back to scanning.
func (inv *Index) Compile(sel *query.Selection) (bm *roaring.Bitmap, ok bool) {
	if inv == nil || sel == nil || sel.IsEmpty() {
		return nil, false
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var result *roaring.Bitmap
	for _, k := range sel.Keys() {
		if sel.IsWildcard(k) {
			continue
		}
		members, enumerable := sel.Values(k)
		if !enumerable {
			return nil, false
		}
		vm, indexed := inv.fields[k]
		if !indexed {
			return nil, false
		}

		union := roaring.New()
		for _, m := range members {
			if postings, ok := vm[query.Canonical(m)]; ok {
				union.Or(postings)
			}
		}
		if union.IsEmpty() {
			// Key/value doesn't exist; fast path to always-empty.
			return roaring.New(), true
		}

		if result == nil {
			result = union
		} else {
			result.And(union)
			if result.IsEmpty() {
				return result, true
			}
		}
	}

	if result == nil {
		// Every key was a wildcard: all positions match.
		result = roaring.New()
		result.AddRange(0, uint64(inv.n))
	}
	return result, true
}

// Positions expands a bitmap into ascending positions.
func Positions(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Sel filters ix through the inverted index when possible, falling back to
// the generic scan otherwise. Bitmap iteration yields ascending positions,
// so the resulting view preserves original relative order exactly like
// metagrid.Sel.
func Sel(ix metagrid.Index, inv *Index, dicts ...map[string]any) (metagrid.Index, error) {
	sel, err := query.NewSelection(dicts...)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		return ix, nil
	}

	if bm, ok := inv.Compile(sel); ok {
		return metagrid.NewMask(ix, Positions(bm))
	}
	return metagrid.Sel(ix, dicts...)
}
