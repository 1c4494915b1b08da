// Package metagrid is a lazy, composable indexing and query engine over
// large heterogeneous collections of metadata-tagged elements.
//
// Clients express what subset they want (a selection over metadata keys) and
// in what order they want it (a multi-key ordering) without materializing
// the collection. Filtering, ordering, slicing and concatenation compose
// arbitrarily; every operation returns a new immutable view holding only a
// position list, never copies of the underlying elements.
//
// # Quick Start
//
//	ix, _ := metagrid.NewRecordIndex(records)
//
//	// Filter, then order. Both return new views.
//	view, _ := ix.Sel(map[string]any{"param": "2t", "levelist": []int{500, 850}})
//	view, _ = view.OrderBy("date", query.Desc("levelist"))
//
//	// Slice and mask like any random-access sequence.
//	head, _ := metagrid.Slice(view, 0, 10)
//
//	// Concatenate heterogeneous collections into one logical sequence.
//	all := metagrid.NewMultiIndex(ix, other)
//
// Selection distributes over concatenation: filtering a MultiIndex filters
// each child and rebuilds the concatenation rather than flattening it.
//
// # Availability
//
// BuildAvailability summarizes which metadata combinations exist, and
// IsFullHypercube reports whether the collection forms a dense Cartesian
// grid over its varying dimensions:
//
//	av, _ := metagrid.BuildAvailability(ix, []string{"param", "levelist", "date"})
//	fmt.Print(av.Render())
//	dense := metagrid.IsFullHypercube(ix, av)
//
// # Key Features
//
//   - Lazy masked views; O(1) state per pipeline link
//   - Stable multi-key ordering with explicit rank lists
//   - Lazy type coercion between numeric and string metadata
//   - Roaring-bitmap acceleration for enumerable selections (package invidx)
//   - Availability factorization with hypercube completeness checking
package metagrid
