// Package invidx accelerates metadata selections with an inverted index
// backed by roaring bitmaps.
//
// Supported conditions:
// - scalar equality
// - list membership
//
// Wildcard keys impose no constraint; callable predicates cannot be compiled
// and fall back to scanning. Postings are keyed by the canonical string form
// of each value, so numeric and string representations of the same value
// unify, matching the engine's lazy coercion rule.
//
//	inv, _ := invidx.Build(ix, "param", "levelist")
//	view, _ := invidx.Sel(ix, inv, map[string]any{"param": "2t"})
//
// The index describes a fixed snapshot of the collection; collections here
// are immutable, so there is no removal path.
package invidx
