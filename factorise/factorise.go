package factorise

import (
	"iter"
	"maps"
	"sort"
	"strings"
)

// Tree is a factorization tree over string-canonical metadata combinations.
// Trees are immutable: Select and Missing return new trees.
type Tree struct {
	root *node
}

type node struct {
	values   map[string][]string
	children []*node
}

// New builds a tree from the given records. Records are deduplicated;
// ragged inputs (records with differing key sets) are grouped by key set
// before factorization.
func New(records []map[string]string) *Tree {
	unique := dedup(records)
	if len(unique) == 0 {
		return &Tree{}
	}

	groups := groupByKeySet(unique)
	if len(groups) == 1 {
		g := groups[0]
		return &Tree{root: factor(g.records, g.keys)}
	}

	root := &node{values: map[string][]string{}}
	for _, g := range groups {
		root.children = append(root.children, factor(g.records, g.keys))
	}
	return &Tree{root: root}
}

func dedup(records []map[string]string) []map[string]string {
	seen := make(map[string]struct{}, len(records))
	out := make([]map[string]string, 0, len(records))
	for _, r := range records {
		sig := signature(r)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, r)
	}
	return out
}

func signature(r map[string]string) string {
	keys := sortedKeys(r)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r[k])
		b.WriteByte('\x1f')
	}
	return b.String()
}

type group struct {
	keys    []string
	records []map[string]string
}

func groupByKeySet(records []map[string]string) []group {
	byKeys := make(map[string]*group)
	var order []string
	for _, r := range records {
		keys := sortedKeys(r)
		sig := strings.Join(keys, "\x1f")
		g, ok := byKeys[sig]
		if !ok {
			g = &group{keys: keys}
			byKeys[sig] = g
			order = append(order, sig)
		}
		g.records = append(g.records, r)
	}
	sort.Strings(order)
	out := make([]group, len(order))
	for i, sig := range order {
		out[i] = *byKeys[sig]
	}
	return out
}

// factor builds a node for a set of unique records sharing the same key set.
// Constant keys fold into the node request, a dense grid collapses into a
// single compact node, everything else partitions on the smallest varying
// key.
func factor(records []map[string]string, keys []string) *node {
	n := &node{values: map[string][]string{}}

	distinct := make(map[string][]string, len(keys))
	var varying []string
	for _, k := range keys {
		vals := distinctValues(records, k)
		distinct[k] = vals
		if len(vals) == 1 {
			n.values[k] = vals
		} else {
			varying = append(varying, k)
		}
	}
	if len(varying) == 0 {
		return n
	}

	// Records are deduplicated, so matching the full product means every
	// combination of the varying keys is present exactly once.
	product := 1
	for _, k := range varying {
		product *= len(distinct[k])
		if product > len(records) {
			break
		}
	}
	if product == len(records) {
		for _, k := range varying {
			n.values[k] = distinct[k]
		}
		return n
	}

	split := varying[0]
	for _, k := range varying[1:] {
		if len(distinct[k]) < len(distinct[split]) {
			split = k
		}
	}
	rest := make([]string, 0, len(varying)-1)
	for _, k := range varying {
		if k != split {
			rest = append(rest, k)
		}
	}

	for _, v := range distinct[split] {
		var subset []map[string]string
		for _, r := range records {
			if r[split] == v {
				subset = append(subset, r)
			}
		}
		child := factor(subset, rest)
		child.values[split] = []string{v}
		n.children = append(n.children, child)
	}
	return n
}

func distinctValues(records []map[string]string, key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		v := r[key]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of distinct combinations in the tree.
func (t *Tree) Count() int {
	if t == nil || t.root == nil {
		return 0
	}
	return count(t.root)
}

func count(n *node) int {
	c := 1
	for _, vs := range n.values {
		c *= len(vs)
	}
	if len(n.children) == 0 {
		return c
	}
	s := 0
	for _, ch := range n.children {
		s += count(ch)
	}
	return c * s
}

// Iterate yields every combination in the tree, in deterministic order.
func (t *Tree) Iterate() iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		if t == nil || t.root == nil {
			return
		}
		iterNode(t.root, map[string]string{}, yield)
	}
}

func iterNode(n *node, acc map[string]string, yield func(map[string]string) bool) bool {
	keys := sortedKeys(n.values)
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == len(keys) {
			if len(n.children) == 0 {
				return yield(maps.Clone(acc))
			}
			for _, ch := range n.children {
				if !iterNode(ch, acc, yield) {
					return false
				}
			}
			return true
		}
		k := keys[i]
		for _, v := range n.values[k] {
			acc[k] = v
			if !rec(i + 1) {
				return false
			}
		}
		delete(acc, k)
		return true
	}
	return rec(0)
}

// UniqueValues returns the sorted distinct values of every key occurring in
// the tree.
func (t *Tree) UniqueValues() map[string][]string {
	out := make(map[string][]string)
	if t == nil || t.root == nil {
		return out
	}
	acc := make(map[string]map[string]struct{})
	collect(t.root, acc)
	for k, set := range acc {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[k] = vals
	}
	return out
}

func collect(n *node, acc map[string]map[string]struct{}) {
	for k, vs := range n.values {
		set, ok := acc[k]
		if !ok {
			set = make(map[string]struct{})
			acc[k] = set
		}
		for _, v := range vs {
			set[v] = struct{}{}
		}
	}
	for _, ch := range n.children {
		collect(ch, acc)
	}
}

// Select returns a new tree keeping only combinations whose value for every
// requested key is among the allowed values. Keys absent from a branch are
// unconstrained there; empty allowed lists are ignored.
func (t *Tree) Select(req map[string][]string) *Tree {
	if t == nil || t.root == nil || len(req) == 0 {
		return t
	}
	allowed := make(map[string]map[string]struct{}, len(req))
	for k, vs := range req {
		if len(vs) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(vs))
		for _, v := range vs {
			set[v] = struct{}{}
		}
		allowed[k] = set
	}
	if len(allowed) == 0 {
		return t
	}
	return &Tree{root: selectNode(t.root, allowed)}
}

func selectNode(n *node, allowed map[string]map[string]struct{}) *node {
	values := make(map[string][]string, len(n.values))
	for k, vs := range n.values {
		set, constrained := allowed[k]
		if !constrained {
			values[k] = vs
			continue
		}
		var kept []string
		for _, v := range vs {
			if _, ok := set[v]; ok {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		values[k] = kept
	}

	var children []*node
	for _, ch := range n.children {
		if sc := selectNode(ch, allowed); sc != nil {
			children = append(children, sc)
		}
	}
	if len(n.children) > 0 && len(children) == 0 {
		return nil
	}
	return &node{values: values, children: children}
}

// Missing enumerates the combinations of the requested keys that are absent
// from the tree and returns them factorized.
func (t *Tree) Missing(req map[string][]string) *Tree {
	keys := sortedKeys(req)
	var missing []map[string]string

	combo := make(map[string]string, len(keys))
	var walk func(i int)
	walk = func(i int) {
		if i == len(keys) {
			probe := make(map[string][]string, len(combo))
			for k, v := range combo {
				probe[k] = []string{v}
			}
			if t.Select(probe).Count() == 0 {
				missing = append(missing, maps.Clone(combo))
			}
			return
		}
		k := keys[i]
		for _, v := range req[k] {
			combo[k] = v
			walk(i + 1)
		}
		delete(combo, k)
	}
	walk(0)

	return New(missing)
}

// Visit walks the tree depth-first, calling fn with each node's request
// fragment and its depth. The passed map must not be mutated.
func (t *Tree) Visit(fn func(values map[string][]string, depth int)) {
	if t == nil || t.root == nil {
		return
	}
	visit(t.root, 0, fn)
}

func visit(n *node, depth int, fn func(values map[string][]string, depth int)) {
	fn(n.values, depth)
	for _, ch := range n.children {
		visit(ch, depth+1, fn)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
