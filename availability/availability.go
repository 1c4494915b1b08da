package availability

import (
	"compress/gzip"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/longtsing/metagrid/codec"
	"github.com/longtsing/metagrid/factorise"
	"github.com/longtsing/metagrid/query"
)

// Request constrains keys to allowed canonical values.
type Request = map[string][]string

// Combination is one fully-specified metadata combination.
type Combination = map[string]string

// Tree is the narrow contract the summarizer needs from a factorization
// tree. The default implementation is package factorise.
type Tree interface {
	Select(req Request) Tree
	Missing(req Request) Tree
	Count() int
	Iterate() iter.Seq[Combination]
	UniqueValues() map[string][]string
	Visit(fn func(values Request, depth int))
}

// treeAdapter lifts the concrete factorise tree into the Tree contract.
type treeAdapter struct {
	t *factorise.Tree
}

func (a treeAdapter) Select(req Request) Tree      { return treeAdapter{a.t.Select(req)} }
func (a treeAdapter) Missing(req Request) Tree     { return treeAdapter{a.t.Missing(req)} }
func (a treeAdapter) Count() int                   { return a.t.Count() }
func (a treeAdapter) Iterate() iter.Seq[Combination] { return a.t.Iterate() }
func (a treeAdapter) UniqueValues() map[string][]string { return a.t.UniqueValues() }
func (a treeAdapter) Visit(fn func(values Request, depth int)) { a.t.Visit(fn) }

// Availability is a read-only summary of the metadata combinations present
// in a collection.
type Availability struct {
	tree Tree
}

// New wraps an existing tree.
func New(tree Tree) *Availability {
	return &Availability{tree: tree}
}

// FromRecords canonicalizes the given metadata records to strings (dropping
// nil values) and factorizes them with the default tree implementation.
func FromRecords(records []map[string]any) *Availability {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		row := make(map[string]string, len(r))
		for k, v := range r {
			if v == nil {
				continue
			}
			row[k] = query.Canonical(v)
		}
		rows = append(rows, row)
	}
	return New(treeAdapter{factorise.New(rows)})
}

// FromFile loads a JSON list of metadata records from path and factorizes
// it. Files ending in .gz or .zst are decompressed transparently.
func FromFile(path string) (*Availability, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []map[string]any
	if err := codec.Default.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromRecords(records), nil
}

// Select returns a new Availability keeping only combinations matching the
// request.
func (a *Availability) Select(req Request) *Availability {
	return New(a.tree.Select(req))
}

// Missing returns a new Availability enumerating the requested combinations
// absent from the summary.
func (a *Availability) Missing(req Request) *Availability {
	return New(a.tree.Missing(req))
}

// Count returns the number of distinct combinations.
func (a *Availability) Count() int { return a.tree.Count() }

// Iterate yields every combination.
func (a *Availability) Iterate() iter.Seq[Combination] { return a.tree.Iterate() }

// UniqueValues returns the distinct values per key.
func (a *Availability) UniqueValues() map[string][]string {
	return a.tree.UniqueValues()
}

// Render produces an indented textual rendering of the tree: one line per
// node, keys ordered by first appearance, multi-value keys shown as sorted
// lists.
func (a *Availability) Render() string {
	var text strings.Builder
	indent := make(map[int]int)
	order := make(map[string]int)

	a.tree.Visit(func(values Request, depth int) {
		if len(values) == 0 {
			return
		}

		if _, ok := indent[depth]; !ok {
			indent[depth] = len(indent) * 3
		}
		text.WriteString(strings.Repeat(" ", indent[depth]))

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := order[k]; !ok {
				order[k] = len(order)
			}
		}
		sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

		sep := ""
		for _, k := range keys {
			text.WriteString(sep)
			text.WriteString(k)
			text.WriteString("=")

			v := append([]string(nil), values[k]...)
			sort.Strings(v)
			if len(v) == 1 {
				text.WriteString(v[0])
			} else {
				text.WriteString("[")
				text.WriteString(strings.Join(v, ", "))
				text.WriteString("]")
			}
			sep = ", "
		}
		text.WriteString("\n")
	})

	return text.String()
}

// MakeRequest canonicalizes arbitrary metadata values into a Request.
// Scalars become singletons; slices expand element-wise.
func MakeRequest(m map[string]any) (Request, error) {
	sel, err := query.NewSelection(m)
	if err != nil {
		return nil, err
	}
	req := make(Request, len(m))
	for _, k := range sel.Keys() {
		vals, ok := sel.Values(k)
		if !ok {
			continue
		}
		canon := make([]string, len(vals))
		for i, v := range vals {
			canon[i] = query.Canonical(v)
		}
		req[k] = canon
	}
	return req, nil
}
