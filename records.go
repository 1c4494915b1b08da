package metagrid

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/longtsing/metagrid/availability"
	"github.com/longtsing/metagrid/query"
)

// Record is a simple in-memory element: a metadata mapping plus an optional
// numeric payload row.
type Record struct {
	Meta map[string]any
	Data []float64
}

// Metadata returns the value stored under key, or nil when absent.
func (r *Record) Metadata(key string) any { return r.Meta[key] }

// MetadataAll returns a copy of the full metadata mapping.
func (r *Record) MetadataAll() map[string]any { return maps.Clone(r.Meta) }

// Values returns the payload row.
func (r *Record) Values() ([]float64, error) { return r.Data, nil }

// DefaultAliases maps common alternative key spellings onto canonical archive
// names. Backends pass it to WithAliases to accept either spelling in
// selections and orderings.
var DefaultAliases = map[string]string{
	"level":       "levelist",
	"variable":    "param",
	"parameter":   "param",
	"realization": "number",
	"realisation": "number",
	"klass":       "class",
}

// RecordIndex is a concrete in-memory collection of records. Like every
// Index it is immutable after construction; Sel and OrderBy return views.
type RecordIndex struct {
	records []*Record
	init    Init
	aliases map[string]string
	logger  *Logger
	coords  coordCache

	availOnce sync.Once
	avail     *xsync.MapOf[string, *availability.Availability]
}

// RecordIndexOption configures a RecordIndex at construction.
type RecordIndexOption func(*RecordIndex)

// WithAliases normalizes selection and ordering keys through the given
// mapping before compilation.
func WithAliases(aliases map[string]string) RecordIndexOption {
	return func(r *RecordIndex) {
		r.aliases = aliases
	}
}

// WithInit captures construction arguments; NewRecordIndex applies them as
// the construction-time pipeline (filter, then order).
func WithInit(init Init) RecordIndexOption {
	return func(r *RecordIndex) {
		r.init = init
	}
}

// WithRecordLogger sets the logger for query operations. Defaults to a no-op
// logger.
func WithRecordLogger(l *Logger) RecordIndexOption {
	return func(r *RecordIndex) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecordIndex builds an index over the given records and runs the
// construction-time pipeline, so the returned Index may be a view over the
// underlying RecordIndex.
func NewRecordIndex(records []*Record, opts ...RecordIndexOption) (Index, error) {
	r := &RecordIndex{
		records: records,
		logger:  NoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return Mutate(r, r.init)
}

// Len returns the number of records.
func (r *RecordIndex) Len() int { return len(r.records) }

// Get returns the record at position n.
func (r *RecordIndex) Get(n int) (Element, error) {
	if n < 0 || n >= len(r.records) {
		return nil, &ErrOutOfRange{Position: n, Len: len(r.records)}
	}
	return r.records[n], nil
}

// Sel filters the records, normalizing aliased keys first.
func (r *RecordIndex) Sel(dicts ...map[string]any) (Index, error) {
	normalized := normalizeDicts(r.aliases, dicts)
	out, err := Sel(r, normalized...)
	r.logger.LogSel(context.Background(), selKeys(normalized), r.Len(), lenOrZero(out), err)
	return out, err
}

// OrderBy sorts the records, normalizing aliased keys first.
func (r *RecordIndex) OrderBy(args ...any) (Index, error) {
	normalized := normalizeOrderArgs(r.aliases, args)
	out, err := OrderBy(r, normalized...)
	r.logger.LogOrderBy(context.Background(), nil, r.Len(), err)
	return out, err
}

// NewMaskIndex wraps derived views in a RecordMask so alias normalization
// survives composition.
func (r *RecordIndex) NewMaskIndex(positions []int) (Index, error) {
	m, err := NewMaskIndex(r, positions)
	if err != nil {
		return nil, err
	}
	return &RecordMask{MaskIndex: m, owner: r}, nil
}

// Coord returns the cached distinct values of a metadata key.
func (r *RecordIndex) Coord(key string) ([]any, error) {
	return r.coords.coord(r, normalizeKey(r.aliases, key))
}

// Availability summarizes the metadata combinations of the collection,
// memoized per key list.
func (r *RecordIndex) Availability(keys []string, opts ...AvailabilityOption) (*availability.Availability, error) {
	r.availOnce.Do(func() { r.avail = xsync.NewMapOf[string, *availability.Availability]() })

	cacheKey := strings.Join(keys, "\x1f")
	if av, ok := r.avail.Load(cacheKey); ok {
		return av, nil
	}
	av, err := BuildAvailability(r, keys, opts...)
	if err != nil {
		return nil, err
	}
	r.avail.Store(cacheKey, av)
	return av, nil
}

// RecordMask is the masked view over a RecordIndex; it keeps the owning
// index's alias normalization for further selections and orderings.
type RecordMask struct {
	*MaskIndex
	owner *RecordIndex
}

// Sel filters the masked view with the owner's aliases applied.
func (m *RecordMask) Sel(dicts ...map[string]any) (Index, error) {
	return Sel(m, normalizeDicts(m.owner.aliases, dicts)...)
}

// OrderBy sorts the masked view with the owner's aliases applied.
func (m *RecordMask) OrderBy(args ...any) (Index, error) {
	return OrderBy(m, normalizeOrderArgs(m.owner.aliases, args)...)
}

// NewMaskIndex keeps derived masks attached to the owning RecordIndex.
func (m *RecordMask) NewMaskIndex(positions []int) (Index, error) {
	mask, err := NewMaskIndex(m, positions)
	if err != nil {
		return nil, err
	}
	return &RecordMask{MaskIndex: mask, owner: m.owner}, nil
}

func normalizeKey(aliases map[string]string, key string) string {
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

func normalizeDicts(aliases map[string]string, dicts []map[string]any) []map[string]any {
	if len(aliases) == 0 {
		return dicts
	}
	out := make([]map[string]any, len(dicts))
	for i, d := range dicts {
		nd := make(map[string]any, len(d))
		for k, v := range d {
			nd[normalizeKey(aliases, k)] = v
		}
		out[i] = nd
	}
	return out
}

func normalizeOrderArgs(aliases map[string]string, args []any) []any {
	if len(aliases) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch av := a.(type) {
		case string:
			out[i] = normalizeKey(aliases, av)
		case query.KeyOrder:
			out[i] = query.KeyOrder{Key: normalizeKey(aliases, av.Key), Spec: av.Spec}
		case map[string]any:
			nd := make(map[string]any, len(av))
			for k, v := range av {
				nd[normalizeKey(aliases, k)] = v
			}
			out[i] = nd
		default:
			out[i] = a
		}
	}
	return out
}

func selKeys(dicts []map[string]any) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, d := range dicts {
		for k := range d {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func lenOrZero(ix Index) int {
	if ix == nil {
		return 0
	}
	return ix.Len()
}
