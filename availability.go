package metagrid

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/longtsing/metagrid/availability"
)

// ExcludeKeys is the fixed set of bookkeeping and statistics keys stripped
// from element metadata before availability summarization.
var ExcludeKeys = []string{
	"_param_id",
	"mean",
	"std",
	"min",
	"max",
	"valid",
	"param_level",
	"_path",
	"_length",
	"_offset",
}

// MetadataLister is implemented by elements that can expose their full
// metadata mapping, used when no explicit key list is given.
type MetadataLister interface {
	MetadataAll() map[string]any
}

type availabilityOptions struct {
	logger           *Logger
	progressInterval time.Duration
	excludeKeys      []string
}

// AvailabilityOption configures availability builds.
type AvailabilityOption func(*availabilityOptions)

// WithLogger sets the logger used for progress reporting. Defaults to a
// no-op logger.
func WithLogger(l *Logger) AvailabilityOption {
	return func(o *availabilityOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgressInterval sets the minimum interval between progress log lines
// during the metadata scan. Defaults to one second.
func WithProgressInterval(d time.Duration) AvailabilityOption {
	return func(o *availabilityOptions) {
		if d > 0 {
			o.progressInterval = d
		}
	}
}

// WithExcludeKeys replaces the default bookkeeping exclusion set.
func WithExcludeKeys(keys ...string) AvailabilityOption {
	return func(o *availabilityOptions) {
		o.excludeKeys = keys
	}
}

// BuildAvailability scans every element's metadata and factorizes it into an
// availability summary. When keys is non-empty, exactly those keys are read
// per element; otherwise elements must implement MetadataLister. Bookkeeping
// keys and nil values are stripped. The scan is O(n) and reports progress
// through the configured logger, throttled to the progress interval.
func BuildAvailability(ix Index, keys []string, opts ...AvailabilityOption) (*availability.Availability, error) {
	o := &availabilityOptions{
		logger:           NoopLogger(),
		progressInterval: time.Second,
		excludeKeys:      ExcludeKeys,
	}
	for _, opt := range opts {
		opt(o)
	}

	excluded := make(map[string]struct{}, len(o.excludeKeys))
	for _, k := range o.excludeKeys {
		excluded[k] = struct{}{}
	}

	ctx := context.Background()
	limiter := rate.NewLimiter(rate.Every(o.progressInterval), 1)
	n := ix.Len()
	records := make([]map[string]any, 0, n)

	for i := 0; i < n; i++ {
		e, err := ix.Get(i)
		if err != nil {
			o.logger.LogAvailability(ctx, i, err)
			return nil, err
		}

		var dic map[string]any
		if len(keys) > 0 {
			dic = make(map[string]any, len(keys))
			for _, k := range keys {
				dic[k] = e.Metadata(k)
			}
		} else {
			ml, ok := e.(MetadataLister)
			if !ok {
				err := notImplemented(e, "MetadataAll")
				o.logger.LogAvailability(ctx, i, err)
				return nil, err
			}
			dic = ml.MetadataAll()
		}

		for k, v := range dic {
			if _, skip := excluded[k]; skip || v == nil {
				delete(dic, k)
			}
		}
		records = append(records, dic)

		if limiter.Allow() {
			o.logger.DebugContext(ctx, "building availability", "done", i+1, "total", n)
		}
	}

	o.logger.LogAvailability(ctx, len(records), nil)
	return availability.FromRecords(records), nil
}

// IsFullHypercube reports whether the collection realizes every combination
// of its varying metadata dimensions exactly once: the product of the
// cardinalities of all keys with more than one distinct value must equal the
// collection length.
//
// This is a necessary, not sufficient, check: a collection with a duplicated
// combination and a matching absent combination passes by coincidence.
// Callers depending on cheap semantics get exactly that.
func IsFullHypercube(ix Index, av *availability.Availability) bool {
	expected := 1
	for _, vals := range av.UniqueValues() {
		if len(vals) > 1 {
			expected *= len(vals)
		}
	}
	return ix.Len() == expected
}
