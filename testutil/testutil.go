package testutil

import (
	"sort"

	"github.com/longtsing/metagrid"
)

// GridRecords builds one record per combination of the given dimension
// values: a dense Cartesian grid. Keys expand in sorted order and values in
// the order given, so output order is deterministic. Each record carries a
// one-element payload row holding its combination number.
func GridRecords(dims map[string][]any) []*metagrid.Record {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := []*metagrid.Record{}
	combo := make(map[string]any, len(keys))

	var walk func(i int)
	walk = func(i int) {
		if i == len(keys) {
			meta := make(map[string]any, len(combo))
			for k, v := range combo {
				meta[k] = v
			}
			records = append(records, &metagrid.Record{
				Meta: meta,
				Data: []float64{float64(len(records))},
			})
			return
		}
		k := keys[i]
		for _, v := range dims[k] {
			combo[k] = v
			walk(i + 1)
		}
		delete(combo, k)
	}
	walk(0)

	return records
}

// Records builds one record per metadata mapping, payload rows numbered by
// position.
func Records(metas ...map[string]any) []*metagrid.Record {
	out := make([]*metagrid.Record, len(metas))
	for i, m := range metas {
		out[i] = &metagrid.Record{Meta: m, Data: []float64{float64(i)}}
	}
	return out
}
