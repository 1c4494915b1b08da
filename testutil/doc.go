// Package testutil provides helpers for building deterministic test
// collections.
//
// This package is intended for use in tests and benchmarks only.
//
//	records := testutil.GridRecords(map[string][]any{
//	    "param":    {"2t", "msl"},
//	    "levelist": {500, 850},
//	})
//	ix, _ := metagrid.NewRecordIndex(records)
//
// GridRecords produces one record per combination of the given dimension
// values, in deterministic order, so collections built from it are full
// hypercubes by construction.
package testutil
