package metagrid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longtsing/metagrid"
	"github.com/longtsing/metagrid/query"
	"github.com/longtsing/metagrid/testutil"
)

func newTestIndex(t *testing.T) metagrid.Index {
	t.Helper()

	ix, err := metagrid.NewRecordIndex(testutil.Records(
		map[string]any{"param": "2t", "levelist": 1000, "number": 0},
		map[string]any{"param": "msl", "levelist": 1000, "number": 0},
		map[string]any{"param": "2t", "levelist": 850, "number": 0},
		map[string]any{"param": "msl", "levelist": 850, "number": 0},
		map[string]any{"param": "2t", "levelist": 500, "number": 1},
		map[string]any{"param": "msl", "levelist": 500, "number": 1},
	))
	require.NoError(t, err)

	return ix
}

func metaColumn(t *testing.T, ix metagrid.Index, key string) []any {
	t.Helper()

	out := make([]any, ix.Len())
	for i := range out {
		e, err := ix.Get(i)
		require.NoError(t, err)
		out[i] = e.Metadata(key)
	}
	return out
}

func TestSelEmptyIsIdentity(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel()
	require.NoError(t, err)
	require.Same(t, ix, out)

	out, err = ix.Sel(map[string]any{})
	require.NoError(t, err)
	require.Same(t, ix, out)
}

func TestSelFiltersAndPreservesOrder(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []any{1000, 850, 500}, metaColumn(t, out, "levelist"))
}

func TestSelConjunction(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "2t", "levelist": []int{500, 850}})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []any{850, 500}, metaColumn(t, out, "levelist"))
}

func TestSelNoMatchesYieldsEmptyView(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "tp"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())

	// An empty view is still a view; further operations stay well defined.
	out, err = out.Sel(map[string]any{"levelist": 500})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestSelDoesNotMutateReceiver(t *testing.T) {
	ix := newTestIndex(t)
	before := ix.Len()

	_, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)

	assert.Equal(t, before, ix.Len())
	assert.Equal(t, []any{"2t", "msl", "2t", "msl", "2t", "msl"}, metaColumn(t, ix, "param"))
}

func TestSelPartitionsLength(t *testing.T) {
	ix := newTestIndex(t)

	hits, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)
	rest, err := ix.Sel(map[string]any{"param": func(v any) bool { return v != "2t" }})
	require.NoError(t, err)

	assert.Equal(t, ix.Len(), hits.Len()+rest.Len())
}

func TestSelCoercesQueryValues(t *testing.T) {
	ix := newTestIndex(t)

	// Stored levelist values are ints; string query values must still match.
	out, err := ix.Sel(map[string]any{"levelist": []string{"500"}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestOrderByEmptyIsIdentity(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.OrderBy()
	require.NoError(t, err)
	require.Same(t, ix, out)
}

func TestOrderBySortsWithoutMutating(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.OrderBy("levelist", "param")
	require.NoError(t, err)

	assert.Equal(t, []any{500, 500, 850, 850, 1000, 1000}, metaColumn(t, out, "levelist"))
	assert.Equal(t, []any{"2t", "msl", "2t", "msl", "2t", "msl"}, metaColumn(t, out, "param"))

	// Receiver untouched.
	assert.Equal(t, []any{1000, 1000, 850, 850, 500, 500}, metaColumn(t, ix, "levelist"))
}

func TestOrderByIsStable(t *testing.T) {
	ix := newTestIndex(t)

	// number ties in pairs; within each tie the prior relative order holds.
	out, err := ix.OrderBy("number")
	require.NoError(t, err)

	assert.Equal(t, []any{0, 0, 0, 0, 1, 1}, metaColumn(t, out, "number"))
	assert.Equal(t, []any{1000, 1000, 850, 850, 500, 500}, metaColumn(t, out, "levelist"))
}

func TestOrderByDescendingAndRank(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.OrderBy(query.Desc("levelist"), query.ByRank("param", "msl", "2t"))
	require.NoError(t, err)

	assert.Equal(t, []any{1000, 1000, 850, 850, 500, 500}, metaColumn(t, out, "levelist"))
	assert.Equal(t, []any{"msl", "2t", "msl", "2t", "msl", "2t"}, metaColumn(t, out, "param"))
}

func TestSelThenOrderByComposes(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)
	out, err = out.OrderBy("levelist")
	require.NoError(t, err)

	assert.Equal(t, []any{500, 850, 1000}, metaColumn(t, out, "levelist"))
	assert.Equal(t, []any{"2t", "2t", "2t"}, metaColumn(t, out, "param"))
}

func TestGetOutOfRange(t *testing.T) {
	ix := newTestIndex(t)

	for _, n := range []int{-1, ix.Len(), ix.Len() + 10} {
		_, err := ix.Get(n)
		var oor *metagrid.ErrOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, n, oor.Position)
	}
}

func TestSlice(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		name              string
		start, stop, step int
		want              []any
	}{
		{"middle", 1, 4, 1, []any{1000, 850, 850}},
		{"negative start", -2, 6, 1, []any{500, 500}},
		{"negative stop", 0, -4, 1, []any{1000, 1000}},
		{"clamped", 0, 100, 1, []any{1000, 1000, 850, 850, 500, 500}},
		{"step two", 0, 6, 2, []any{1000, 850, 500}},
		{"reverse", 5, -7, -1, []any{500, 500, 850, 850, 1000, 1000}},
		{"empty", 4, 2, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := metagrid.SliceStep(ix, tt.start, tt.stop, tt.step)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), out.Len())
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, metaColumn(t, out, "levelist"))
			}
		})
	}

	_, err := metagrid.SliceStep(ix, 0, 6, 0)
	require.Error(t, err)
}

func TestWhere(t *testing.T) {
	ix := newTestIndex(t)

	out, err := metagrid.Where(ix, []bool{true, false, false, true, false, true})
	require.NoError(t, err)
	assert.Equal(t, []any{"2t", "msl", "msl"}, metaColumn(t, out, "param"))
	assert.Equal(t, []any{1000, 850, 500}, metaColumn(t, out, "levelist"))

	_, err = metagrid.Where(ix, []bool{true, false})
	var mismatch *metagrid.ErrMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestMaskChainStaysFlatToUse(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)
	out, err = out.Sel(map[string]any{"levelist": []int{500, 850}})
	require.NoError(t, err)
	out, err = metagrid.Slice(out, 0, 1)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	e, err := out.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 850, e.Metadata("levelist"))
}

func TestMutatePipeline(t *testing.T) {
	records := testutil.Records(
		map[string]any{"param": "msl", "levelist": 850},
		map[string]any{"param": "2t", "levelist": 1000},
		map[string]any{"param": "2t", "levelist": 500},
		map[string]any{"param": "tp", "levelist": 500},
	)

	ix, err := metagrid.NewRecordIndex(records, metagrid.WithInit(metagrid.Init{
		Kwargs:  map[string]any{"param": []string{"2t", "msl"}},
		OrderBy: []any{"levelist"},
	}))
	require.NoError(t, err)

	// tp filtered out, remainder ordered by levelist.
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, []any{500, 850, 1000}, metaColumn(t, ix, "levelist"))
	assert.Equal(t, []any{"2t", "msl", "2t"}, metaColumn(t, ix, "param"))
}

func TestAliasesNormalizeKeys(t *testing.T) {
	ix, err := metagrid.NewRecordIndex(testutil.Records(
		map[string]any{"param": "2t", "levelist": 500},
		map[string]any{"param": "msl", "levelist": 850},
	), metagrid.WithAliases(metagrid.DefaultAliases))
	require.NoError(t, err)

	out, err := ix.Sel(map[string]any{"level": 850, "variable": "msl"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())

	// Aliases survive through derived views.
	out, err = out.Sel(map[string]any{"parameter": "msl"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	out, err = ix.OrderBy("level")
	require.NoError(t, err)
	assert.Equal(t, []any{500, 850}, metaColumn(t, out, "levelist"))
}

func TestCoord(t *testing.T) {
	ix := newTestIndex(t)

	vals, err := metagrid.Coord(ix, "levelist")
	require.NoError(t, err)
	assert.Equal(t, []any{1000, 850, 500}, vals)

	// Second call is served from the cache and stays identical.
	again, err := metagrid.Coord(ix, "levelist")
	require.NoError(t, err)
	assert.Equal(t, vals, again)

	vals, err = metagrid.Coord(ix, "param")
	require.NoError(t, err)
	assert.Equal(t, []any{"2t", "msl"}, vals)
}

func TestCoordOnView(t *testing.T) {
	ix := newTestIndex(t)

	out, err := ix.Sel(map[string]any{"param": "2t"})
	require.NoError(t, err)

	vals, err := metagrid.Coord(out, "levelist")
	require.NoError(t, err)
	assert.Equal(t, []any{1000, 850, 500}, vals)
}

func TestForwardingIndex(t *testing.T) {
	ix := newTestIndex(t)
	fwd := metagrid.NewForwardingIndex(ix)

	assert.Equal(t, ix.Len(), fwd.Len())
	require.Same(t, ix, fwd.Wrapped())

	_, err := fwd.Get(0)
	require.ErrorIs(t, err, metagrid.ErrNotImplemented)
	_, err = fwd.Sel(map[string]any{"param": "2t"})
	require.ErrorIs(t, err, metagrid.ErrNotImplemented)
	_, err = fwd.OrderBy("param")
	require.ErrorIs(t, err, metagrid.ErrNotImplemented)
}

func TestNewMaskIndexValidatesPositions(t *testing.T) {
	ix := newTestIndex(t)

	_, err := metagrid.NewMaskIndex(ix, []int{0, 6})
	var oor *metagrid.ErrOutOfRange
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, 6, oor.Position)

	m, err := metagrid.NewMaskIndex(ix, []int{5, 0, 5})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []int{5, 0, 5}, m.Positions())
}
