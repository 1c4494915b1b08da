package factorise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridRecords() []map[string]string {
	var out []map[string]string
	for _, p := range []string{"2t", "msl"} {
		for _, l := range []string{"500", "850", "1000"} {
			out = append(out, map[string]string{"param": p, "levelist": l})
		}
	}
	return out
}

func TestNewCollapsesDenseGrid(t *testing.T) {
	tree := New(gridRecords())

	// A full product factorizes into a single node without children.
	require.NotNil(t, tree.root)
	assert.Empty(t, tree.root.children)
	assert.Equal(t, []string{"2t", "msl"}, tree.root.values["param"])
	assert.Equal(t, []string{"1000", "500", "850"}, tree.root.values["levelist"])
	assert.Equal(t, 6, tree.Count())
}

func TestNewPartitionsSparseGrid(t *testing.T) {
	records := gridRecords()[:5] // drop msl/1000

	tree := New(records)
	assert.Equal(t, 5, tree.Count())

	// The dropped combination must not be reachable.
	sub := tree.Select(map[string][]string{"param": {"msl"}, "levelist": {"1000"}})
	assert.Equal(t, 0, sub.Count())
	sub = tree.Select(map[string][]string{"param": {"2t"}, "levelist": {"1000"}})
	assert.Equal(t, 1, sub.Count())
}

func TestNewDeduplicates(t *testing.T) {
	records := append(gridRecords(), map[string]string{"param": "2t", "levelist": "500"})
	tree := New(records)
	assert.Equal(t, 6, tree.Count())
}

func TestNewConstantKeyFolds(t *testing.T) {
	records := []map[string]string{
		{"class": "od", "param": "2t"},
		{"class": "od", "param": "msl"},
	}
	tree := New(records)

	require.NotNil(t, tree.root)
	assert.Empty(t, tree.root.children)
	assert.Equal(t, []string{"od"}, tree.root.values["class"])
	assert.Equal(t, 2, tree.Count())
}

func TestNewRaggedKeySets(t *testing.T) {
	records := []map[string]string{
		{"param": "2t", "levelist": "500"},
		{"param": "msl", "levelist": "850"},
		{"param": "tp"}, // surface field, no level
	}
	tree := New(records)

	assert.Equal(t, 3, tree.Count())
	assert.Equal(t, 1, tree.Select(map[string][]string{"param": {"tp"}}).Count())
}

func TestEmptyTree(t *testing.T) {
	tree := New(nil)
	assert.Equal(t, 0, tree.Count())
	assert.Empty(t, tree.UniqueValues())
	for range tree.Iterate() {
		t.Fatal("empty tree must not yield combinations")
	}
}

func TestIterate(t *testing.T) {
	tree := New(gridRecords())

	var combos []map[string]string
	for c := range tree.Iterate() {
		combos = append(combos, c)
	}

	require.Len(t, combos, 6)
	seen := make(map[string]struct{})
	for _, c := range combos {
		require.Len(t, c, 2)
		seen[c["param"]+"/"+c["levelist"]] = struct{}{}
	}
	assert.Len(t, seen, 6)
}

func TestIterateEarlyStop(t *testing.T) {
	tree := New(gridRecords())

	n := 0
	for range tree.Iterate() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestUniqueValues(t *testing.T) {
	tree := New(gridRecords()[:5])

	uniques := tree.UniqueValues()
	assert.Equal(t, []string{"2t", "msl"}, uniques["param"])
	assert.Equal(t, []string{"1000", "500", "850"}, uniques["levelist"])
}

func TestSelect(t *testing.T) {
	tree := New(gridRecords())

	sub := tree.Select(map[string][]string{"levelist": {"500", "850"}})
	assert.Equal(t, 4, sub.Count())

	uniques := sub.UniqueValues()
	assert.Equal(t, []string{"500", "850"}, uniques["levelist"])
	assert.Equal(t, []string{"2t", "msl"}, uniques["param"])

	// Unknown values select nothing.
	assert.Equal(t, 0, tree.Select(map[string][]string{"levelist": {"925"}}).Count())

	// Empty requests and empty allowed lists are no-ops.
	assert.Equal(t, 6, tree.Select(nil).Count())
	assert.Equal(t, 6, tree.Select(map[string][]string{"levelist": {}}).Count())

	// Keys absent from the records are unconstrained.
	assert.Equal(t, 6, tree.Select(map[string][]string{"expver": {"0001"}}).Count())
}

func TestSelectDoesNotMutate(t *testing.T) {
	tree := New(gridRecords())
	_ = tree.Select(map[string][]string{"param": {"2t"}})
	assert.Equal(t, 6, tree.Count())
}

func TestMissing(t *testing.T) {
	records := gridRecords()[:5] // msl/1000 absent

	tree := New(records)
	missing := tree.Missing(map[string][]string{
		"param":    {"2t", "msl"},
		"levelist": {"500", "850", "1000"},
	})

	assert.Equal(t, 1, missing.Count())
	for c := range missing.Iterate() {
		assert.Equal(t, "msl", c["param"])
		assert.Equal(t, "1000", c["levelist"])
	}
}

func TestMissingNothing(t *testing.T) {
	tree := New(gridRecords())
	missing := tree.Missing(map[string][]string{
		"param":    {"2t"},
		"levelist": {"500"},
	})
	assert.Equal(t, 0, missing.Count())
}

func TestVisitDepths(t *testing.T) {
	records := gridRecords()[:5]
	tree := New(records)

	maxDepth := 0
	nodes := 0
	tree.Visit(func(values map[string][]string, depth int) {
		nodes++
		if depth > maxDepth {
			maxDepth = depth
		}
	})

	assert.Greater(t, nodes, 1)
	assert.GreaterOrEqual(t, maxDepth, 1)
}
