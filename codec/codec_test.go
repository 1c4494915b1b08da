package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.IsType(t, JSON{}, c)

	c, ok = ByName("jsoniter")
	require.True(t, ok)
	assert.IsType(t, Fast{}, c)

	_, ok = ByName("msgpack")
	require.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	in := map[string]any{"param": "2t", "levelist": 500.0}

	for _, c := range []Codec{JSON{}, Fast{}} {
		b, err := c.Marshal(in)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, c.Unmarshal(b, &out))
		assert.Equal(t, in, out, "%T", c)
	}
}

func TestMustMarshal(t *testing.T) {
	b := MustMarshal(Default, map[string]any{"k": "v"})
	assert.JSONEq(t, `{"k":"v"}`, string(b))

	assert.Panics(t, func() {
		MustMarshal(Default, func() {})
	})
}
