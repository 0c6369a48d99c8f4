package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	random := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(random)

	inputs := map[string][]byte{
		"empty":      {},
		"small":      []byte("fire demon warrior"),
		"repetitive": bytes.Repeat([]byte("monster "), 2000),
		"random":     random,
	}

	for _, typ := range []Type{TypeNone, TypeSnappy, TypeLZ4, TypeZstd} {
		c, err := New(typ)
		require.NoError(t, err)
		assert.Equal(t, string(typ), c.Name())

		for name, in := range inputs {
			t.Run(string(typ)+"/"+name, func(t *testing.T) {
				packed, err := c.Compress(in)
				require.NoError(t, err)
				out, err := c.Decompress(packed)
				require.NoError(t, err)
				assert.Equal(t, len(in), len(out))
				assert.True(t, bytes.Equal(in, out))
			})
		}
	}
}

func TestLZ4ShrinksRepetitiveInput(t *testing.T) {
	c, err := New(TypeLZ4)
	require.NoError(t, err)
	in := bytes.Repeat([]byte("abcd"), 1000)
	packed, err := c.Compress(in)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(in)/4)
}

func TestLZ4RejectsCorruptInput(t *testing.T) {
	c, err := New(TypeLZ4)
	require.NoError(t, err)

	_, err = c.Decompress([]byte{1, 2})
	assert.Error(t, err)
	_, err = c.Decompress([]byte{0xff, 0xff, 0xff, 0x7f, 1, 2, 3})
	assert.Error(t, err)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New("brotli")
	assert.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())
}
