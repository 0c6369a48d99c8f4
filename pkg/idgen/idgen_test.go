package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflakeMonotonic(t *testing.T) {
	g, err := NewSonyflake(Config{MachineID: 7})
	require.NoError(t, err)

	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id, err := g.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence(100)
	a, _ := s.NextID()
	b, _ := s.NextID()
	assert.Equal(t, int64(101), a)
	assert.Equal(t, int64(102), b)
}
