package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summonEvent struct {
	SummonID  int64
	PlayerID  int64
	MonsterID int64
	Element   string
}

func TestSerializersPreserveStruct(t *testing.T) {
	in := summonEvent{SummonID: 7, PlayerID: 1, MonsterID: 42, Element: "FIRE"}

	for _, s := range []Serializer{NewMsgpack(), NewJSON()} {
		t.Run(s.ContentType(), func(t *testing.T) {
			data, err := s.Serialize(in)
			require.NoError(t, err)

			var out summonEvent
			require.NoError(t, s.Deserialize(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestEncodeReturnsOwnedBytes(t *testing.T) {
	a, err := Encode("first")
	require.NoError(t, err)
	_, err = Encode("second-value")
	require.NoError(t, err)

	var s string
	require.NoError(t, Decode(a, &s))
	assert.Equal(t, "first", s)
}

func TestByName(t *testing.T) {
	assert.Equal(t, "application/json", ByName("json").ContentType())
	assert.Equal(t, "application/msgpack", ByName("msgpack").ContentType())
	assert.Equal(t, "application/msgpack", ByName("").ContentType())
}
