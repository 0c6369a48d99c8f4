package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, level Level) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l, err := New(&Config{Level: level, Format: JSONFormat}, WithWriteSyncer(zapcore.AddSync(buf)))
	require.NoError(t, err)
	return l, buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("file output without path", func(t *testing.T) {
		_, err := New(&Config{EnableFile: true})
		assert.ErrorIs(t, err, ErrInvalidOutputPath)
	})
}

func TestKeysAndValues(t *testing.T) {
	l, buf := newBufferLogger(t, DebugLevel)

	l.Info("battle resolved", "battle_id", int64(42), "winner_id", int64(7), "error", errors.New("none"))
	entry := lastEntry(t, buf)

	assert.Equal(t, "battle resolved", entry["msg"])
	assert.EqualValues(t, 42, entry["battle_id"])
	assert.EqualValues(t, 7, entry["winner_id"])
	assert.Equal(t, "none", entry["error"])
}

func TestZapFields(t *testing.T) {
	l, buf := newBufferLogger(t, DebugLevel)

	l.Warn("capacity exceeded", zap.Int64("player_id", 3), zap.Int("max_monsters", 10))
	entry := lastEntry(t, buf)

	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 3, entry["player_id"])
	assert.EqualValues(t, 10, entry["max_monsters"])
}

func TestLevelFilter(t *testing.T) {
	l, buf := newBufferLogger(t, WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNamed(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel)

	child := l.Named("service.battle")
	child.Info("locked", "monster_id", int64(9))
	entry := lastEntry(t, buf)

	assert.Equal(t, "service.battle", entry["logger"])
	assert.EqualValues(t, 9, entry["monster_id"])
}

func TestContextFields(t *testing.T) {
	l, buf := newBufferLogger(t, InfoLevel)

	ctx := WithPlayerID(WithRequestID(context.Background(), "req-1"), 11)
	l.InfoContext(ctx, "summon requested", "count", 3)
	entry := lastEntry(t, buf)

	assert.Equal(t, "req-1", entry["request_id"])
	assert.EqualValues(t, 11, entry["player_id"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoop()
	assert.NotPanics(t, func() {
		l.Named("x").InfoContext(context.Background(), "ignored", "a", 1)
		assert.NoError(t, l.Sync())
	})
}
