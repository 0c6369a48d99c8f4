package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func newTestClient(t *testing.T, w *memWriter, opts ...ClientOption) *Client {
	t.Helper()
	opts = append(opts, withWriterFactory(func(string) messageWriter { return w }))
	c, err := New(&Config{Brokers: []string{"localhost:9092"}}, opts...)
	require.NoError(t, err)
	return c
}

func TestPublishObject(t *testing.T) {
	w := &memWriter{}
	c := newTestClient(t, w)

	p, err := c.Producer("arena.history")
	require.NoError(t, err)

	err = p.PublishObject(context.Background(), serializer.NewJSON(), "42", map[string]int{"n": 1}, map[string]string{"event": "battle"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("42"), w.msgs[0].Key)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))

	headers := map[string]string{}
	for _, h := range w.msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "battle", headers["event"])
	assert.Equal(t, "application/json", headers["content-type"])
	assert.EqualValues(t, 1, p.Stats().MessagesSucceeded)
}

func TestProducerCachedPerTopic(t *testing.T) {
	c := newTestClient(t, &memWriter{})
	a, err := c.Producer("t")
	require.NoError(t, err)
	b, err := c.Producer("t")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = c.Producer("")
	assert.ErrorIs(t, err, ErrEmptyTopic)
}

func TestPublishFailureCounted(t *testing.T) {
	w := &memWriter{err: errors.New("broker down")}
	c := newTestClient(t, w, WithProducerMiddleware(LoggingMiddleware(logger.NewNoop())))
	p, err := c.Producer("t")
	require.NoError(t, err)

	err = p.Publish(context.Background(), &Message{Value: []byte("x")})
	assert.EqualError(t, err, "broker down")
	assert.EqualValues(t, 1, p.Stats().MessagesFailed)
}

func TestMiddlewareOrderAndRecovery(t *testing.T) {
	var order []string
	tag := func(name string) ProducerMiddleware {
		return func(ctx context.Context, msg *Message, next PublishFunc) error {
			order = append(order, name)
			return next(ctx, msg)
		}
	}
	boom := func(context.Context, *Message, PublishFunc) error { panic("boom") }

	c := newTestClient(t, &memWriter{}, WithProducerMiddleware(
		RecoveryMiddleware(logger.NewNoop()), tag("outer"), tag("inner"), boom,
	))
	p, err := c.Producer("t")
	require.NoError(t, err)

	err = p.Publish(context.Background(), &Message{})
	assert.ErrorIs(t, err, ErrProducerPanic)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestCloseClosesProducers(t *testing.T) {
	w := &memWriter{}
	c := newTestClient(t, w)
	p, err := c.Producer("t")
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), &Message{}), ErrProducerClosed)

	_, err = c.Producer("t")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(&Config{Brokers: []string{"no-port"}})
	assert.Error(t, err)

	_, err = New(&Config{SASL: &SASLConfig{Mechanism: "GSSAPI", Username: "u"}})
	assert.Error(t, err)
}
