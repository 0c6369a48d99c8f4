package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	key     string
	value   []byte
	headers map[string]string
}

type fakeProducer struct {
	topic  string
	sent   []sent
	failAt int
	closed bool
}

func (f *fakeProducer) PublishObject(_ context.Context, s serializer.Serializer, key string, v any, headers map[string]string) error {
	if f.failAt > 0 && len(f.sent)+1 == f.failAt {
		return errors.New("broker unavailable")
	}
	data, err := s.Serialize(v)
	if err != nil {
		return err
	}
	f.sent = append(f.sent, sent{key: key, value: data, headers: headers})
	return nil
}

func (f *fakeProducer) Topic() string { return f.topic }

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher() (*KafkaPublisher, *fakeProducer, *fakeProducer, *fakeProducer) {
	b := &fakeProducer{topic: "battles"}
	r := &fakeProducer{topic: "rumbles"}
	s := &fakeProducer{topic: "summons"}
	return newKafkaPublisher(b, r, s, serializer.NewJSON(), logger.NewNoop(), nil), b, r, s
}

func TestPublishBattleKeyedByPlayer(t *testing.T) {
	p, battles, _, _ := newTestPublisher()
	rec := &model.BattleRecord{ID: 9, PlayerID: 42, WinnerID: 2, Decision: model.DecisionKnockout}

	require.NoError(t, p.PublishBattle(context.Background(), rec))
	require.Len(t, battles.sent, 1)
	assert.Equal(t, "42", battles.sent[0].key)
	assert.Equal(t, "battle", battles.sent[0].headers[headerEvent])

	var got model.BattleRecord
	require.NoError(t, json.Unmarshal(battles.sent[0].value, &got))
	assert.Equal(t, int64(2), got.WinnerID)
}

func TestPublishSummonsStopsOnError(t *testing.T) {
	p, _, _, summons := newTestPublisher()
	summons.failAt = 2
	recs := []*model.SummonRecord{{ID: 1, PlayerID: 5}, {ID: 2, PlayerID: 5}, {ID: 3, PlayerID: 5}}

	err := p.PublishSummons(context.Background(), recs)
	assert.Error(t, err)
	assert.Len(t, summons.sent, 1)
}

func TestCloseClosesAllProducers(t *testing.T) {
	p, b, r, s := newTestPublisher()
	require.NoError(t, p.Close())
	assert.True(t, b.closed)
	assert.True(t, r.closed)
	assert.True(t, s.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishRumble(context.Background(), &model.RumbleRecord{}))
	assert.NoError(t, p.Close())
}
