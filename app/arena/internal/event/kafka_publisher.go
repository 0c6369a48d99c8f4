package event

import (
	"context"
	"errors"
	"strconv"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/mq/kafka"
	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
)

const headerEvent = "event"

// objectProducer *kafka.Producer 中用到的部分
type objectProducer interface {
	PublishObject(ctx context.Context, s serializer.Serializer, key string, v any, headers map[string]string) error
	Topic() string
	Close() error
}

// KafkaPublisher 以玩家 ID 为消息键，同一玩家的事件落在同一分区
type KafkaPublisher struct {
	battles objectProducer
	rumbles objectProducer
	summons objectProducer
	codec   serializer.Serializer
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher 为三个主题创建生产者
func NewKafkaPublisher(client *kafka.Client, cfg *Config, l logger.Logger, m *metrics.ArenaMetrics) (*KafkaPublisher, error) {
	c, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(c); err != nil {
		return nil, err
	}

	battles, err := client.Producer(c.BattleTopic)
	if err != nil {
		return nil, err
	}
	rumbles, err := client.Producer(c.RumbleTopic)
	if err != nil {
		return nil, err
	}
	summons, err := client.Producer(c.SummonTopic)
	if err != nil {
		return nil, err
	}
	return newKafkaPublisher(battles, rumbles, summons, serializer.ByName(c.Serializer), l, m), nil
}

func newKafkaPublisher(battles, rumbles, summons objectProducer, codec serializer.Serializer, l logger.Logger, m *metrics.ArenaMetrics) *KafkaPublisher {
	return &KafkaPublisher{
		battles: battles,
		rumbles: rumbles,
		summons: summons,
		codec:   codec,
		logger:  l.Named("event.kafka"),
		metrics: m,
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, producer objectProducer, event string, playerID int64, v any) error {
	err := producer.PublishObject(ctx, p.codec, strconv.FormatInt(playerID, 10), v, map[string]string{headerEvent: event})
	p.metrics.RecordEvent(producer.Topic(), err == nil)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to publish event", "event", event, "topic", producer.Topic(), "player_id", playerID, "error", err)
	}
	return err
}

func (p *KafkaPublisher) PublishBattle(ctx context.Context, rec *model.BattleRecord) error {
	return p.publish(ctx, p.battles, "battle", rec.PlayerID, rec)
}

func (p *KafkaPublisher) PublishRumble(ctx context.Context, rec *model.RumbleRecord) error {
	return p.publish(ctx, p.rumbles, "rumble", rec.PlayerID, rec)
}

// PublishSummons 逐条投递，遇到错误立即返回
func (p *KafkaPublisher) PublishSummons(ctx context.Context, recs []*model.SummonRecord) error {
	for _, r := range recs {
		if err := p.publish(ctx, p.summons, "summon", r.PlayerID, r); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭生产者，客户端由调用方关闭
func (p *KafkaPublisher) Close() error {
	return errors.Join(p.battles.Close(), p.rumbles.Close(), p.summons.Close())
}
