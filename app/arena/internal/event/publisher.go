package event

import (
	"context"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
)

// Config 历史事件流配置
type Config struct {
	// Enabled 为 false 时使用 NoopPublisher，召唤日志仍会被标记为已处理
	Enabled bool `mapstructure:"enabled"`
	// Serializer json 或 msgpack
	Serializer  string `mapstructure:"serializer" validate:"oneof=json msgpack"`
	BattleTopic string `mapstructure:"battle_topic" validate:"required"`
	RumbleTopic string `mapstructure:"rumble_topic" validate:"required"`
	SummonTopic string `mapstructure:"summon_topic" validate:"required"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Serializer:  "json",
		BattleTopic: "arena.battles",
		RumbleTopic: "arena.rumbles",
		SummonTopic: "arena.summons",
	}
}

// Publisher 将结算与召唤结果投递到历史流
type Publisher interface {
	PublishBattle(ctx context.Context, rec *model.BattleRecord) error
	PublishRumble(ctx context.Context, rec *model.RumbleRecord) error
	PublishSummons(ctx context.Context, recs []*model.SummonRecord) error
	Close() error
}

// NoopPublisher 丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) PublishBattle(context.Context, *model.BattleRecord) error    { return nil }
func (NoopPublisher) PublishRumble(context.Context, *model.RumbleRecord) error    { return nil }
func (NoopPublisher) PublishSummons(context.Context, []*model.SummonRecord) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
