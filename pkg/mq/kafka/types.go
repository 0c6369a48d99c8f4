package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message 待发送的消息
type Message struct {
	Topic string
	// Key 决定分区，同一 Key 的消息有序
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// PublishFunc 发送函数
type PublishFunc func(ctx context.Context, msg *Message) error

// ProducerMiddleware 生产者中间件
type ProducerMiddleware func(ctx context.Context, msg *Message, next PublishFunc) error

// ProducerStats 生产者统计
type ProducerStats struct {
	MessagesProduced  int64
	MessagesSucceeded int64
	MessagesFailed    int64
	LastMessageTime   time.Time
}

// messageWriter kafka.Writer 的最小接口，测试中替换为内存实现
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func (m *Message) toKafka() kafka.Message {
	km := kafka.Message{Key: m.Key, Value: m.Value}
	if len(m.Headers) > 0 {
		km.Headers = make([]kafka.Header, 0, len(m.Headers))
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}
	return km
}
