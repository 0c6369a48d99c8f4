package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
)

// Producer 单 topic 生产者
type Producer struct {
	client  *Client
	topic   string
	writer  messageWriter
	publish PublishFunc

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	lastMu    sync.Mutex
	last      time.Time

	closed atomic.Bool
}

func newProducer(c *Client, topic string, w messageWriter) *Producer {
	p := &Producer{client: c, topic: topic, writer: w}

	publish := p.write
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw, next := c.middlewares[i], publish
		publish = func(ctx context.Context, msg *Message) error {
			return mw(ctx, msg, next)
		}
	}
	p.publish = publish
	return p
}

func (p *Producer) write(ctx context.Context, msg *Message) error {
	return p.writer.WriteMessages(ctx, msg.toKafka())
}

// Publish 发送单条消息
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	msg.Topic = p.topic
	p.produced.Add(1)

	if err := p.publish(ctx, msg); err != nil {
		p.failed.Add(1)
		return err
	}
	p.succeeded.Add(1)
	p.lastMu.Lock()
	p.last = time.Now()
	p.lastMu.Unlock()
	return nil
}

// PublishObject 用 s 编码 v 后发送，content-type 头记录编码类型
func (p *Producer) PublishObject(ctx context.Context, s serializer.Serializer, key string, v any, headers map[string]string) error {
	value, err := s.Serialize(v)
	if err != nil {
		return err
	}
	h := make(map[string]string, len(headers)+1)
	for k, val := range headers {
		h[k] = val
	}
	h["content-type"] = s.ContentType()
	return p.Publish(ctx, &Message{Key: []byte(key), Value: value, Headers: h})
}

// Topic topic 名称
func (p *Producer) Topic() string {
	return p.topic
}

// Stats 统计信息
func (p *Producer) Stats() ProducerStats {
	p.lastMu.Lock()
	last := p.last
	p.lastMu.Unlock()
	return ProducerStats{
		MessagesProduced:  p.produced.Load(),
		MessagesSucceeded: p.succeeded.Load(),
		MessagesFailed:    p.failed.Load(),
		LastMessageTime:   last,
	}
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.client.logger.Debug("producer closing", "topic", p.topic)
	return p.writer.Close()
}
