package kafka

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Client 按 topic 缓存生产者
type Client struct {
	config    *Config
	logger    logger.Logger
	transport *kafka.Transport

	producers  map[string]*Producer
	producerMu sync.RWMutex

	middlewares []ProducerMiddleware
	newWriter   func(topic string) messageWriter

	closed atomic.Bool
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithLogger 设置日志
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProducerMiddleware 添加生产者中间件，按添加顺序由外到内执行
func WithProducerMiddleware(mw ...ProducerMiddleware) ClientOption {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// withWriterFactory 替换底层 writer
func withWriterFactory(fn func(topic string) messageWriter) ClientOption {
	return func(c *Client) {
		c.newWriter = fn
	}
}

// New 创建客户端，不会主动连接 broker
func New(cfg *Config, opts ...ClientOption) (*Client, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	// bool 合并只能从 false 改为 true，显式传入的同步模式需要保留
	if cfg != nil && !cfg.Producer.Async {
		newCfg.Producer.Async = false
	}
	if err := config.Validate(newCfg); err != nil {
		return nil, err
	}

	transport, err := newTransport(newCfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:    newCfg,
		logger:    logger.NewNoop(),
		transport: transport,
		producers: make(map[string]*Producer),
	}
	c.newWriter = c.kafkaWriter
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) kafkaWriter(topic string) messageWriter {
	cfg := c.config.Producer
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		MaxAttempts:            cfg.MaxRetries + 1,
		WriteTimeout:           cfg.WriteTimeout,
		ReadTimeout:            cfg.ReadTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		Compression:            parseCompression(cfg.Compression),
		AllowAutoTopicCreation: true,
	}
	if c.transport != nil {
		w.Transport = c.transport
	}
	return w
}

// Producer 获取或创建指定 topic 的生产者
func (c *Client) Producer(topic string) (*Producer, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	c.producerMu.RLock()
	p, ok := c.producers[topic]
	c.producerMu.RUnlock()
	if ok {
		return p, nil
	}

	c.producerMu.Lock()
	defer c.producerMu.Unlock()
	if p, ok = c.producers[topic]; ok {
		return p, nil
	}
	p = newProducer(c, topic, c.newWriter(topic))
	c.producers[topic] = p
	c.logger.Debug("producer created", "topic", topic)
	return p, nil
}

// Close 关闭所有生产者，未发送完的批次会被刷出
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.producerMu.Lock()
	defer c.producerMu.Unlock()

	var errs []error
	for topic, p := range c.producers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.producers, topic)
	}
	return errors.Join(errs...)
}
