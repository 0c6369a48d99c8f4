package prometheus

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type (
	CounterVec   = prometheus.CounterVec
	GaugeVec     = prometheus.GaugeVec
	HistogramVec = prometheus.HistogramVec
	Registry     = prometheus.Registry
)

// Client 持有独立的 Registry，所有指标带统一的 namespace
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]prometheus.Collector

	closed atomic.Bool
}

// New 创建客户端
func New(cfg *Config) (*Client, error) {
	c, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(c); err != nil {
		return nil, err
	}

	client := &Client{
		config:   c,
		registry: prometheus.NewRegistry(),
		metrics:  make(map[string]prometheus.Collector),
	}
	if c.EnableGoCollector {
		client.registry.MustRegister(collectors.NewGoCollector())
	}
	if c.EnableProcessCollector {
		client.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return client, nil
}

// Registry 底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Client) Config() *Config {
	return c.config
}

// Handler 指标暴露 handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(name, help string, labels []string) (*CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(name, help string, labels []string) (*GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// NewHistogram 创建并注册 Histogram，buckets 为空时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*HistogramVec, error) {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := c.register(name, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *CounterVec {
	vec, err := c.NewCounter(name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *GaugeVec {
	vec, err := c.NewGauge(name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *HistogramVec {
	vec, err := c.NewHistogram(name, help, labels, buckets)
	if err != nil {
		panic(err)
	}
	return vec
}

func (c *Client) register(name string, collector prometheus.Collector) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.metrics[name]; ok {
		return ErrMetricExists
	}
	if err := c.registry.Register(collector); err != nil {
		return err
	}
	c.metrics[name] = collector
	return nil
}

// Close 注销全部指标
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, collector := range c.metrics {
		c.registry.Unregister(collector)
		delete(c.metrics, name)
	}
	return nil
}
