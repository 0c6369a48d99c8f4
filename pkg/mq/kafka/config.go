package kafka

import "time"

// Config Kafka 配置
type Config struct {
	Brokers  []string       `mapstructure:"brokers" validate:"required,min=1,dive,hostname_port"`
	Producer ProducerConfig `mapstructure:"producer"`

	// SASL 与 TLS 可选
	SASL *SASLConfig `mapstructure:"sasl"`
	TLS  *TLSConfig  `mapstructure:"tls"`
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	// Async 异步发送时 WriteMessages 立即返回，错误只会记录在日志中
	Async        bool          `mapstructure:"async"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// RequiredAcks 0 不等待，1 等待 leader，-1 等待所有副本
	RequiredAcks int `mapstructure:"required_acks" validate:"oneof=-1 0 1"`

	// Compression none, gzip, snappy, lz4, zstd
	Compression  string        `mapstructure:"compression" validate:"omitempty,oneof=none gzip snappy lz4 zstd"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
}

// SASLConfig SASL 认证配置
type SASLConfig struct {
	// Mechanism PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Mechanism string `mapstructure:"mechanism"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// TLSConfig TLS 配置
type TLSConfig struct {
	Enable             bool   `mapstructure:"enable"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	CAFile             string `mapstructure:"ca_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Brokers: []string{"localhost:9092"},
		Producer: ProducerConfig{
			BatchSize:    100,
			BatchTimeout: 50 * time.Millisecond,
			MaxRetries:   3,
			RequiredAcks: -1,
			Compression:  "snappy",
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
	}
}
