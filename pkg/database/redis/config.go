package redis

import (
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/config"
)

// Config Redis 配置
// Addrs 只有一个地址时为单机模式，多个地址时为集群模式
type Config struct {
	Addrs    []string `mapstructure:"addrs" validate:"required,min=1,dive,hostname_port"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db" validate:"gte=0,lte=15"`
	// KeyPrefix 所有键的前缀，如 "arena:"
	KeyPrefix string `mapstructure:"key_prefix"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxActiveConns  int           `mapstructure:"max_active_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Addrs:     []string{"localhost:6379"},
		KeyPrefix: "arena:",
		Pool: PoolConfig{
			MaxIdleConns:    10,
			MaxActiveConns:  100,
			ConnMaxIdleTime: 5 * time.Minute,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolTimeout:     4 * time.Second,
		},
	}
}

func resolve(cfg *Config) (*Config, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.Validate(merged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return merged, nil
}
