package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Config Sentry 配置，DSN 为空时不启用
type Config struct {
	DSN              string            `mapstructure:"dsn"`
	Environment      string            `mapstructure:"environment"`
	Release          string            `mapstructure:"release"`
	ServerName       string            `mapstructure:"server_name"`
	SampleRate       float64           `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	AttachStacktrace bool              `mapstructure:"attach_stacktrace"`
	ShutdownTimeout  time.Duration     `mapstructure:"shutdown_timeout"`
	Debug            bool              `mapstructure:"debug"`
	Tags             map[string]string `mapstructure:"tags"`
}

func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: true,
		ShutdownTimeout:  2 * time.Second,
	}
}

// Enabled 是否配置了 DSN
func (c *Config) Enabled() bool {
	return c != nil && c.DSN != ""
}

func (c *Config) clientOptions() sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       c.ServerName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: c.AttachStacktrace,
		Debug:            c.Debug,
	}
}
