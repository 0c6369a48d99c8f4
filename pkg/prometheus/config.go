package prometheus

// Config 指标配置
type Config struct {
	// Namespace 指标名前缀，通常是应用名
	Namespace string `mapstructure:"namespace" validate:"required"`
	Subsystem string `mapstructure:"subsystem"`
	// Path 指标暴露路径，挂载在 Web 服务上
	Path string `mapstructure:"path" validate:"startswith=/"`

	EnableGoCollector      bool `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool `mapstructure:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "arena",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}
