package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，ARENA_WEB_PORT -> web.port
const EnvPrefix = "ARENA"

var configPath string

// LoadConfig 从命令行 --config / 环境变量 ARENA_CONFIG / 可执行文件目录下的 config.yaml 加载配置
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
func LoadConfig(target any, opts ...config.Option) (config.Manager, error) {
	if pflag.Lookup("config") == nil {
		pflag.StringP("config", "c", defaultConfigPath(), "path to config file")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	path, _ := pflag.CommandLine.GetString("config")
	if !pflag.CommandLine.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path = env
		}
	}

	return LoadConfigFile(path, target, opts...)
}

// LoadConfigFile 从指定路径加载配置并解析到 target
func LoadConfigFile(path string, target any, opts ...config.Option) (config.Manager, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	mgr := config.NewManager(append(opts, config.WithViper(v))...)
	if err := mgr.LoadFile(path); err != nil {
		return nil, err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}
	configPath = path
	return mgr, nil
}

// ConfigPath 返回最终使用的配置文件路径
func ConfigPath() string {
	return configPath
}

func defaultConfigPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	if real, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = real
	}
	return filepath.Join(filepath.Dir(execPath), "config.yaml")
}

// MustLoadConfig 加载失败直接退出
func MustLoadConfig(target any, opts ...config.Option) config.Manager {
	mgr, err := LoadConfig(target, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	return mgr
}
