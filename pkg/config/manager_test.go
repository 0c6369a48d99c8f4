package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerTestConfig struct {
	Engine struct {
		MaxRounds int           `mapstructure:"max_rounds" validate:"gt=0"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"engine"`
	Web struct {
		Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	} `mapstructure:"web"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManagerLoadAndUnmarshal(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  max_rounds: 100
  timeout: 2s
web:
  port: 8080
`)

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	var cfg managerTestConfig
	require.NoError(t, mgr.Unmarshal(&cfg))

	assert.Equal(t, 100, cfg.Engine.MaxRounds)
	assert.Equal(t, 2*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.True(t, mgr.IsSet("engine.max_rounds"))
	assert.NoError(t, Validate(&cfg))
}

func TestManagerUnmarshalKey(t *testing.T) {
	path := writeConfigFile(t, "engine:\n  max_rounds: 30\n")

	mgr := NewManager(WithDefaults(map[string]any{"engine.timeout": "5s"}))
	require.NoError(t, mgr.LoadFile(path))

	var engine struct {
		MaxRounds int           `mapstructure:"max_rounds"`
		Timeout   time.Duration `mapstructure:"timeout"`
	}
	require.NoError(t, mgr.UnmarshalKey("engine", &engine))
	assert.Equal(t, 30, engine.MaxRounds)
	assert.Equal(t, 5*time.Second, engine.Timeout)
}

func TestManagerEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "web:\n  port: 8080\n")
	t.Setenv("ARENA_WEB_PORT", "9000")

	mgr := NewManager(WithEnvPrefix("ARENA"))
	require.NoError(t, mgr.LoadFile(path))
	assert.Equal(t, 9000, mgr.GetInt("web.port"))
}

func TestManagerMissingFile(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestValidateFailure(t *testing.T) {
	var cfg managerTestConfig
	err := Validate(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "Port")
}
