package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/app"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.False(t, cfg.usesRedis())
}

func TestShippedConfigLoads(t *testing.T) {
	cfg := defaultConfig()
	_, err := app.LoadConfigFile("config.yaml", cfg)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))

	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "local", cfg.Lock.Mode)
	assert.Equal(t, 3, cfg.Rules.MinRumbleParticipants)
	assert.Equal(t, 50, cfg.Rules.MonsterLevelGrowth.HP)
	assert.True(t, cfg.HTTP.EnableDevToken)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "snappy", cfg.Cache.Compression)
	assert.Equal(t, "@every 15s", cfg.Jobs.SystemSampleSpec)
}

func TestAppOptionsFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.InstanceID = "arena-1"
	cfg.ShutdownTimeout = 0

	opts := app.DefaultOptions()
	for _, o := range provideAppOptions(cfg, logger.NewNoop()) {
		o(&opts)
	}
	assert.Equal(t, "arena-1", opts.ID)
	assert.Equal(t, app.AppName, opts.Name)
	assert.Equal(t, 30*time.Second, opts.StopTimeout)
}

func TestInvalidCompressionRejected(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.Compression = "gzip"
	assert.Error(t, config.Validate(cfg))
}

func TestFileOverridesDefaultsWithZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage: postgres
jobs:
  enabled: false
cache:
  enabled: true
`), 0o644))

	cfg := defaultConfig()
	_, err := app.LoadConfigFile(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.False(t, cfg.Jobs.Enabled)
	assert.True(t, cfg.usesRedis())
	// 未出现的键保留默认值
	assert.Equal(t, 10, cfg.Rules.MaxBatch)
}
