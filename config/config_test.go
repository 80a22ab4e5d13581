package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redis-bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, redisbus.DefaultName, cfg.Bus.Name)
	assert.Equal(t, time.Hour, cfg.Bus.ResultTTL)
	assert.Equal(t, 24*time.Hour, cfg.Bus.CacheTTL)
	assert.Equal(t, 1, cfg.Worker.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Len(t, cfg.BusOptions(), 5)
	assert.Len(t, cfg.WorkerOptions(), 3)
}

func TestFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
redis:
  addrs: ["redis-1:6379", "redis-2:6379"]
  db: 2
bus:
  name: jobs
  prefix: math_
  result_ttl: 10m
  cache_ttl: -1s
  compression: zstd
worker:
  concurrency: 8
  rate_limit: 50
health:
  endpoints: ["tcp://*:7701"]
`)
	t.Setenv("REDISBUS_BUS_NAME", "jobs_from_env")
	t.Setenv("REDISBUS_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "jobs_from_env", cfg.Bus.Name)
	assert.Equal(t, "math_", cfg.Bus.Prefix)
	assert.Equal(t, 10*time.Minute, cfg.Bus.ResultTTL)
	assert.True(t, cfg.Bus.CacheTTL < 0)
	assert.Equal(t, "zstd", cfg.Bus.Compression)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"tcp://*:7701"}, cfg.Health.Endpoints)
	assert.Len(t, cfg.WorkerOptions(), 4)

	opts := cfg.RedisOptions()
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, opts.Addrs)
	assert.Equal(t, 2, opts.DB)

	bus, err := redisbus.New(nil, cfg.BusOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "jobs_from_env", bus.Name())
	assert.Equal(t, "math_*", bus.ServePattern())
}

func TestValidation(t *testing.T) {
	for name, content := range map[string]string{
		"compression": "bus:\n  compression: gzip\n",
		"rate":        "worker:\n  rate_limit: -1\n",
		"keys":        "health:\n  public_key_file: a.pub\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			var ce *redisbus.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}

	_, err := Load(writeConfig(t, "redis: [not, a, map]\n"))
	assert.Error(t, err)
}
