// Package config loads the configuration of the redis-bus command from YAML and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/codec"
	"github.com/dermesser/redisbus/log"
	"github.com/dermesser/redisbus/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// Config is the root configuration.
type Config struct {
	Redis   RedisConfig   `mapstructure:"redis"`
	Bus     BusConfig     `mapstructure:"bus"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Health  HealthConfig  `mapstructure:"health"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     log.Config    `mapstructure:"log"`
}

// RedisConfig selects the broker. Several addresses select a cluster, a master name
// a sentinel setup.
type RedisConfig struct {
	Addrs      []string `mapstructure:"addrs"`
	DB         int      `mapstructure:"db"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	MasterName string   `mapstructure:"master_name"`
}

type BusConfig struct {
	Name   string `mapstructure:"name"`
	Prefix string `mapstructure:"prefix"`
	// Negative TTLs never expire. A cache TTL of 0 disables caching, a result TTL of 0 is refused.
	ResultTTL time.Duration `mapstructure:"result_ttl"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	// none, zstd or lz4
	Compression       string `mapstructure:"compression"`
	CompressThreshold int    `mapstructure:"compress_threshold"`
}

type WorkerConfig struct {
	Pattern     string `mapstructure:"pattern"`
	Concurrency int    `mapstructure:"concurrency"`
	// Executions per second; 0 is unlimited
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	MachineName string        `mapstructure:"machine_name"`
}

// HealthConfig configures the worker's ZeroMQ health endpoint. Without endpoints
// there is none. With key files set, the endpoint uses CURVE.
type HealthConfig struct {
	Endpoints      []string `mapstructure:"endpoints"`
	PublicKeyFile  string   `mapstructure:"public_key_file"`
	PrivateKeyFile string   `mapstructure:"private_key_file"`
	// Z85 public keys of accepted probes; empty accepts any
	ClientKeys []string `mapstructure:"client_keys"`
}

type MetricsConfig struct {
	// e.g. ":9108"; empty disables the endpoint
	Listen string `mapstructure:"listen"`
	Path   string `mapstructure:"path"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	host, _ := os.Hostname()
	return &Config{
		Redis: RedisConfig{Addrs: []string{"localhost:6379"}},
		Bus: BusConfig{
			Name:              redisbus.DefaultName,
			ResultTTL:         redisbus.DefaultResultTTL,
			CacheTTL:          redisbus.DefaultCacheTTL,
			Compression:       codec.None.String(),
			CompressThreshold: codec.DefaultThreshold,
		},
		Worker: WorkerConfig{Concurrency: 1, RateBurst: 1, MachineName: host},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Log: log.Config{
			Level:   "warn",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: log.RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
	}
}

// Load reads configuration from path (if non-empty), otherwise it searches common
// locations for redis-bus.yaml. Environment variables use the prefix REDISBUS, with
// "." replaced by "_". Example: REDISBUS_BUS_NAME=jobs
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REDISBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults so that env-only configs work
	v.SetDefault("redis.addrs", cfg.Redis.Addrs)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.master_name", "")
	v.SetDefault("bus.name", cfg.Bus.Name)
	v.SetDefault("bus.prefix", "")
	v.SetDefault("bus.result_ttl", cfg.Bus.ResultTTL)
	v.SetDefault("bus.cache_ttl", cfg.Bus.CacheTTL)
	v.SetDefault("bus.compression", cfg.Bus.Compression)
	v.SetDefault("bus.compress_threshold", cfg.Bus.CompressThreshold)
	v.SetDefault("worker.pattern", "")
	v.SetDefault("worker.concurrency", cfg.Worker.Concurrency)
	v.SetDefault("worker.rate_limit", cfg.Worker.RateLimit)
	v.SetDefault("worker.rate_burst", cfg.Worker.RateBurst)
	v.SetDefault("worker.idle_timeout", cfg.Worker.IdleTimeout)
	v.SetDefault("worker.machine_name", cfg.Worker.MachineName)
	v.SetDefault("health.endpoints", []string{})
	v.SetDefault("health.public_key_file", "")
	v.SetDefault("health.private_key_file", "")
	v.SetDefault("health.client_keys", []string{})
	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.path", cfg.Metrics.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	if path == "" {
		if envPath := os.Getenv("REDISBUS_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("redis-bus")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "redis-bus"))
		}
		v.AddConfigPath("/etc/redis-bus")
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Redis.Addrs) == 0 {
		return &redisbus.ConfigError{Message: "redis.addrs is empty"}
	}
	if _, err := codec.ParseCompression(c.Bus.Compression); err != nil {
		return &redisbus.ConfigError{Message: "bus.compression: " + err.Error()}
	}
	if c.Worker.Concurrency < 1 {
		c.Worker.Concurrency = 1
	}
	if c.Worker.RateLimit < 0 {
		return &redisbus.ConfigError{Message: "worker.rate_limit must not be negative"}
	}
	if (c.Health.PublicKeyFile == "") != (c.Health.PrivateKeyFile == "") {
		return &redisbus.ConfigError{Message: "health needs both public_key_file and private_key_file, or neither"}
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}

// RedisOptions returns the connection options of the broker.
func (c *Config) RedisOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:      c.Redis.Addrs,
		DB:         c.Redis.DB,
		Username:   c.Redis.Username,
		Password:   c.Redis.Password,
		MasterName: c.Redis.MasterName,
	}
}

// BusOptions returns the options for redisbus.New.
func (c *Config) BusOptions() []redisbus.Option {
	comp, _ := codec.ParseCompression(c.Bus.Compression)
	return []redisbus.Option{
		redisbus.WithName(c.Bus.Name),
		redisbus.WithPrefix(c.Bus.Prefix),
		redisbus.WithResultTTL(c.Bus.ResultTTL),
		redisbus.WithCacheTTL(c.Bus.CacheTTL),
		redisbus.WithCompression(comp, c.Bus.CompressThreshold),
	}
}

// WorkerOptions returns the options for server.NewWorker.
func (c *Config) WorkerOptions() []server.Option {
	opts := []server.Option{
		server.WithConcurrency(c.Worker.Concurrency),
		server.WithIdleTimeout(c.Worker.IdleTimeout),
		server.WithMachineName(c.Worker.MachineName),
	}
	if c.Worker.RateLimit > 0 {
		opts = append(opts, server.WithRateLimit(rate.Limit(c.Worker.RateLimit), c.Worker.RateBurst))
	}
	return opts
}
