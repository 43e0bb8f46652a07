package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// A session dies after 30 minutes of inactivity unless configured otherwise.
const DefaultSessionTTL = 30 * time.Minute

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// telemetry
	TracingEnabled        bool   `toml:"tracing_enabled"`
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// redis (login sessions)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// training plans snapshot file (durability hook, loaded on boot
	// if present, written on graceful shutdown)
	SnapshotPath string `toml:"snapshot_path"`

	SessionTTLSeconds int `toml:"session_ttl_seconds"`
}

func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLSeconds <= 0 {
		return DefaultSessionTTL
	}
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var configs Toml
	if _, err := toml.DecodeFile(path, &configs); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := configs.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s missing", env)
	}

	cfg.Environment = env
	return cfg, nil
}
