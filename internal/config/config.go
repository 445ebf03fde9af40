package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendFailover = "failover"

	StorageBackendMemory = "memory"
	StorageBackendSQLite = "sqlite"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	BaseURL   string             `yaml:"base_url"`
	Prefix    string             `yaml:"prefix"`
	Timeout   time.Duration      `yaml:"timeout"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SessionConfig selects where access and refresh tokens are persisted.
type SessionConfig struct {
	Storage string `yaml:"storage"`
	Path    string `yaml:"path"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// TracingConfig controls OTLP/HTTP export of client spans.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML file at configPath, expanding ${VAR} references from the
// environment. A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns a configuration usable without a file: local backend,
// memory cache and memory token storage.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url %q is not an absolute URL", c.API.BaseURL)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis, CacheBackendFailover:
		if c.Redis.Address == "" {
			return fmt.Errorf("cache backend %q requires redis.address", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Session.Storage {
	case StorageBackendMemory:
	case StorageBackendSQLite:
		if c.Session.Path == "" {
			return errors.New("session.storage=sqlite requires session.path")
		}
	default:
		return fmt.Errorf("unknown session storage %q", c.Session.Storage)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio %v must be within [0, 1]", c.Tracing.SampleRatio)
	}

	if c.API.RateLimit.RPS < 0 {
		return errors.New("api.rate_limit.rps must not be negative")
	}

	return nil
}

// APIRoot is the versioned API base every resource path is appended to.
func (c *Config) APIRoot() string {
	return strings.TrimRight(c.API.BaseURL, "/") + c.API.Prefix
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ebikectl"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8001"
	}
	if c.API.Prefix == "" {
		c.API.Prefix = "/api/v1"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = "ebikerent:cache"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Session.Storage == "" {
		c.Session.Storage = StorageBackendMemory
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.RateLimit.RPS > 0 && c.API.RateLimit.Burst <= 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			c.Tracing.Endpoint = "localhost:4318"
		}
		if c.Tracing.SampleRatio == 0 {
			c.Tracing.SampleRatio = 1
		}
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
