package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Upstream struct {
		BaseURL        string        `yaml:"base_url"`
		SpecURL        string        `yaml:"spec_url"`
		APIKey         string        `yaml:"api_key"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		FetchDeadline  time.Duration `yaml:"fetch_deadline"` // overall budget per request cycle
		RateLimits     struct {
			Anonymous   int           `yaml:"anonymous"` // calls per window without credentials
			Keyed       int           `yaml:"keyed"`     // calls per window with an API key
			Window      time.Duration `yaml:"window"`
		} `yaml:"rate_limits"`
	} `yaml:"upstream"`
	Cache struct {
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
		Redis       struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled         bool     `yaml:"enabled"`
		Brokers         []string `yaml:"brokers"`
		SnapshotTopic   string   `yaml:"snapshot_topic"`
		AllocationTopic string   `yaml:"allocation_topic"`
		LogTopic        string   `yaml:"log_topic"` // aggregated error logs; empty disables
		RequiredAcks    int      `yaml:"required_acks"`
		Compression     string   `yaml:"compression"`
		Producer        struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Refresh struct {
		Enabled  bool     `yaml:"enabled"`
		Schedule string   `yaml:"schedule"` // cron expression
		AssetIDs []string `yaml:"asset_ids"`
		Currency string   `yaml:"currency"`
	} `yaml:"refresh"`
	Allocation struct {
		DefaultRiskProfile string   `yaml:"default_risk_profile"`
		DefaultSectors     []string `yaml:"default_sectors"`
		MaxAssets          int      `yaml:"max_assets"`
		TolerancePct       float64  `yaml:"tolerance_pct"` // cross-validation price tolerance
	} `yaml:"allocation"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RISK_PROFILE"); v != "" {
		c.Allocation.DefaultRiskProfile = v
	}
	if v := os.Getenv("MAX_ASSETS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Allocation.MaxAssets = n
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Upstream.SpecURL == "" {
		c.Upstream.SpecURL = c.Upstream.BaseURL + "/swagger.json"
	}
	if c.Upstream.RequestTimeout <= 0 {
		c.Upstream.RequestTimeout = 10 * time.Second
	}
	if c.Upstream.FetchDeadline <= 0 {
		c.Upstream.FetchDeadline = 20 * time.Second
	}
	if c.Upstream.RateLimits.Anonymous <= 0 {
		c.Upstream.RateLimits.Anonymous = 25
	}
	if c.Upstream.RateLimits.Keyed <= 0 {
		c.Upstream.RateLimits.Keyed = 50
	}
	if c.Upstream.RateLimits.Window <= 0 {
		c.Upstream.RateLimits.Window = time.Minute
	}
	if c.Cache.SnapshotTTL <= 0 {
		c.Cache.SnapshotTTL = 5 * time.Minute
	}
	if c.Allocation.DefaultRiskProfile == "" {
		c.Allocation.DefaultRiskProfile = "medium"
	}
	if c.Allocation.MaxAssets <= 0 {
		c.Allocation.MaxAssets = 10
	}
	if c.Allocation.TolerancePct <= 0 {
		c.Allocation.TolerancePct = 1.0
	}
	if c.Refresh.Currency == "" {
		c.Refresh.Currency = "usd"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Allocation.DefaultRiskProfile {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("allocation.default_risk_profile must be 'low', 'medium' or 'high', got '%s'", c.Allocation.DefaultRiskProfile)
	}
	if c.Allocation.MaxAssets < 1 || c.Allocation.MaxAssets > 15 {
		return fmt.Errorf("allocation.max_assets must be within [1, 15], got %d", c.Allocation.MaxAssets)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Refresh.Enabled && c.Refresh.Schedule == "" {
		return fmt.Errorf("refresh.schedule is required when refresh is enabled")
	}
	return nil
}

// RateLimit returns the effective per-window call budget for the configured
// credentials: the keyed tier applies only when an API key is present.
func (c *Config) RateLimit() int {
	if c.Upstream.APIKey != "" {
		return c.Upstream.RateLimits.Keyed
	}
	return c.Upstream.RateLimits.Anonymous
}
