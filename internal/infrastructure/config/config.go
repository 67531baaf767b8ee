package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Storage backends for shopper snapshots.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	OTLP    OTLPConfig    `yaml:"otlp"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Shop    ShopConfig    `yaml:"shop"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type OTLPConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ShopConfig holds storefront rules. Amounts are decimal strings.
type ShopConfig struct {
	FreeShippingThreshold string        `yaml:"free_shipping_threshold"`
	ShippingFee           string        `yaml:"shipping_fee"`
	CheckoutDelay         time.Duration `yaml:"checkout_delay"`
	AuthDelay             time.Duration `yaml:"auth_delay"`
	FeaturedLimit         int           `yaml:"featured_limit"`
}

type KafkaConfig struct {
	Brokers     string `yaml:"brokers"`
	OrdersTopic string `yaml:"orders_topic"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		OTLP: OTLPConfig{
			Enabled:     true,
			Endpoint:    "localhost:4317",
			ServiceName: "shopverse-api",
			Environment: "development",
		},
		Storage: StorageConfig{
			Backend:   BackendMemory,
			RedisURL:  "redis://localhost:6379/0",
			KeyPrefix: "shopverse",
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Shop: ShopConfig{
			FreeShippingThreshold: "50",
			ShippingFee:           "9.99",
			CheckoutDelay:         2 * time.Second,
			AuthDelay:             500 * time.Millisecond,
			FeaturedLimit:         8,
		},
		Kafka: KafkaConfig{
			OrdersTopic: "shopverse.orders",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the defaults, overlays the YAML file named by CONFIG_FILE
// if set, then applies environment variables, and validates the result.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile overlays the YAML file at path. Keys absent from the file
// keep their current values.
func (c *Config) LoadFromFile(path string) error {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %q: %w", ext, ErrInvalidConfig)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w: %v", path, ErrInvalidConfig, err)
	}
	return nil
}

// LoadFromEnv overrides fields from environment variables.
func (c *Config) LoadFromEnv() error {
	var err error

	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)

	if c.OTLP.Enabled, err = getEnvBool("OTEL_ENABLED", c.OTLP.Enabled); err != nil {
		return err
	}
	c.OTLP.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLP.Endpoint)
	c.OTLP.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTLP.ServiceName)
	c.OTLP.Environment = getEnv("OTEL_ENVIRONMENT", c.OTLP.Environment)

	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.KeyPrefix = getEnv("STORAGE_KEY_PREFIX", c.Storage.KeyPrefix)

	if c.Session.IdleTimeout, err = getEnvDuration("SESSION_IDLE_TIMEOUT", c.Session.IdleTimeout); err != nil {
		return err
	}
	if c.Session.SweepInterval, err = getEnvDuration("SESSION_SWEEP_INTERVAL", c.Session.SweepInterval); err != nil {
		return err
	}

	c.Shop.FreeShippingThreshold = getEnv("FREE_SHIPPING_THRESHOLD", c.Shop.FreeShippingThreshold)
	c.Shop.ShippingFee = getEnv("SHIPPING_FEE", c.Shop.ShippingFee)
	if c.Shop.CheckoutDelay, err = getEnvDuration("CHECKOUT_DELAY", c.Shop.CheckoutDelay); err != nil {
		return err
	}
	if c.Shop.AuthDelay, err = getEnvDuration("AUTH_DELAY", c.Shop.AuthDelay); err != nil {
		return err
	}
	if c.Shop.FeaturedLimit, err = getEnvInt("FEATURED_LIMIT", c.Shop.FeaturedLimit); err != nil {
		return err
	}

	c.Kafka.Brokers = getEnv("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.OrdersTopic = getEnv("KAFKA_ORDERS_TOPIC", c.Kafka.OrdersTopic)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis backend needs REDIS_URL: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown storage backend %q: %w", c.Storage.Backend, ErrInvalidConfig)
	}

	if c.Storage.KeyPrefix == "" {
		return fmt.Errorf("storage key prefix is required: %w", ErrInvalidConfig)
	}
	if _, err := c.Shop.ShippingPolicy(); err != nil {
		return err
	}
	if c.Shop.CheckoutDelay < 0 || c.Shop.AuthDelay < 0 {
		return fmt.Errorf("delays must not be negative: %w", ErrInvalidConfig)
	}
	if c.Shop.FeaturedLimit < 1 {
		return fmt.Errorf("featured limit must be positive: %w", ErrInvalidConfig)
	}
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session timings must be positive: %w", ErrInvalidConfig)
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ShippingPolicy parses the configured shipping amounts.
func (s ShopConfig) ShippingPolicy() (domain.ShippingPolicy, error) {
	threshold, err := decimal.NewFromString(s.FreeShippingThreshold)
	if err != nil || threshold.IsNegative() {
		return domain.ShippingPolicy{}, fmt.Errorf("free shipping threshold %q: %w", s.FreeShippingThreshold, ErrInvalidConfig)
	}
	fee, err := decimal.NewFromString(s.ShippingFee)
	if err != nil || fee.IsNegative() {
		return domain.ShippingPolicy{}, fmt.Errorf("shipping fee %q: %w", s.ShippingFee, ErrInvalidConfig)
	}
	return domain.ShippingPolicy{FreeThreshold: threshold, Fee: fee}, nil
}

// SlogLevel parses the configured log level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, ErrInvalidConfig)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s=%q: %w", key, value, ErrInvalidConfig)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, value, ErrInvalidConfig)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, value, ErrInvalidConfig)
	}
	return d, nil
}
