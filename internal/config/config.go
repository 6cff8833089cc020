package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/A3Manav/jewellery-wishlist-service/pkg/config"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"WISHLIST_HTTP_PORT" envDefault:"8007"`
	RequestTimeout time.Duration `env:"WISHLIST_REQUEST_TIMEOUT" envDefault:"30s"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Storefront API the service reconciles against.
	StorefrontBaseURL string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	ProfileTimeout    time.Duration `env:"PROFILE_TIMEOUT" envDefault:"5s"`

	// Session state TTL in hours (default: 30 days).
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"720"`

	// Wishlist behavior.
	MaterializeConcurrency int           `env:"MATERIALIZE_CONCURRENCY" envDefault:"4"`
	PruneQueueSize         int           `env:"PRUNE_QUEUE_SIZE" envDefault:"64"`
	LoginPromptDelay       time.Duration `env:"LOGIN_PROMPT_DELAY" envDefault:"2s"`
	NotifyDedupeWindow     time.Duration `env:"NOTIFY_DEDUPE_WINDOW" envDefault:"3s"`

	// Login rate limiting, keyed per session or client IP.
	LoginRPS   int `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"2"`
	LoginBurst int `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"5"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSample    float64 `env:"TRACE_SAMPLE_RATE" envDefault:"0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StorefrontBaseURL == "" {
		return fmt.Errorf("storefront API URL is required")
	}
	if c.MaterializeConcurrency < 1 {
		return fmt.Errorf("materialize concurrency must be positive, got %d", c.MaterializeConcurrency)
	}
	return nil
}
