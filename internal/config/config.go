package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/frenow/rocketshoes-cart/pkg/database"
	pkgconfig "github.com/frenow/rocketshoes-cart/pkg/config"
)

// Storage backends for the cart snapshot.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the cart store.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"CART_HTTP_PORT" envDefault:"8003"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Snapshot storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	StorageKey     string `env:"CART_STORAGE_KEY" envDefault:"@RocketShoes:cart"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours; 0 keeps the snapshot forever
	CartTTLHours int `env:"CART_TTL_HOURS" envDefault:"0"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"rocketshoes"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"rocketshoes"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"rocketshoes"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Remote services
	StockAPIURL        string `env:"STOCK_API_URL" envDefault:"http://localhost:3333"`
	CatalogAPIURL      string `env:"CATALOG_API_URL" envDefault:"http://localhost:3333"`
	UpstreamTimeoutMS  int    `env:"UPSTREAM_TIMEOUT_MS" envDefault:"5000"`
	UpstreamMaxRetries int    `env:"UPSTREAM_MAX_RETRIES" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want redis, postgres or memory", c.StorageBackend)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("CART_STORAGE_KEY is required")
	}
	if c.CartTTLHours < 0 {
		return fmt.Errorf("invalid CART_TTL_HOURS: %d", c.CartTTLHours)
	}
	for name, raw := range map[string]string{"STOCK_API_URL": c.StockAPIURL, "CATALOG_API_URL": c.CatalogAPIURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	if c.UpstreamTimeoutMS <= 0 {
		return fmt.Errorf("invalid UPSTREAM_TIMEOUT_MS: %d", c.UpstreamTimeoutMS)
	}
	if c.UpstreamMaxRetries < 0 {
		return fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: %d", c.UpstreamMaxRetries)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("invalid OTEL_SAMPLE_RATE: %v (must be between 0 and 1)", c.OTELSampleRate)
	}
	return nil
}

// CartTTL is the snapshot expiry; zero means none.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// UpstreamTimeout is the per-attempt timeout for stock and catalog calls.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// Postgres returns the pool configuration for the postgres backend.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}
