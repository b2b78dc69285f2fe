package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Kafka KafkaConfig
	Trust TrustConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET, required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL, default=24h"`
	AdminSignupCode string        `env:"ADMIN_SIGNUP_CODE"`
	// Failed logins inside FailureWindow before the account is locked.
	MaxLoginFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	FailureWindow    time.Duration `env:"LOGIN_FAILURE_WINDOW, default=30m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=freshcart"`
}

type RedisConfig struct {
	Addr    string        `env:"REDIS_ADDR, default=localhost:6379"`
	DB      int           `env:"REDIS_DB,   default=0"`
	CartTTL time.Duration `env:"CART_TTL,   default=168h"`
}

// KafkaConfig is optional. Without brokers trust events are dropped.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=trust.events"`
}

type TrustConfig struct {
	Workers    int `env:"TRUST_WORKERS,     default=8"`
	MaxRetries int `env:"TRUST_MAX_RETRIES, default=3"`
}

// IsProduction reports whether ENV is set to production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Trust.Workers < 1 {
		return nil, fmt.Errorf("config: TRUST_WORKERS must be at least 1, got %d", cfg.Trust.Workers)
	}
	return &cfg, nil
}
