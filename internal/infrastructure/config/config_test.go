package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.MaxLoginFailures != 5 || cfg.Auth.FailureWindow != 30*time.Minute {
		t.Errorf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Redis.CartTTL != 168*time.Hour {
		t.Errorf("unexpected cart ttl: %s", cfg.Redis.CartTTL)
	}
	if cfg.Trust.Workers != 8 || cfg.Trust.MaxRetries != 3 {
		t.Errorf("unexpected trust defaults: %+v", cfg.Trust)
	}
	if len(cfg.Kafka.Brokers) != 0 || cfg.Kafka.Topic != "trust.events" {
		t.Errorf("unexpected kafka defaults: %+v", cfg.Kafka)
	}
	if cfg.IsProduction() {
		t.Errorf("development env reported as production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"ENV":           "production",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"TRUST_WORKERS": "2",
		"TOKEN_TTL":     "1h",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Errorf("expected production")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Trust.Workers != 2 || cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_RejectsZeroWorkers(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"TRUST_WORKERS": "0",
	}))
	if err == nil {
		t.Fatalf("expected error for zero workers")
	}
}
