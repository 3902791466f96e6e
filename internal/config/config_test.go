package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Store.Driver != StoreMySQL {
		t.Errorf("expected mysql driver, got %s", cfg.Store.Driver)
	}
	if cfg.Cache.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected 24h idempotency ttl, got %v", cfg.Cache.IdempotencyTTL)
	}
	if cfg.Events.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Events.Workers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("BREAKER_OPEN_TIMEOUT", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Driver != StoreMemory {
		t.Errorf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Events.Brokers)
	}
	if cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("expected redis:6379, got %s", cfg.Cache.RedisAddr)
	}
	if cfg.Breaker.OpenTimeout != time.Minute {
		t.Errorf("expected 1m, got %v", cfg.Breaker.OpenTimeout)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "sqlite")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("http_addr: \":9090\"\nstore:\n  driver: memory\nevents:\n  workers: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Errorf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Events.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Events.Workers)
	}
	if cfg.GRPCAddr != ":50051" {
		t.Errorf("expected default grpc addr, got %s", cfg.GRPCAddr)
	}
}
