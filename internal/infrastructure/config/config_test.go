package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Storage.Backend != "file" || cfg.Storage.File.Path != "user_data.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Console.OnDuplicate != "reject" || cfg.Console.DefaultExpiry != "2024-12-31" || cfg.Console.BcryptCost != 10 {
		t.Fatalf("unexpected console defaults: %+v", cfg.Console)
	}
	if cfg.Storage.SQL.ConnectionMode != "pooled" {
		t.Fatalf("expected pooled mode, got %q", cfg.Storage.SQL.ConnectionMode)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development profile by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_BACKEND":     "postgres",
		"POSTGRES_DSN":        "postgres://u:p@db/console",
		"SQL_CONNECTION_MODE": "scoped",
		"ON_DUPLICATE":        "overwrite",
		"REDIS_DB":            "3",
		"DDB_ENDPOINT":        "http://localhost:8000",
		"ENV":                 "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != "postgres" || cfg.Storage.SQL.PostgresDSN != "postgres://u:p@db/console" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Storage.SQL.ConnectionMode != "scoped" || cfg.Console.OnDuplicate != "overwrite" {
		t.Fatalf("unexpected modes: %+v %+v", cfg.Storage.SQL, cfg.Console)
	}
	if cfg.Storage.Redis.DB != 3 || cfg.Storage.DynamoDB.Endpoint != "http://localhost:8000" {
		t.Fatalf("unexpected backend settings: %+v", cfg.Storage)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production should not be development")
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"BCRYPT_COST": "high"}))
	if err == nil {
		t.Fatalf("expected error for non-numeric BCRYPT_COST")
	}
}
