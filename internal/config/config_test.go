package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  free_messages_per_day: 3
  default_timezone: UTC
matching:
  default_min_score: 40
cleanup:
  interval: 2h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.FreeMessagesPerDay != 3 {
		t.Fatalf("unexpected free messages/day: %d", cfg.Limits.FreeMessagesPerDay)
	}
	if cfg.Limits.DefaultTimezone != "UTC" {
		t.Fatalf("unexpected timezone: %s", cfg.Limits.DefaultTimezone)
	}
	if cfg.Matching.DefaultMinScore != 40 {
		t.Fatalf("unexpected default min score: %d", cfg.Matching.DefaultMinScore)
	}
	if cfg.Cleanup.Interval.String() != "2h0m0s" {
		t.Fatalf("unexpected cleanup interval: %s", cfg.Cleanup.Interval)
	}

	if cfg.Limits.FreeProfileViewsPerDay != 10 {
		t.Fatalf("free profile views default should stay 10, got %d", cfg.Limits.FreeProfileViewsPerDay)
	}
	if cfg.Limits.MessageMaxLength != 2000 {
		t.Fatalf("message max length default should stay 2000, got %d", cfg.Limits.MessageMaxLength)
	}
	if cfg.Matching.DefaultPageSize != 20 {
		t.Fatalf("matching page size default should stay 20, got %d", cfg.Matching.DefaultPageSize)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Limits.FreeMessagesPerDay != 5 {
		t.Fatalf("unexpected default free messages/day: %d", cfg.Limits.FreeMessagesPerDay)
	}
	if cfg.Limits.FreeProfileViewsPerDay != 10 {
		t.Fatalf("unexpected default free profile views/day: %d", cfg.Limits.FreeProfileViewsPerDay)
	}
	if cfg.Limits.DefaultTimezone != "Europe/Paris" {
		t.Fatalf("unexpected default timezone: %s", cfg.Limits.DefaultTimezone)
	}
	if cfg.Matching.DefaultMinScore != 50 || cfg.Matching.MaxPageSize != 50 {
		t.Fatalf("unexpected matching defaults: %d/%d", cfg.Matching.DefaultMinScore, cfg.Matching.MaxPageSize)
	}
	if cfg.Auth.JWTAccessTTL.String() != "15m0s" {
		t.Fatalf("unexpected default access ttl: %s", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Cleanup.QuotaRetention.String() != "2160h0m0s" {
		t.Fatalf("unexpected default quota retention: %s", cfg.Cleanup.QuotaRetention)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("FREE_MESSAGES_PER_DAY", "7")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/agence")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Limits.FreeMessagesPerDay != 7 {
		t.Fatalf("env override for free messages/day not applied: %d", cfg.Limits.FreeMessagesPerDay)
	}
	if cfg.Auth.JWTAccessTTL.String() != "30m0s" {
		t.Fatalf("env override for access ttl not applied: %s", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Postgres.DSN != "postgres://env:env@db:5432/agence" {
		t.Fatalf("env override for dsn not applied: %s", cfg.Postgres.DSN)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"FREE_MESSAGES_PER_DAY",
		"FREE_PROFILE_VIEWS_PER_DAY",
		"DEFAULT_TIMEZONE",
		"CLEANUP_INTERVAL",
		"CLEANUP_QUOTA_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
