package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INSIGHTS_APP_ENV", "test")
	t.Setenv("INSIGHTS_SOURCE_CALLS_URL", "http://calls.internal/report")
	t.Setenv("INSIGHTS_SOURCE_LEADS_URL", "http://leads.internal/report")
	t.Setenv("INSIGHTS_SOURCE_CONVERSATIONS_URL", "http://conversations.internal/report")
	t.Setenv("INSIGHTS_SOURCE_TRANSACTIONS_URL", "http://transactions.internal/report")
	t.Setenv("INSIGHTS_SOURCE_APPOINTMENTS_URL", "http://appointments.internal/report")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("port = %q, want default 8080", cfg.App.Port)
	}
	if cfg.Sources.Timeout != 15*time.Second {
		t.Fatalf("source timeout = %v, want 15s", cfg.Sources.Timeout)
	}
	if cfg.Sources.SecondWaveDelay != 500*time.Millisecond {
		t.Fatalf("second wave delay = %v, want 500ms", cfg.Sources.SecondWaveDelay)
	}
	if cfg.Cache.ReportTTL != 5*time.Minute {
		t.Fatalf("report ttl = %v, want 5m", cfg.Cache.ReportTTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis must be disabled without an endpoint")
	}
}

func TestLoadRequiresSourceURLs(t *testing.T) {
	t.Setenv("INSIGHTS_APP_ENV", "test")
	if _, err := Load(); err == nil {
		t.Fatal("missing source URLs must fail")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INSIGHTS_SOURCE_SECOND_WAVE_DELAY", "250ms")
	t.Setenv("INSIGHTS_REDIS_ADDR", "localhost:6379")
	t.Setenv("INSIGHTS_SOURCE_SEARCH_INDEX_SYNC_URLS", "http://sync-a.internal,http://sync-b.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Sources.SecondWaveDelay != 250*time.Millisecond {
		t.Fatalf("second wave delay = %v", cfg.Sources.SecondWaveDelay)
	}
	if !cfg.Redis.Enabled() {
		t.Fatal("redis address must enable the cache")
	}
	if len(cfg.Sources.SearchIndexSyncURLs) != 2 {
		t.Fatalf("sync urls = %v", cfg.Sources.SearchIndexSyncURLs)
	}
}

func TestAppEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "dev"}).IsDev() {
		t.Fatal("dev must read as dev")
	}
	if !(AppConfig{Env: "PROD"}).IsProd() {
		t.Fatal("env comparison must be case-insensitive")
	}
	if (AppConfig{Env: "dev"}).IsProd() {
		t.Fatal("dev must not read as prod")
	}
}
