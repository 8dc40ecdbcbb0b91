package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "LUNARCRUSH_API_KEY", "REDIS_URL", "ANALYSIS_WORKERS", "MIN_NET_SCORE", "NEWS_FEEDS", "SOURCES_SAMPLE_ONLY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.Storage.RedisURL)
	}
	if cfg.Analysis.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.MinNetScore != 2.0 {
		t.Fatalf("expected threshold 2.0, got %v", cfg.Analysis.MinNetScore)
	}
	if cfg.Analysis.SymbolTimeout != 20*time.Second {
		t.Fatalf("unexpected symbol timeout: %v", cfg.Analysis.SymbolTimeout)
	}
	if len(cfg.Sources.NewsFeeds) != 2 {
		t.Fatalf("expected two default feeds, got %v", cfg.Sources.NewsFeeds)
	}
	if cfg.Sources.SocialLive() {
		t.Fatal("social must use sample data without credentials")
	}
}

func TestLoadWithEnv(t *testing.T) {
	unsetEnv(t, "SOURCES_SAMPLE_ONLY")
	t.Setenv("LUNARCRUSH_API_KEY", "lc")
	t.Setenv("FRED_API_KEY", "fred")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("ANALYSIS_WORKERS", "4")
	t.Setenv("MIN_NET_SCORE", "1.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MCP_TRANSPORT", "HTTP")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.RedisURL != "redis:6379" || cfg.Analysis.Workers != 4 || cfg.Analysis.MinNetScore != 1.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if !cfg.Sources.SocialLive() || !cfg.Sources.MacroLive() {
		t.Fatal("expected live social and macro sources")
	}
	if cfg.MCP.Transport != "http" {
		t.Fatalf("expected http transport, got %s", cfg.MCP.Transport)
	}
}

func TestLoadSampleOnlyOverridesCredentials(t *testing.T) {
	t.Setenv("LUNARCRUSH_API_KEY", "lc")
	t.Setenv("SOURCES_SAMPLE_ONLY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sources.SocialLive() {
		t.Fatal("sample-only mode must disable live social")
	}
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	t.Setenv("ANALYSIS_WORKERS", "0")
	t.Setenv("MIN_NET_SCORE", "-1")
	t.Setenv("MCP_TRANSPORT", "grpc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Workers != 8 || cfg.Analysis.MinNetScore != 2.0 || cfg.MCP.Transport != "stdio" {
		t.Fatalf("expected normalized defaults, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("ANALYSIS_WORKERS", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed ANALYSIS_WORKERS")
	}
}
