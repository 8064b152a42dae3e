package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHESS_CONFIG_FILE", "LISTEN_ADDR", "REDIS_URL", "DATABASE_URL",
		"CHESS_WEBHOOK_URL", "CHESS_WEBHOOK_TOKEN", "CHESS_LOCALE", "CHESS_MESSAGES_DIR",
		"CHESS_GAME_TTL", "MAX_CONCURRENT_GAMES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &AppConfig{
		ListenAddr:         ":8080",
		RedisURL:           "redis://localhost:6379/0",
		GameTTLSec:         86400,
		MaxConcurrentGames: 200,
		Locale:             "en",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
	if cfg.GameTTL() != 24*time.Hour {
		t.Fatalf("GameTTL = %v", cfg.GameTTL())
	}
}

func TestLoadRequiresRedis(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("Load without REDIS_URL succeeded")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "chessd.yaml")
	body := "listen_addr: \":9000\"\n" +
		"redis_url: redis://file:6379/1\n" +
		"database_url: postgres://file/db\n" +
		"game_ttl_sec: 600\n" +
		"locale: ko\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHESS_CONFIG_FILE", path)
	t.Setenv("REDIS_URL", "redis://env:6379/2")
	t.Setenv("MAX_CONCURRENT_GAMES", "0")
	t.Setenv("CHESS_GAME_TTL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &AppConfig{
		ListenAddr:         ":9000",
		RedisURL:           "redis://env:6379/2",
		DatabaseURL:        "postgres://file/db",
		GameTTLSec:         600,
		MaxConcurrentGames: 0,
		Locale:             "ko",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadBadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHESS_CONFIG_FILE", path)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := Load(); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
	t.Setenv("CHESS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("missing file accepted")
	}
}
