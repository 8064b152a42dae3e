package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`

	GameTTLSec         int `yaml:"game_ttl_sec"`
	MaxConcurrentGames int `yaml:"max_concurrent_games"`

	Locale      string `yaml:"locale"`
	MessagesDir string `yaml:"messages_dir"`
}

// GameTTL is GameTTLSec as a duration.
func (c *AppConfig) GameTTL() time.Duration {
	return time.Duration(c.GameTTLSec) * time.Second
}

func defaults() *AppConfig {
	return &AppConfig{
		ListenAddr:         ":8080",
		GameTTLSec:         86400,
		MaxConcurrentGames: 200,
		Locale:             "en",
	}
}

// Load applies defaults, then the YAML file named by CHESS_CONFIG_FILE, then
// the environment.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CHESS_CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.WebhookURL, "CHESS_WEBHOOK_URL")
	setString(&cfg.WebhookToken, "CHESS_WEBHOOK_TOKEN")
	setString(&cfg.Locale, "CHESS_LOCALE")
	setString(&cfg.MessagesDir, "CHESS_MESSAGES_DIR")

	if v := strings.TrimSpace(os.Getenv("CHESS_GAME_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrentGames = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.ListenAddr == "" {
		return nil, errors.New("LISTEN_ADDR is required")
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	overlay := *c
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if overlay.GameTTLSec <= 0 {
		overlay.GameTTLSec = c.GameTTLSec
	}
	if overlay.MaxConcurrentGames < 0 {
		overlay.MaxConcurrentGames = c.MaxConcurrentGames
	}
	*c = overlay
	c.trim()
	return nil
}

func (c *AppConfig) trim() {
	for _, p := range []*string{&c.ListenAddr, &c.RedisURL, &c.DatabaseURL, &c.WebhookURL, &c.WebhookToken, &c.Locale, &c.MessagesDir} {
		*p = strings.TrimSpace(*p)
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
