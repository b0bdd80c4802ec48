// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"telegram-relay-bot/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string        `yaml:"token"`
	AdminID     int64         `yaml:"admin_id"`
	Lang        string        `yaml:"lang"`    // uz | en
	Workers     int           `yaml:"workers"` // dispatch workers
	SendTimeout time.Duration `yaml:"send_timeout"`
	APIEndpoint string        `yaml:"api_endpoint"` // tgbotapi endpoint format, empty = api.telegram.org
}

type WebhookConfig struct {
	BaseURL         string        `yaml:"base_url"` // public URL, e.g. https://your-app.onrender.com
	Path            string        `yaml:"path"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RelayConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	TTL           time.Duration `yaml:"ttl"` // 0 keeps correlations for the process lifetime
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty = in-memory update guard
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Webhook WebhookConfig `yaml:"webhook"`
	Relay   RelayConfig   `yaml:"relay"`
	Log     LogConfig     `yaml:"log"`
	Redis   RedisConfig   `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// WebhookURL is the full URL registered with Telegram.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.Webhook.BaseURL, "/") + c.Webhook.Path
}

// LoadConfig reads the optional YAML file at path, applies environment
// overrides and defaults, and validates the result. A missing file is not an
// error; a missing required value is a *domain.ConfigError.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("BOT_TOKEN"); ok {
		cfg.Bot.Token = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("ADMIN_ID"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &domain.ConfigError{Field: "ADMIN_ID", Reason: "must be a numeric Telegram user id"}
		}
		cfg.Bot.AdminID = id
	}
	if v, ok := os.LookupEnv("WEBHOOK_URL"); ok {
		cfg.Webhook.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("WEBHOOK_PATH"); ok {
		cfg.Webhook.Path = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &domain.ConfigError{Field: "PORT", Reason: "must be a number"}
		}
		cfg.Webhook.Port = port
	}
	if v, ok := os.LookupEnv("BOT_LANG"); ok {
		cfg.Bot.Lang = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("REDIS_URL"); ok {
		cfg.Redis.URL = strings.TrimSpace(v)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Lang == "" {
		cfg.Bot.Lang = "uz"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.SendTimeout <= 0 {
		cfg.Bot.SendTimeout = 10 * time.Second
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhook"
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		cfg.Webhook.Path = "/" + cfg.Webhook.Path
	}
	if cfg.Webhook.Port == 0 {
		cfg.Webhook.Port = 10000
	}
	if cfg.Webhook.ShutdownTimeout <= 0 {
		cfg.Webhook.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Relay.MaxEntries == 0 {
		cfg.Relay.MaxEntries = 100000
	}
	if cfg.Relay.SweepInterval <= 0 {
		cfg.Relay.SweepInterval = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
}

func validate(cfg *Config) error {
	if cfg.Bot.Token == "" {
		return &domain.ConfigError{Field: "BOT_TOKEN", Reason: "is required"}
	}
	if cfg.Bot.AdminID == 0 {
		return &domain.ConfigError{Field: "ADMIN_ID", Reason: "is required"}
	}
	if cfg.Webhook.BaseURL == "" {
		return &domain.ConfigError{Field: "WEBHOOK_URL", Reason: "is required"}
	}
	u, err := url.Parse(cfg.Webhook.BaseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return &domain.ConfigError{Field: "WEBHOOK_URL", Reason: "must be an absolute http(s) URL"}
	}
	if cfg.Webhook.Port < 1 || cfg.Webhook.Port > 65535 {
		return &domain.ConfigError{Field: "PORT", Reason: "must be between 1 and 65535"}
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
