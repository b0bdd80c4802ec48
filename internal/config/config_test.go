//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"telegram-relay-bot/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "999")
	t.Setenv("WEBHOOK_URL", "https://relay.example.com/")
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.AdminID != 999 {
		t.Errorf("expected admin 999, got %d", cfg.Bot.AdminID)
	}
	if cfg.Webhook.Port != 10000 {
		t.Errorf("expected default port 10000, got %d", cfg.Webhook.Port)
	}
	if got := cfg.WebhookURL(); got != "https://relay.example.com/webhook" {
		t.Errorf("unexpected webhook url %q", got)
	}
	if cfg.Bot.SendTimeout != 10*time.Second {
		t.Errorf("expected default send timeout, got %s", cfg.Bot.SendTimeout)
	}
	if cfg.Bot.Lang != "uz" {
		t.Errorf("expected default lang uz, got %q", cfg.Bot.Lang)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := []byte(`
bot:
  token: file-token
  admin_id: 1
  workers: 3
webhook:
  base_url: https://file.example.com
  port: 8080
relay:
  max_entries: 50
  ttl: 72h
log:
  level: debug
`)
	if err := os.WriteFile(path, yml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADMIN_ID", "777")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "file-token" || cfg.Bot.Workers != 3 {
		t.Errorf("file values not applied: %+v", cfg.Bot)
	}
	if cfg.Bot.AdminID != 777 || cfg.Webhook.Port != 9090 {
		t.Errorf("env overrides not applied: admin=%d port=%d", cfg.Bot.AdminID, cfg.Webhook.Port)
	}
	if cfg.Relay.MaxEntries != 50 || cfg.Relay.TTL != 72*time.Hour {
		t.Errorf("relay values not applied: %+v", cfg.Relay)
	}
	if !cfg.Runtime.Dev {
		t.Errorf("expected dev runtime flag")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"missing token", map[string]string{"BOT_TOKEN": ""}, "BOT_TOKEN"},
		{"non-numeric admin", map[string]string{"ADMIN_ID": "admin"}, "ADMIN_ID"},
		{"zero admin", map[string]string{"ADMIN_ID": "0"}, "ADMIN_ID"},
		{"missing webhook url", map[string]string{"WEBHOOK_URL": ""}, "WEBHOOK_URL"},
		{"relative webhook url", map[string]string{"WEBHOOK_URL": "relay.example.com"}, "WEBHOOK_URL"},
		{"bad port", map[string]string{"PORT": "http"}, "PORT"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", false)
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, cfgErr.Field)
			}
		})
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bot: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatalf("expected parse error")
	}
}
