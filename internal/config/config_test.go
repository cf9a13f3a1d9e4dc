package config

import (
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults() should validate cleanly: %v", err)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("error = %v, want mention of unknown mode", err)
	}
}

func TestValidateMonitorNeedsWsURL(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "monitor"
	cfg.Manifold.WsURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for monitor mode without ws_url")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = ""
	cfg.S3.Bucket = ""
	cfg.Pipeline.PageLimit = 5000
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected combined validation error")
	}
	for _, want := range []string{"redis: addr", "s3: bucket", "page_limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Manifold.ApiKey = "secret-key"
	cfg.Postgres.Password = "hunter2"
	cfg.S3.SecretKey = "s3secret"
	cfg.Notify.TelegramToken = "tg-token"

	red := RedactedConfig(&cfg)
	if red.Manifold.ApiKey != "***" || red.Postgres.Password != "***" ||
		red.S3.SecretKey != "***" || red.Notify.TelegramToken != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	// Original untouched.
	if cfg.Manifold.ApiKey != "secret-key" {
		t.Error("RedactedConfig mutated the original")
	}
	// Empty secrets stay empty rather than becoming placeholders.
	if red.Redis.Password != "" {
		t.Errorf("empty secret redacted to %q", red.Redis.Password)
	}
}
