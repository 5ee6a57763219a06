package config

import (
	"testing"
	"time"
)

func TestGetStringFallback(t *testing.T) {
	if got := GetString("HF_TEST_UNSET_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("HF_TEST_SET_KEY", "value")
	if got := GetString("HF_TEST_SET_KEY", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetIntInvalidUsesFallback(t *testing.T) {
	t.Setenv("HF_TEST_INT", "not-a-number")
	if got := GetInt("HF_TEST_INT", 42); got != 42 {
		t.Fatalf("expected fallback 42, got %d", got)
	}
	t.Setenv("HF_TEST_INT", "7")
	if got := GetInt("HF_TEST_INT", 42); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("HF_TEST_BOOL", "true")
	if !GetBool("HF_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("HF_TEST_BOOL", "junk")
	if GetBool("HF_TEST_BOOL", false) {
		t.Fatalf("expected fallback false on parse error")
	}
}

func TestLoadWebConfigDefaults(t *testing.T) {
	cfg := LoadWebConfig()
	if cfg.Addr != ":3000" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr)
	}
	if cfg.BackendAPIURL != "http://localhost:8000" {
		t.Fatalf("unexpected default backend url: %s", cfg.BackendAPIURL)
	}
	if cfg.CookieName != "hf_session" {
		t.Fatalf("unexpected default cookie name: %s", cfg.CookieName)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected default api timeout: %s", cfg.APITimeout)
	}
	if cfg.SessionTTL != 72*time.Hour {
		t.Fatalf("unexpected default session ttl: %s", cfg.SessionTTL)
	}
}
