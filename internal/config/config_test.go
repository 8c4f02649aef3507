package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxTables != 10 {
		t.Errorf("expected default MAX_TABLES 10, got %d", cfg.MaxTables)
	}
	if cfg.MaxCapacityPerTimeSlot != 50 {
		t.Errorf("expected default MAX_CAPACITY_PER_TIME_SLOT 50, got %d", cfg.MaxCapacityPerTimeSlot)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("expected default provider openai, got %s", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL of 24h, got %s", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_TABLES", "4")
	t.Setenv("MAX_CAPACITY_PER_TIME_SLOT", "16")
	t.Setenv("LLM_PROVIDER", "Bedrock")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.MaxTables != 4 {
		t.Errorf("expected MAX_TABLES 4, got %d", cfg.MaxTables)
	}
	if cfg.MaxCapacityPerTimeSlot != 16 {
		t.Errorf("expected MAX_CAPACITY_PER_TIME_SLOT 16, got %d", cfg.MaxCapacityPerTimeSlot)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Errorf("expected provider normalized to bedrock, got %s", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("MAX_TABLES", "lots")
	cfg := Load()
	if cfg.MaxTables != 10 {
		t.Errorf("expected fallback to 10, got %d", cfg.MaxTables)
	}
}
