package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Rate     float64       `env:"EMERGENCE_TEST_RATE"`
	Interval time.Duration `env:"EMERGENCE_TEST_INTERVAL"`
	Nested   struct {
		Limit int `env:"LIMIT"`
	} `envPrefix:"EMERGENCE_TEST_NESTED_"`
}

func TestParseEnvKeepsUnsetFields(t *testing.T) {
	cfg := envTestConfig{Rate: 20, Interval: time.Second}
	cfg.Nested.Limit = 5
	t.Setenv("EMERGENCE_TEST_NESTED_LIMIT", "9")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Rate != 20 || cfg.Interval != time.Second {
		t.Fatalf("unset fields changed: %+v", cfg)
	}
	if cfg.Nested.Limit != 9 {
		t.Fatalf("nested limit = %d, want 9", cfg.Nested.Limit)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("EMERGENCE_TEST_RATE", "fast")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env for") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
