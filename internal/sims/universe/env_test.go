package universe

import (
	"testing"
	"time"

	"emergence/internal/platform/config"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("UNIVERSE_MAX_PARTICLES", "42")
	t.Setenv("UNIVERSE_RENDER_MODE", "field")
	t.Setenv("UNIVERSE_STATS_INTERVAL", "2s")
	t.Setenv("UNIVERSE_ANOMALY_ENTROPY", "0.2")
	t.Setenv("UNIVERSE_INFLATION_DURATION", "30")

	cfg := DefaultConfig()
	if err := config.ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Params.MaxParticles != 42 || cfg.RenderMode != RenderField || cfg.StatsInterval != 2*time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Params.Thresholds.Entropy != 0.2 || cfg.Params.Inflation.Duration != 30 {
		t.Fatalf("prefixed overrides not applied: %+v / %+v", cfg.Params.Thresholds, cfg.Params.Inflation)
	}
	if cfg.Params.LearningRate != DefaultConfig().Params.LearningRate {
		t.Fatal("unset variables must keep defaults")
	}
}
