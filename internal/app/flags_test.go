package app

import (
	"flag"
	"testing"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-scale", "1.5", "-hud", "0", "-seed", "9", "-audio", "-paused"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Scale != 1.5 || cfg.HUDWidth != 0 || cfg.Seed != 9 || !cfg.Audio || !cfg.Paused {
		t.Fatalf("flags not bound: %+v", cfg)
	}
	if !cfg.Resizable {
		t.Fatal("unset flags must keep defaults")
	}
}
