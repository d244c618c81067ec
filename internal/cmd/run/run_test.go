package run

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	fs := flag.NewFlagSet("universe-run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func smallArgs(db string, extra ...string) []string {
	args := []string{"-db", db, "-set", "w=120", "-set", "h=90", "-set", "depth=2", "-seed", "5"}
	return append(args, extra...)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg := parse(t)
	if cfg.DB != "emergence.db" || cfg.Steps != 600 || cfg.Save != "latest" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Run != "latest" {
		t.Fatalf("run = %q, want the save key", cfg.Run)
	}
}

func TestParseConfigLayers(t *testing.T) {
	t.Setenv("UNIVERSE_STEPS", "50")
	t.Setenv("UNIVERSE_MAX_PARTICLES", "77")
	cfg := parse(t, "-set", "max_particles=33", "-save", "", "-seed", "42")
	if cfg.Steps != 50 {
		t.Fatalf("steps = %d, want env value 50", cfg.Steps)
	}
	if cfg.Universe.Params.MaxParticles != 33 {
		t.Fatalf("max particles = %d, want -set to win", cfg.Universe.Params.MaxParticles)
	}
	if cfg.Run != "seed-42" {
		t.Fatalf("run = %q, want seed-42", cfg.Run)
	}
}

func TestParseConfigRejectsNegativeSteps(t *testing.T) {
	fs := flag.NewFlagSet("universe-run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-steps", "-1"}); err == nil {
		t.Fatal("expected error")
	}
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestRunSaveAndResume(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	var first bytes.Buffer
	if err := Run(ctx, parse(t, smallArgs(db, "-steps", "30", "-save", "a")...), &first, quiet()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !strings.Contains(first.String(), `saved "a"`) || !strings.Contains(first.String(), "tick 30") {
		t.Fatalf("first report:\n%s", first.String())
	}

	var second bytes.Buffer
	if err := Run(ctx, parse(t, smallArgs(db, "-steps", "20", "-load", "a", "-save", "b")...), &second, quiet()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(second.String(), `resumed "a" at tick 30`) || !strings.Contains(second.String(), "tick 50") {
		t.Fatalf("second report:\n%s", second.String())
	}

	var list bytes.Buffer
	if err := Run(ctx, parse(t, "-db", db, "-list"), &list, quiet()); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := list.String()
	if !strings.Contains(out, "a ") || !strings.Contains(out, "b ") {
		t.Fatalf("list output:\n%s", out)
	}
}

func TestRunMissingLoad(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	err := Run(context.Background(), parse(t, smallArgs(db, "-steps", "1", "-load", "nope")...), io.Discard, quiet())
	if err == nil || !strings.Contains(err.Error(), `no saved state "nope"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, parse(t, smallArgs(db, "-steps", "10")...), io.Discard, quiet())
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestRunEmptyList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	var out bytes.Buffer
	if err := Run(context.Background(), parse(t, "-db", db, "-list"), &out, quiet()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out.String()) != "no saved states" {
		t.Fatalf("output = %q", out.String())
	}
}
