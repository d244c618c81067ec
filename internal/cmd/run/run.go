// Package run parses headless runner flags and drives a universe for a fixed
// number of steps with sqlite persistence.
package run

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"emergence/internal/platform/config"
	"emergence/internal/sims/universe"
	"emergence/internal/storage"
	"emergence/internal/storage/sqlite"
)

// Config holds headless runner configuration.
type Config struct {
	DB      string `env:"UNIVERSE_DB"`
	Steps   int    `env:"UNIVERSE_STEPS"`
	Load    string `env:"UNIVERSE_LOAD"`
	Save    string `env:"UNIVERSE_SAVE"`
	Run     string `env:"UNIVERSE_RUN"`
	History int    `env:"UNIVERSE_HISTORY"`
	List    bool

	Universe universe.Config
}

// ParseConfig layers defaults, environment, then flags. -set overrides are
// applied last so they win over the environment.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{DB: "emergence.db", Steps: 600, Save: "latest", History: 10}
	cfg.Universe = universe.DefaultConfig()
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	var overrides config.KVList
	fs.StringVar(&cfg.DB, "db", cfg.DB, "sqlite database path")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "logical steps to run")
	fs.StringVar(&cfg.Load, "load", cfg.Load, "state key to resume from")
	fs.StringVar(&cfg.Save, "save", cfg.Save, "state key to save under (empty skips saving)")
	fs.StringVar(&cfg.Run, "run", cfg.Run, "history run name (defaults to the save key)")
	fs.IntVar(&cfg.History, "history", cfg.History, "recent anomalies to print (0 prints none)")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list saved states and exit")
	fs.Int64Var(&cfg.Universe.Seed, "seed", cfg.Universe.Seed, "seed for a fresh universe")
	fs.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	if err := config.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	universe.ApplyMap(&cfg.Universe, overrides.Map())
	if cfg.Steps < 0 {
		return Config{}, fmt.Errorf("steps must be non-negative, got %d", cfg.Steps)
	}
	if strings.TrimSpace(cfg.Run) == "" {
		cfg.Run = cfg.Save
	}
	if strings.TrimSpace(cfg.Run) == "" {
		cfg.Run = fmt.Sprintf("seed-%d", cfg.Universe.Seed)
	}
	return cfg, nil
}

// Run executes the headless session and writes a report to out.
func Run(ctx context.Context, cfg Config, out io.Writer, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	store, err := sqlite.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Printf("close store: %v", err)
		}
	}()

	if cfg.List {
		return listStates(ctx, store, out)
	}

	runner := universe.NewRunner(universe.New(cfg.Universe, logger), universe.Hooks{
		OnError: func(err error) { logger.Printf("runner: %v", err) },
	})
	defer runner.Close()

	if cfg.Load != "" {
		if err := load(ctx, store, runner, cfg.Load); err != nil {
			return err
		}
		fmt.Fprintf(out, "resumed %q at tick %d\n", cfg.Load, runner.Stats().Tick)
	}

	rec := storage.NewRecorder[*universe.Universe](store, cfg.Run, logger)
	runner.Subscribe(rec)

	if err := stepAll(ctx, runner, cfg.Steps); err != nil {
		rec.Close()
		return err
	}
	rec.Close()

	if cfg.Save != "" {
		if err := runner.SaveNow(ctx, store, cfg.Save); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %q\n", cfg.Save)
	}

	for _, line := range runner.Stats().Lines() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "history: %d written, %d dropped\n", rec.Written(), rec.Dropped())

	if cfg.History > 0 {
		return printHistory(ctx, store, out, cfg.Run, cfg.History)
	}
	return nil
}

// stepChunk bounds how many steps run between cancellation checks.
const stepChunk = 64

func stepAll(ctx context.Context, runner *universe.Runner, steps int) error {
	for done := 0; done < steps; {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped after %d steps: %w", done, err)
		}
		n := steps - done
		if n > stepChunk {
			n = stepChunk
		}
		runner.Steps(n)
		done += n
	}
	return nil
}

func load(ctx context.Context, store storage.StateStore, runner *universe.Runner, key string) error {
	blob, err := store.LoadState(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no saved state %q", key)
		}
		return err
	}
	state, err := universe.Deserialize(blob)
	if err != nil {
		return err
	}
	return runner.Restore(state)
}

func listStates(ctx context.Context, store storage.StateStore, out io.Writer) error {
	infos, err := store.ListStates(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "no saved states")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%-20s %8d bytes  %s\n", info.Key, info.Bytes, info.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printHistory(ctx context.Context, store storage.HistoryStore, out io.Writer, run string, limit int) error {
	anomalies, err := store.ListAnomalies(ctx, run, limit)
	if err != nil {
		return err
	}
	inflations, err := store.ListInflations(ctx, run)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %q: %d recent anomalies, %d inflations\n", run, len(anomalies), len(inflations))
	for _, a := range anomalies {
		fmt.Fprintf(out, "  tick %6d  %-20s severity %.2f  %s\n", a.Tick, a.Type, a.Severity, a.Description)
	}
	for _, ev := range inflations {
		fmt.Fprintf(out, "  inflation #%d ticks %d-%d  %d -> %d particles (%s)\n",
			ev.ID, ev.Tick, ev.EndTick, ev.ParticlesBefore, ev.ParticlesAfter, ev.Trigger)
	}
	return nil
}
