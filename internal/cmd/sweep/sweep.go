// Package sweep parses multi-seed sweep flags and reports anomaly and
// inflation statistics across seeds.
package sweep

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"time"

	"emergence/internal/monitor"
	"emergence/internal/platform/config"
	"emergence/internal/sims/universe"
)

// Config holds sweep configuration.
type Config struct {
	Steps     int   `env:"UNIVERSE_SWEEP_STEPS"`
	Seeds     int   `env:"UNIVERSE_SWEEP_SEEDS"`
	FirstSeed int64 `env:"UNIVERSE_SWEEP_FIRST_SEED"`
	Workers   int   `env:"UNIVERSE_SWEEP_WORKERS"`
	Top       int

	Universe universe.Config
}

// ParseConfig layers defaults, environment, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Steps: 600, Seeds: 8, FirstSeed: 1, Workers: runtime.NumCPU(), Top: 5}
	cfg.Universe = universe.DefaultConfig()
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	var overrides config.KVList
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "ticks to simulate per seed")
	fs.IntVar(&cfg.Seeds, "seeds", cfg.Seeds, "number of consecutive seeds to run")
	fs.Int64Var(&cfg.FirstSeed, "first-seed", cfg.FirstSeed, "first seed of the sweep")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.IntVar(&cfg.Top, "top", cfg.Top, "most complex runs to list")
	fs.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	if err := config.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	universe.ApplyMap(&cfg.Universe, overrides.Map())
	if cfg.Seeds <= 0 {
		return Config{}, fmt.Errorf("seeds must be positive, got %d", cfg.Seeds)
	}
	if cfg.Steps <= 0 {
		return Config{}, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return cfg, nil
}

// SeedList lists the seeds the sweep covers.
func (c Config) SeedList() []int64 {
	seeds := make([]int64, c.Seeds)
	for i := range seeds {
		seeds[i] = c.FirstSeed + int64(i)
	}
	return seeds
}

// Run executes the sweep and writes a report to out.
func Run(ctx context.Context, cfg Config, out io.Writer, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sweeping %d seeds (%d workers, %d steps)\n", cfg.Seeds, cfg.Workers, cfg.Steps)
	start := time.Now()
	results := universe.Sweep(cfg.Universe, cfg.SeedList(), cfg.Steps, cfg.Workers, logger)
	elapsed := time.Since(start)

	sum := universe.Summarize(results)
	fmt.Fprintf(out, "\nSummary (elapsed %s):\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  mean particles %.1f  mean complexity %.2f\n", sum.MeanParticles, sum.MeanComplexity)
	fmt.Fprintf(out, "  mean anomalies %.1f  runs with anomalies %d/%d\n", sum.MeanAnomalies, sum.RunsWithAnomaly, sum.Runs)
	fmt.Fprintf(out, "  mean inflations %.2f  runs with inflations %d/%d\n", sum.MeanInflations, sum.RunsWithInflation, sum.Runs)

	if len(sum.AnomaliesByType) > 0 {
		fmt.Fprintln(out, "\nAnomalies by type:")
		for _, k := range sortedTypes(sum.AnomaliesByType) {
			fmt.Fprintf(out, "  %-22s %d\n", k, sum.AnomaliesByType[k])
		}
	}
	if len(sum.InflationTriggers) > 0 {
		fmt.Fprintln(out, "\nInflation triggers:")
		for _, k := range sortedKeys(sum.InflationTriggers) {
			fmt.Fprintf(out, "  %-22s %d\n", k, sum.InflationTriggers[k])
		}
	}

	ranked := append([]universe.SeedResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].PeakComplexity > ranked[j].PeakComplexity })
	fmt.Fprintf(out, "\nTop %d by peak complexity:\n", min(cfg.Top, len(ranked)))
	for i := 0; i < len(ranked) && i < cfg.Top; i++ {
		r := ranked[i]
		fmt.Fprintf(out, "%2d) seed=%d peakComplexity=%.2f peakParticles=%d particles=%d anomalies=%d firstAnomaly=%d inflations=%d\n",
			i+1, r.Seed, r.PeakComplexity, r.PeakParticles, r.Final.Particles, r.Final.Anomalies, r.FirstAnomalyTick, r.Final.Inflations)
	}
	return nil
}

func sortedTypes(m map[monitor.AnomalyType]int) []monitor.AnomalyType {
	keys := make([]monitor.AnomalyType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
