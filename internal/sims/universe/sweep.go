package universe

import (
	"log"
	"sort"
	"sync"

	"emergence/internal/monitor"
)

// SeedResult summarises one headless run.
type SeedResult struct {
	Seed              int64
	Final             Stats
	PeakParticles     int
	PeakComplexity    float64
	FirstAnomalyTick  uint64
	AnomaliesByType   map[monitor.AnomalyType]int
	InflationTriggers map[string]int
}

// RunSeed steps a fresh universe built from cfg with the given seed.
func RunSeed(cfg Config, seed int64, steps int, logger *log.Logger) SeedResult {
	cfg.Seed = seed
	u := New(cfg, logger)
	res := SeedResult{
		Seed:              seed,
		AnomaliesByType:   make(map[monitor.AnomalyType]int),
		InflationTriggers: make(map[string]int),
	}
	for i := 0; i < steps; i++ {
		u.Step()
		u.Events().Drain()
		if n := u.store.Len(); n > res.PeakParticles {
			res.PeakParticles = n
		}
		if n := u.store.Len(); n > 0 {
			if c := u.store.Totals().Complexity / float64(n); c > res.PeakComplexity {
				res.PeakComplexity = c
			}
		}
	}
	for _, a := range u.Anomalies() {
		if res.FirstAnomalyTick == 0 {
			res.FirstAnomalyTick = a.Tick
		}
		res.AnomaliesByType[a.Type]++
	}
	for _, ev := range u.Inflations() {
		res.InflationTriggers[ev.Trigger]++
	}
	res.Final = u.Stats()
	return res
}

// Sweep runs every seed on a pool of workers and returns results ordered by
// seed. Runs share nothing, so results do not depend on the worker count.
func Sweep(cfg Config, seeds []int64, steps, workers int, logger *log.Logger) []SeedResult {
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan int64)
	results := make(chan SeedResult)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range jobs {
				results <- RunSeed(cfg, seed, steps, logger)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, seed := range seeds {
			jobs <- seed
		}
		close(jobs)
	}()

	all := make([]SeedResult, 0, len(seeds))
	for res := range results {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seed < all[j].Seed })
	return all
}

// SweepSummary aggregates a sweep.
type SweepSummary struct {
	Runs              int
	MeanParticles     float64
	MeanComplexity    float64
	MeanAnomalies     float64
	MeanInflations    float64
	RunsWithAnomaly   int
	RunsWithInflation int
	AnomaliesByType   map[monitor.AnomalyType]int
	InflationTriggers map[string]int
	MostComplexSeed   int64
	PeakComplexity    float64
}

// Summarize folds per-seed results into totals and means.
func Summarize(results []SeedResult) SweepSummary {
	s := SweepSummary{
		Runs:              len(results),
		AnomaliesByType:   make(map[monitor.AnomalyType]int),
		InflationTriggers: make(map[string]int),
	}
	if len(results) == 0 {
		return s
	}
	for i, r := range results {
		s.MeanParticles += float64(r.Final.Particles)
		s.MeanComplexity += r.Final.ComplexityIndex
		s.MeanAnomalies += float64(r.Final.Anomalies)
		s.MeanInflations += float64(r.Final.Inflations)
		if r.Final.Anomalies > 0 {
			s.RunsWithAnomaly++
		}
		if r.Final.Inflations > 0 {
			s.RunsWithInflation++
		}
		for k, v := range r.AnomaliesByType {
			s.AnomaliesByType[k] += v
		}
		for k, v := range r.InflationTriggers {
			s.InflationTriggers[k] += v
		}
		if i == 0 || r.PeakComplexity > s.PeakComplexity {
			s.MostComplexSeed = r.Seed
			s.PeakComplexity = r.PeakComplexity
		}
	}
	n := float64(len(results))
	s.MeanParticles /= n
	s.MeanComplexity /= n
	s.MeanAnomalies /= n
	s.MeanInflations /= n
	return s
}
