package universe

import (
	"testing"

	"emergence/internal/monitor"
)

func TestSweepIndependentOfWorkers(t *testing.T) {
	cfg := smallConfig()
	seeds := []int64{3, 1, 2}
	one := Sweep(cfg, seeds, 40, 1, quietLogger())
	many := Sweep(cfg, seeds, 40, 3, quietLogger())
	if len(one) != 3 || len(many) != 3 {
		t.Fatalf("results = %d and %d, want 3", len(one), len(many))
	}
	for i := range one {
		if one[i].Seed != int64(i+1) {
			t.Fatalf("result %d has seed %d, want sorted seeds", i, one[i].Seed)
		}
		a, b := one[i], many[i]
		if a.Final.Particles != b.Final.Particles || a.Final.Created != b.Final.Created || a.PeakParticles != b.PeakParticles {
			t.Fatalf("seed %d differs across worker counts: %+v vs %+v", a.Seed, a.Final, b.Final)
		}
	}
}

func TestRunSeedTracksPeaks(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.MaxParticles = 20
	res := RunSeed(cfg, 9, 60, quietLogger())
	if res.Final.Tick != 60 {
		t.Fatalf("tick = %d, want 60", res.Final.Tick)
	}
	if res.PeakParticles < res.Final.Particles {
		t.Fatalf("peak = %d below final = %d", res.PeakParticles, res.Final.Particles)
	}
	total := 0
	for _, n := range res.AnomaliesByType {
		total += n
	}
	if total != res.Final.Anomalies {
		t.Fatalf("anomaly tally %d, stats report %d", total, res.Final.Anomalies)
	}
}

func TestSummarize(t *testing.T) {
	results := []SeedResult{
		{Seed: 1, PeakComplexity: 2, Final: Stats{Particles: 10, Anomalies: 2}, AnomaliesByType: map[monitor.AnomalyType]int{"entropy-shift": 2}},
		{Seed: 2, PeakComplexity: 5, Final: Stats{Particles: 30, Inflations: 1}, InflationTriggers: map[string]int{"energy": 1}},
	}
	s := Summarize(results)
	if s.Runs != 2 || s.MeanParticles != 20 {
		t.Fatalf("summary = %+v", s)
	}
	if s.RunsWithAnomaly != 1 || s.RunsWithInflation != 1 {
		t.Fatalf("run counts = %d/%d", s.RunsWithAnomaly, s.RunsWithInflation)
	}
	if s.AnomaliesByType["entropy-shift"] != 2 || s.InflationTriggers["energy"] != 1 {
		t.Fatalf("tallies = %v %v", s.AnomaliesByType, s.InflationTriggers)
	}
	if s.MostComplexSeed != 2 || s.PeakComplexity != 5 {
		t.Fatalf("most complex = %d (%v)", s.MostComplexSeed, s.PeakComplexity)
	}
	if empty := Summarize(nil); empty.Runs != 0 || empty.MeanParticles != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}
}
