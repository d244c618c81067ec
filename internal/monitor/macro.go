// Package monitor derives population-level scalars on a slow cadence and
// flags anomalies and inflation transitions between cycles.
package monitor

import (
	"math"

	"emergence/internal/particle"
)

// stateBins is the size of the joint charge x kind histogram.
const stateBins = particle.ChargeCount * particle.KindCount

// MinClusterSize is the smallest connected group counted as a cluster.
const MinClusterSize = 3

// MacroState is the macro-state vector of one monitoring cycle.
type MacroState struct {
	Entropy            float64 `json:"entropy"`
	ClusterCount       int     `json:"clusterCount"`
	AdaptiveCount      int     `json:"adaptiveCount"`
	CompositeCount     int     `json:"compositeCount"`
	OrderParameter     float64 `json:"orderParameter"`
	InformationDensity float64 `json:"informationDensity"`
	ComplexityEstimate float64 `json:"complexityEstimate"`
	Population         int     `json:"population"`
}

// Sampler computes macro states. It reuses its spatial index between calls.
type Sampler struct {
	Radius        float64
	KnowledgeCap  float64
	ComplexityCap float64

	bounds particle.Bounds
	grid   *particle.Grid
	parent []int
	size   []int
}

// NewSampler creates a sampler for particles inside bounds.
func NewSampler(bounds particle.Bounds, radius, knowledgeCap, complexityCap float64) *Sampler {
	s := &Sampler{Radius: radius, KnowledgeCap: knowledgeCap, ComplexityCap: complexityCap}
	s.SetBounds(bounds)
	return s
}

// SetBounds resizes the spatial index.
func (s *Sampler) SetBounds(b particle.Bounds) {
	s.bounds = b
	s.grid = particle.NewGrid(b, s.Radius)
}

// Sample computes the macro state of the live particles.
func (s *Sampler) Sample(ps []particle.Particle) MacroState {
	var (
		ms         MacroState
		hist       [stateBins]int
		knowledge  float64
		complexity float64
		vx, vy     float64
		moving     int
	)
	for _, p := range ps {
		if p.Expired {
			continue
		}
		ms.Population++
		hist[int(p.Charge)*particle.KindCount+int(p.Kind)]++
		switch p.Kind {
		case particle.Adaptive:
			ms.AdaptiveCount++
		case particle.Composite:
			ms.CompositeCount++
		}
		knowledge += p.Knowledge
		complexity += p.Complexity
		if speed := math.Hypot(p.VX, p.VY); speed > 0 {
			vx += p.VX / speed
			vy += p.VY / speed
			moving++
		}
	}
	if ms.Population == 0 {
		return ms
	}
	n := float64(ms.Population)

	ms.Entropy = normalizedEntropy(hist[:], ms.Population)
	if moving > 0 {
		ms.OrderParameter = math.Min(math.Hypot(vx, vy)/float64(moving), 1)
	}
	if s.KnowledgeCap > 0 {
		ms.InformationDensity = math.Min(knowledge/(n*s.KnowledgeCap), 1)
	}

	clusters, edges := s.components(ps)
	ms.ClusterCount = clusters
	var density float64
	if ms.Population > 1 {
		density = float64(edges) / (n * (n - 1) / 2)
	}
	var meanComplexity float64
	if s.ComplexityCap > 0 {
		meanComplexity = complexity / n / s.ComplexityCap
	}
	ms.ComplexityEstimate = clamp01(0.5*density + 0.5*meanComplexity)
	return ms
}

// Members returns the IDs of particles belonging to a cluster.
func (s *Sampler) Members(ps []particle.Particle) []uint64 {
	s.components(ps)
	var ids []uint64
	for i, p := range ps {
		if p.Expired {
			continue
		}
		if s.size[s.find(i)] >= MinClusterSize {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// components unions every pair within radius and returns the number of
// components with at least MinClusterSize members plus the edge count.
func (s *Sampler) components(ps []particle.Particle) (clusters, edges int) {
	if cap(s.parent) < len(ps) {
		s.parent = make([]int, len(ps))
		s.size = make([]int, len(ps))
	}
	s.parent = s.parent[:len(ps)]
	s.size = s.size[:len(ps)]
	for i := range ps {
		s.parent[i] = i
		s.size[i] = 1
	}
	if s.Radius <= 0 {
		return 0, 0
	}
	s.grid.Build(ps)
	s.grid.ForEachPair(ps, s.Radius, func(i, j int, _ float64) {
		edges++
		s.union(i, j)
	})
	for i, p := range ps {
		if p.Expired {
			continue
		}
		if s.find(i) == i && s.size[i] >= MinClusterSize {
			clusters++
		}
	}
	return clusters, edges
}

func (s *Sampler) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *Sampler) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if s.size[ra] < s.size[rb] {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	s.size[ra] += s.size[rb]
}

// normalizedEntropy is the Shannon entropy of hist divided by its maximum.
func normalizedEntropy(hist []int, total int) float64 {
	if total == 0 || len(hist) < 2 {
		return 0
	}
	var h float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return clamp01(h / math.Log2(float64(len(hist))))
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
