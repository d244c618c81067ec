// Package interact runs pairwise knowledge exchange between nearby particles.
package interact

import (
	"math"

	"emergence/internal/particle"
	"emergence/pkg/core"
)

const (
	reinforceGain = 1.5
	inhibitGain   = 0.5

	affinityOpposite = 1.0
	affinityPositive = 0.5
	affinityNegative = 0.25
	affinityNeutral  = 0.1

	energyPull  = 0.1
	energyBonus = 0.1
)

// Params configures the interaction pass.
type Params struct {
	Radius             float64
	Probability        float64
	LearningRate       float64
	EnergyLossRate     float64
	EnergyConservation bool
	KnowledgeCap       float64
	ComplexityCap      float64
}

// DefaultParams returns the standard interaction tunables.
func DefaultParams() Params {
	return Params{
		Radius:             24,
		Probability:        0.05,
		LearningRate:       0.1,
		EnergyLossRate:     0.5,
		EnergyConservation: true,
		KnowledgeCap:       100,
		ComplexityCap:      100,
	}
}

// Result summarises one interaction pass.
type Result struct {
	Candidates  int
	Fired       int
	Transferred float64
}

// Engine owns the spatial index reused between passes.
type Engine struct {
	params Params
	bounds particle.Bounds
	grid   *particle.Grid
}

// New creates an engine for particles living inside bounds.
func New(params Params, bounds particle.Bounds) *Engine {
	e := &Engine{params: params, bounds: bounds}
	e.rebuildGrid()
	return e
}

func (e *Engine) rebuildGrid() {
	e.grid = particle.NewGrid(e.bounds, e.params.Radius)
}

// Params returns the active tunables.
func (e *Engine) Params() Params { return e.params }

// SetParams replaces the tunables; a radius change rebuilds the grid.
func (e *Engine) SetParams(p Params) {
	radiusChanged := p.Radius != e.params.Radius
	e.params = p
	if radiusChanged {
		e.rebuildGrid()
	}
}

// SetBounds resizes the spatial index.
func (e *Engine) SetBounds(b particle.Bounds) {
	e.bounds = b
	e.rebuildGrid()
}

// Probability returns the firing chance for a pair given their charges.
func (e *Engine) Probability(a, b particle.Charge) float64 {
	p := e.params.Probability
	switch {
	case a == particle.Positive && b == particle.Positive:
		p *= reinforceGain
	case a == particle.Negative && b == particle.Negative:
		p *= inhibitGain
	}
	return math.Min(math.Max(p, 0), 1)
}

// Affinity is the charge-dependent term of the transfer amount.
func Affinity(a, b particle.Charge) float64 {
	switch {
	case a == particle.Neutral || b == particle.Neutral:
		return affinityNeutral
	case a != b:
		return affinityOpposite
	case a == particle.Positive:
		return affinityPositive
	}
	return affinityNegative
}

// Run visits every pair of live particles within the interaction radius in a
// deterministic order and fires each with one uniform draw.
func (e *Engine) Run(ps []particle.Particle, rng *core.RNG) Result {
	var res Result
	if len(ps) < 2 || e.params.Radius <= 0 {
		return res
	}
	e.grid.Build(ps)
	e.grid.ForEachPair(ps, e.params.Radius, func(i, j int, _ float64) {
		res.Candidates++
		if rng.Float64() >= e.Probability(ps[i].Charge, ps[j].Charge) {
			return
		}
		res.Fired++
		res.Transferred += e.Transfer(&ps[i], &ps[j])
	})
	return res
}

// Transfer fires a single interaction between a and b and returns the amount
// the receiver gained. The particle with more knowledge donates; on a tie the
// lower ID donates. The donor loses transfer*EnergyLossRate.
func (e *Engine) Transfer(a, b *particle.Particle) float64 {
	donor, receiver := a, b
	if b.Knowledge > a.Knowledge || (b.Knowledge == a.Knowledge && b.ID < a.ID) {
		donor, receiver = b, a
	}
	transfer := e.params.LearningRate * (0.5*math.Abs(donor.Knowledge-receiver.Knowledge) + Affinity(a.Charge, b.Charge))
	if transfer < 0 {
		transfer = 0
	}
	loss := clampOpen(e.params.EnergyLossRate)

	receiver.Knowledge = math.Min(receiver.Knowledge+transfer, e.params.KnowledgeCap)
	donor.Knowledge = math.Max(donor.Knowledge-transfer*loss, 0)

	if e.params.EnergyConservation {
		mean := (a.Energy + b.Energy) / 2
		a.Energy += (mean - a.Energy) * energyPull
		b.Energy += (mean - b.Energy) * energyPull
	} else {
		a.Energy += energyBonus * transfer
		b.Energy += energyBonus * transfer
	}

	a.Interactions++
	b.Interactions++
	particle.RecomputeComplexity(a, e.params.ComplexityCap)
	particle.RecomputeComplexity(b, e.params.ComplexityCap)
	return transfer
}

// clampOpen keeps the loss rate strictly inside (0, 1).
func clampOpen(v float64) float64 {
	const eps = 1e-6
	if v != v || v < eps {
		return eps
	}
	if v > 1-eps {
		return 1 - eps
	}
	return v
}
