package particle

import (
	"math"
	"sort"
	"time"

	"emergence/pkg/core"
)

// Sampler is the read-only view of the intent field the store needs.
type Sampler interface {
	Sample(x, y, z float64) float64
	Gradient(x, y, z float64) (gx, gy float64)
}

// Totals aggregates population scalars.
type Totals struct {
	Knowledge  float64
	Energy     float64
	Complexity float64
}

// Store owns the particle population. Particles are kept in ascending ID
// order, so the oldest particle is always at index zero.
type Store struct {
	params Params
	bounds Bounds
	rng    *core.RNG

	particles []Particle
	nextID    uint64
	budget    float64
	primed    bool

	postInflation bool
	lastEvicted   Particle
	hasEvicted    bool
}

// NewStore creates an empty store. The creation budget starts empty; the
// first TryCreate call is granted min(1, rate) tokens so a positive rate
// attempts at once and a zero rate never does.
func NewStore(params Params, bounds Bounds, rng *core.RNG) *Store {
	return &Store{
		params: params,
		bounds: bounds,
		rng:    rng,
		nextID: 1,
	}
}

// Params returns the active lifecycle tunables.
func (s *Store) Params() Params { return s.params }

// SetParams replaces the lifecycle tunables.
func (s *Store) SetParams(p Params) { s.params = p }

// Bounds returns the world the particles live in.
func (s *Store) Bounds() Bounds { return s.bounds }

// SetBounds changes the world extent and pulls every particle inside it.
func (s *Store) SetBounds(b Bounds) {
	s.bounds = b
	for i := range s.particles {
		b.Clamp(&s.particles[i])
	}
}

// Len returns the population size, including particles awaiting compaction.
func (s *Store) Len() int { return len(s.particles) }

// Live exposes the backing slice for in-tick mutation by the interaction
// engine. Callers outside the tick must use Snapshot.
func (s *Store) Live() []Particle { return s.particles }

// Snapshot returns a copy of the population.
func (s *Store) Snapshot() []Particle {
	return append([]Particle(nil), s.particles...)
}

// NextID reports the identifier the next particle will receive.
func (s *Store) NextID() uint64 { return s.nextID }

// Budget reports the creation tokens currently available.
func (s *Store) Budget() float64 { return s.budget }

// SetPostInflation toggles flagging of newly created particles.
func (s *Store) SetPostInflation(on bool) { s.postInflation = on }

// LastEvicted returns the particle removed by the most recent TryCreate, if any.
func (s *Store) LastEvicted() (Particle, bool) { return s.lastEvicted, s.hasEvicted }

// TryCreate refills the creation budget by rate*elapsed and, when a token is
// available, spends it on one creation attempt at a random position. The
// sampled field value must exceed the creation threshold in magnitude. When
// the population is at max the oldest particle is evicted first.
func (s *Store) TryCreate(f Sampler, rate float64, max int, elapsed time.Duration) (Particle, bool) {
	s.hasEvicted = false
	if rate < 0 || math.IsNaN(rate) {
		rate = 0
	}
	if !s.primed {
		s.primed = true
		s.budget = math.Min(1, rate)
	}
	if elapsed > 0 {
		s.budget += rate * elapsed.Seconds()
		if limit := math.Max(1, rate); s.budget > limit {
			s.budget = limit
		}
	}
	if max <= 0 || s.budget < 1 {
		return Particle{}, false
	}
	s.budget--

	x := s.rng.Range(0, s.bounds.Width)
	y := s.rng.Range(0, s.bounds.Height)
	z := s.rng.Range(0, s.bounds.Depth)
	v := f.Sample(x, y, z)
	threshold := s.params.CreationThreshold

	var charge Charge
	switch {
	case v > threshold:
		charge = Positive
	case v < -threshold:
		charge = Negative
	default:
		return Particle{}, false
	}

	for len(s.particles) >= max {
		s.evictOldest()
	}

	intent := math.Abs(v) * s.params.IntentMultiplier
	spread := s.params.MaxSpeed / 4
	p := Particle{
		ID:            s.nextID,
		X:             x,
		Y:             y,
		Z:             z,
		VX:            s.rng.Uniform(spread),
		VY:            s.rng.Uniform(spread),
		Charge:        charge,
		Intent:        intent,
		Energy:        intent,
		PostInflation: s.postInflation,
	}
	s.nextID++
	s.particles = append(s.particles, p)
	return p, true
}

// Trim evicts the oldest particles until at most max remain. The evicted
// particles are returned oldest first.
func (s *Store) Trim(max int) []Particle {
	if max < 0 {
		max = 0
	}
	n := len(s.particles) - max
	if n <= 0 {
		return nil
	}
	out := append([]Particle(nil), s.particles[:n]...)
	copy(s.particles, s.particles[n:])
	keep := len(s.particles) - n
	for i := keep; i < len(s.particles); i++ {
		s.particles[i] = Particle{}
	}
	s.particles = s.particles[:keep]
	return out
}

func (s *Store) evictOldest() {
	s.lastEvicted = s.particles[0]
	s.hasEvicted = true
	copy(s.particles, s.particles[1:])
	s.particles = s.particles[:len(s.particles)-1]
}

// Age advances every particle by dt seconds and decays its energy. Particles
// past their lifespan are only marked; Compact removes them.
func (s *Store) Age(dt float64) {
	retain := 1 - s.params.EnergyDecay
	if retain < 0 {
		retain = 0
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.Age += dt
		p.Energy *= retain
		if s.params.Lifespan > 0 && p.Age > s.params.Lifespan {
			p.Expired = true
		}
	}
}

// Compact removes expired particles in place, preserving order, and returns
// how many were dropped.
func (s *Store) Compact() int {
	kept := s.particles[:0]
	for _, p := range s.particles {
		if !p.Expired {
			kept = append(kept, p)
		}
	}
	removed := len(s.particles) - len(kept)
	for i := len(kept); i < len(s.particles); i++ {
		s.particles[i] = Particle{}
	}
	s.particles = kept
	return removed
}

// Move applies field coupling and integrates positions over dt seconds.
// Positively charged particles climb the local field gradient, negatively
// charged ones descend it; neutral particles only drift.
func (s *Store) Move(f Sampler, dt float64) {
	b := s.bounds
	for i := range s.particles {
		p := &s.particles[i]
		if p.Expired {
			continue
		}
		if sign := p.Charge.Sign(); sign != 0 {
			gx, gy := f.Gradient(p.X, p.Y, p.Z)
			accel := sign * s.params.FieldCoupling
			p.VX += gx * accel * dt
			p.VY += gy * accel * dt
		}
		p.VX *= s.params.Damping
		p.VY *= s.params.Damping
		p.VZ *= s.params.Damping
		if speed := math.Sqrt(p.VX*p.VX + p.VY*p.VY + p.VZ*p.VZ); speed > s.params.MaxSpeed && speed > 0 {
			k := s.params.MaxSpeed / speed
			p.VX *= k
			p.VY *= k
			p.VZ *= k
		}
		p.X, p.VX = reflect(p.X+p.VX*dt, p.VX, b.Width)
		p.Y, p.VY = reflect(p.Y+p.VY*dt, p.VY, b.Height)
		p.Z, p.VZ = reflect(p.Z+p.VZ*dt, p.VZ, b.Depth)
	}
}

func reflect(pos, vel, limit float64) (float64, float64) {
	if limit <= 0 {
		return 0, 0
	}
	if pos < 0 {
		return math.Min(-pos, limit), -vel
	}
	if pos > limit {
		return math.Max(2*limit-pos, 0), -vel
	}
	return pos, vel
}

// Project recomputes every particle's Kind from its scalars.
func (s *Store) Project() {
	for i := range s.particles {
		s.particles[i].Kind = Classify(s.particles[i], s.params)
	}
}

// Classify derives a kind from energy, knowledge, complexity and interaction
// count. Earlier rules take precedence.
func Classify(p Particle, params Params) Kind {
	switch {
	case p.Knowledge >= params.AdaptiveKnowledge:
		return Adaptive
	case p.Interactions >= params.CompositeInteraction:
		return Composite
	case p.Complexity >= params.QuantumComplexity:
		return Quantum
	case p.Energy >= params.HighEnergyThreshold:
		return HighEnergy
	}
	return Standard
}

// Totals sums knowledge, energy and complexity over live particles.
func (s *Store) Totals() Totals {
	var t Totals
	for _, p := range s.particles {
		if p.Expired {
			continue
		}
		t.Knowledge += p.Knowledge
		t.Energy += p.Energy
		t.Complexity += p.Complexity
	}
	return t
}

// Reset removes every particle and empties the creation budget. Identifiers
// keep increasing so they stay unique for the session.
func (s *Store) Reset() {
	s.particles = s.particles[:0]
	s.budget = 0
	s.primed = false
	s.hasEvicted = false
	s.postInflation = false
}

// Restore replaces the population. Records with non-finite scalars are
// dropped, the rest are pulled into bounds, sorted by ID and re-projected.
// nextID is raised past the largest restored ID when needed.
func (s *Store) Restore(ps []Particle, nextID uint64) int {
	s.particles = s.particles[:0]
	dropped := 0
	seen := make(map[uint64]struct{}, len(ps))
	for _, p := range ps {
		if !finite(p) {
			dropped++
			continue
		}
		if _, dup := seen[p.ID]; dup || p.ID == 0 {
			dropped++
			continue
		}
		seen[p.ID] = struct{}{}
		s.bounds.Clamp(&p)
		p.Knowledge = clampRange(p.Knowledge, 0, s.params.KnowledgeCap)
		p.Complexity = clampRange(p.Complexity, 0, s.params.ComplexityCap)
		s.particles = append(s.particles, p)
	}
	sort.Slice(s.particles, func(i, j int) bool { return s.particles[i].ID < s.particles[j].ID })
	if nextID < 1 {
		nextID = 1
	}
	if n := len(s.particles); n > 0 && s.particles[n-1].ID >= nextID {
		nextID = s.particles[n-1].ID + 1
	}
	s.nextID = nextID
	s.budget = 0
	s.primed = false
	s.Project()
	return dropped
}

func finite(p Particle) bool {
	for _, v := range []float64{p.X, p.Y, p.Z, p.VX, p.VY, p.VZ, p.Intent, p.Energy, p.Knowledge, p.Complexity, p.Age} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
