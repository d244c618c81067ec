package monitor

import (
	"fmt"
	"math"

	"emergence/internal/particle"
)

// AnomalyType names the macro-state delta that raised an anomaly.
type AnomalyType string

const (
	AnomalyEntropyShift       AnomalyType = "entropy-shift"
	AnomalyClusterFormation   AnomalyType = "cluster-formation"
	AnomalyClusterDissolution AnomalyType = "cluster-dissolution"
	AnomalyAdaptiveEmergence  AnomalyType = "adaptive-emergence"
	AnomalyCompositeEmergence AnomalyType = "composite-emergence"
	AnomalyOrderTransition    AnomalyType = "order-transition"
	AnomalyInformationSurge   AnomalyType = "information-surge"
	AnomalyComplexityJump     AnomalyType = "complexity-jump"
)

// DefaultHistoryLimit bounds the retained anomaly history.
const DefaultHistoryLimit = 256

// maxAffected caps the particle IDs attached to one anomaly.
const maxAffected = 64

// Anomaly is immutable once created.
type Anomaly struct {
	Type              AnomalyType `json:"type"`
	Tick              uint64      `json:"timestamp"`
	Description       string      `json:"description"`
	AffectedParticles []uint64    `json:"affectedParticles"`
	Severity          float64     `json:"severity"`
	Delta             float64     `json:"delta"`
	Threshold         float64     `json:"threshold"`
}

// Thresholds are the per-delta anomaly limits. A non-positive threshold
// disables that delta.
type Thresholds struct {
	Entropy     float64 `env:"ENTROPY"`
	Clusters    float64 `env:"CLUSTERS"`
	Adaptive    float64 `env:"ADAPTIVE"`
	Composite   float64 `env:"COMPOSITE"`
	Order       float64 `env:"ORDER"`
	Information float64 `env:"INFORMATION"`
	Complexity  float64 `env:"COMPLEXITY"`
}

// DefaultThresholds returns the standard anomaly limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Entropy:     0.15,
		Clusters:    3,
		Adaptive:    5,
		Composite:   5,
		Order:       0.3,
		Information: 0.1,
		Complexity:  0.1,
	}
}

// Phase is the monitoring cycle state.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseSampling
	PhaseComparing
	PhaseAnomalyRaised
)

func (p Phase) String() string {
	switch p {
	case PhaseSampling:
		return "sampling"
	case PhaseComparing:
		return "comparing"
	case PhaseAnomalyRaised:
		return "anomaly"
	}
	return "idle"
}

// Monitor compares successive macro states and keeps the anomaly history.
type Monitor struct {
	Thresholds   Thresholds
	HistoryLimit int

	sampler  *Sampler
	phase    Phase
	prev     MacroState
	latest   MacroState
	baseline bool
	history  []Anomaly
	total    int
}

// New creates a monitor using sampler for the macro-state vector.
func New(sampler *Sampler, thresholds Thresholds) *Monitor {
	return &Monitor{
		Thresholds:   thresholds,
		HistoryLimit: DefaultHistoryLimit,
		sampler:      sampler,
	}
}

// Sampler exposes the macro-state sampler.
func (m *Monitor) Sampler() *Sampler { return m.sampler }

// Phase reports where the last cycle ended.
func (m *Monitor) Phase() Phase { return m.phase }

// Latest returns the most recent macro state.
func (m *Monitor) Latest() MacroState { return m.latest }

// History returns a copy of the retained anomalies, oldest first.
func (m *Monitor) History() []Anomaly { return append([]Anomaly(nil), m.history...) }

// Total counts every anomaly raised, including ones dropped from history.
func (m *Monitor) Total() int { return m.total }

// Reset forgets the baseline and the history.
func (m *Monitor) Reset() {
	m.phase = PhaseIdle
	m.prev = MacroState{}
	m.latest = MacroState{}
	m.baseline = false
	m.history = nil
	m.total = 0
}

// Restore reinstates a history, for example after loading saved state.
func (m *Monitor) Restore(history []Anomaly, total int) {
	m.history = append([]Anomaly(nil), history...)
	m.trim()
	if total < len(m.history) {
		total = len(m.history)
	}
	m.total = total
	m.baseline = false
}

// Run executes one monitoring cycle. The first cycle only records a
// baseline. At most one anomaly is returned.
func (m *Monitor) Run(tick uint64, ps []particle.Particle) (Anomaly, bool) {
	m.phase = PhaseSampling
	cur := m.sampler.Sample(ps)
	m.latest = cur
	if !m.baseline {
		m.prev = cur
		m.baseline = true
		m.phase = PhaseIdle
		return Anomaly{}, false
	}

	m.phase = PhaseComparing
	a, ok := m.Compare(m.prev, cur, tick)
	m.prev = cur
	if !ok {
		m.phase = PhaseIdle
		return Anomaly{}, false
	}
	a.AffectedParticles = m.affected(a.Type, ps)
	m.record(a)
	m.phase = PhaseAnomalyRaised
	return a, true
}

func (m *Monitor) record(a Anomaly) {
	m.history = append(m.history, a)
	m.total++
	m.trim()
}

func (m *Monitor) trim() {
	limit := m.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if over := len(m.history) - limit; over > 0 {
		m.history = append([]Anomaly(nil), m.history[over:]...)
	}
}

type candidate struct {
	kind      AnomalyType
	name      string
	delta     float64
	threshold float64
}

// Compare diffs two macro states. When several deltas exceed their
// thresholds the one with the largest delta/threshold ratio wins.
func (m *Monitor) Compare(prev, cur MacroState, tick uint64) (Anomaly, bool) {
	th := m.Thresholds
	clusterType := AnomalyClusterFormation
	if cur.ClusterCount < prev.ClusterCount {
		clusterType = AnomalyClusterDissolution
	}
	candidates := [...]candidate{
		{AnomalyEntropyShift, "entropy", cur.Entropy - prev.Entropy, th.Entropy},
		{clusterType, "cluster count", float64(cur.ClusterCount - prev.ClusterCount), th.Clusters},
		{AnomalyAdaptiveEmergence, "adaptive population", float64(cur.AdaptiveCount - prev.AdaptiveCount), th.Adaptive},
		{AnomalyCompositeEmergence, "composite population", float64(cur.CompositeCount - prev.CompositeCount), th.Composite},
		{AnomalyOrderTransition, "order parameter", cur.OrderParameter - prev.OrderParameter, th.Order},
		{AnomalyInformationSurge, "information density", cur.InformationDensity - prev.InformationDensity, th.Information},
		{AnomalyComplexityJump, "complexity estimate", cur.ComplexityEstimate - prev.ComplexityEstimate, th.Complexity},
	}

	best := -1
	bestRatio := 0.0
	for i, c := range candidates {
		if c.threshold <= 0 {
			continue
		}
		mag := math.Abs(c.delta)
		if mag <= c.threshold {
			continue
		}
		if ratio := mag / c.threshold; ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	if best < 0 {
		return Anomaly{}, false
	}
	c := candidates[best]
	return Anomaly{
		Type:        c.kind,
		Tick:        tick,
		Description: fmt.Sprintf("%s changed by %+.3f (threshold %.3f)", c.name, c.delta, c.threshold),
		Severity:    clamp01(math.Abs(c.delta) / (4 * c.threshold)),
		Delta:       c.delta,
		Threshold:   c.threshold,
	}, true
}

// affected lists the particles an anomaly concerns, capped at maxAffected.
func (m *Monitor) affected(kind AnomalyType, ps []particle.Particle) []uint64 {
	var ids []uint64
	switch kind {
	case AnomalyClusterFormation, AnomalyClusterDissolution:
		ids = m.sampler.Members(ps)
	case AnomalyAdaptiveEmergence, AnomalyCompositeEmergence:
		want := particle.Adaptive
		if kind == AnomalyCompositeEmergence {
			want = particle.Composite
		}
		for _, p := range ps {
			if !p.Expired && p.Kind == want {
				ids = append(ids, p.ID)
			}
		}
	default:
		for _, p := range ps {
			if !p.Expired {
				ids = append(ids, p.ID)
			}
		}
	}
	if len(ids) > maxAffected {
		ids = ids[len(ids)-maxAffected:]
	}
	return ids
}
