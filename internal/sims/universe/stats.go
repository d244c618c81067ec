package universe

import (
	"fmt"

	"emergence/internal/field"
	"emergence/internal/monitor"
	"emergence/internal/particle"
)

// ChargeCounts tallies particles by charge.
type ChargeCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (c *ChargeCounts) add(ch particle.Charge) {
	switch ch {
	case particle.Positive:
		c.Positive++
	case particle.Negative:
		c.Negative++
	default:
		c.Neutral++
	}
}

// KindCounts tallies particles by derived kind.
type KindCounts struct {
	Standard   int `json:"standard"`
	HighEnergy int `json:"highEnergy"`
	Quantum    int `json:"quantum"`
	Composite  int `json:"composite"`
	Adaptive   int `json:"adaptive"`
}

func (k *KindCounts) add(kind particle.Kind) {
	switch kind {
	case particle.HighEnergy:
		k.HighEnergy++
	case particle.Quantum:
		k.Quantum++
	case particle.Composite:
		k.Composite++
	case particle.Adaptive:
		k.Adaptive++
	default:
		k.Standard++
	}
}

// Stats is a read-only projection of the simulation, rebuilt on every call.
type Stats struct {
	Tick           uint64  `json:"tick"`
	FrameCount     uint64  `json:"frameCount"`
	SimulationTime float64 `json:"simulationTime"`

	Particles     int          `json:"particles"`
	Charges       ChargeCounts `json:"charges"`
	Kinds         KindCounts   `json:"kinds"`
	PostInflation int          `json:"postInflation"`
	Created       uint64       `json:"created"`
	Evicted       uint64       `json:"evicted"`
	Expired       uint64       `json:"expired"`

	Interactions     uint64 `json:"interactions"`
	LastInteractions int    `json:"lastInteractions"`
	Candidates       int    `json:"candidates"`

	AverageKnowledge float64 `json:"averageKnowledge"`
	AverageEnergy    float64 `json:"averageEnergy"`
	ComplexityIndex  float64 `json:"complexityIndex"`
	Entropy          float64 `json:"entropy"`

	Macro monitor.MacroState `json:"macro"`
	Field field.Analysis     `json:"field"`

	InflationActive bool `json:"inflationActive"`
	Anomalies       int  `json:"anomalies"`
	Inflations      int  `json:"inflations"`

	RenderMode    RenderMode `json:"renderMode"`
	Running       bool       `json:"running"`
	DroppedSteps  int        `json:"droppedSteps"`
	DroppedEvents uint64     `json:"droppedEvents"`
}

// Lines formats the stats as short text rows for HUDs and terminals.
func (s Stats) Lines() []string {
	state := "paused"
	if s.Running {
		state = "running"
	}
	lines := []string{
		fmt.Sprintf("tick %d  t=%.1fs  %s", s.Tick, s.SimulationTime, state),
		fmt.Sprintf("particles %d  (+%d -%d n%d)", s.Particles, s.Charges.Positive, s.Charges.Negative, s.Charges.Neutral),
		fmt.Sprintf("kinds S%d H%d Q%d C%d A%d", s.Kinds.Standard, s.Kinds.HighEnergy, s.Kinds.Quantum, s.Kinds.Composite, s.Kinds.Adaptive),
		fmt.Sprintf("interactions %d (%d/step)", s.Interactions, s.LastInteractions),
		fmt.Sprintf("knowledge %.2f  energy %.2f", s.AverageKnowledge, s.AverageEnergy),
		fmt.Sprintf("complexity %.2f  entropy %.3f", s.ComplexityIndex, s.Entropy),
		fmt.Sprintf("clusters %d  order %.2f", s.Macro.ClusterCount, s.Macro.OrderParameter),
		fmt.Sprintf("field mean %+.3f  grad %.3f", s.Field.Mean, s.Field.GradientStrength),
		fmt.Sprintf("anomalies %d  inflations %d", s.Anomalies, s.Inflations),
		fmt.Sprintf("mode %s", s.RenderMode),
	}
	if s.InflationActive {
		lines = append(lines, fmt.Sprintf("INFLATION  post-inflation %d", s.PostInflation))
	}
	if s.DroppedSteps > 0 || s.DroppedEvents > 0 {
		lines = append(lines, fmt.Sprintf("dropped steps %d events %d", s.DroppedSteps, s.DroppedEvents))
	}
	return lines
}
