package universe

import (
	"encoding/json"
	"errors"
	"fmt"

	"emergence/internal/field"
	"emergence/internal/monitor"
	"emergence/internal/particle"
)

// StateVersion is written into every serialized blob.
const StateVersion = 1

// ErrUnsupportedVersion is returned for blobs written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported state version")

// State is the persisted form of a running universe.
type State struct {
	Version           int                      `json:"version"`
	Seed              int64                    `json:"seed"`
	Tick              uint64                   `json:"tick"`
	NextID            uint64                   `json:"nextId"`
	Particles         []particle.Particle      `json:"particles"`
	IntentField       field.State              `json:"intentField"`
	InteractionsCount uint64                   `json:"interactionsCount"`
	FrameCount        uint64                   `json:"frameCount"`
	SimulationTime    float64                  `json:"simulationTime"`
	AnomalyTotal      int                      `json:"anomalyTotal,omitempty"`
	Anomalies         []monitor.Anomaly        `json:"anomalies,omitempty"`
	InflationTotal    int                      `json:"inflationTotal,omitempty"`
	Inflations        []monitor.InflationEvent `json:"inflations,omitempty"`
}

// Serialize encodes a state blob.
func Serialize(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize state: %w", err)
	}
	return data, nil
}

// Deserialize decodes a state blob.
func Deserialize(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("deserialize state: %w", err)
	}
	if s.Version > StateVersion {
		return State{}, fmt.Errorf("deserialize state: %w: %d", ErrUnsupportedVersion, s.Version)
	}
	return s, nil
}

// Snapshot captures the current state. The result shares no memory with the
// universe.
func (u *Universe) Snapshot() State {
	return State{
		Version:           StateVersion,
		Seed:              u.cfg.Seed,
		Tick:              u.tick,
		NextID:            u.store.NextID(),
		Particles:         u.store.Snapshot(),
		IntentField:       u.field.State(),
		InteractionsCount: u.interactions,
		FrameCount:        u.frames,
		SimulationTime:    u.simTime,
		AnomalyTotal:      u.monitor.Total(),
		Anomalies:         u.monitor.History(),
		InflationTotal:    u.inflation.Count(),
		Inflations:        u.inflation.History(),
	}
}

// Restore loads s. A field that is invalid or does not match the configured
// shape is replaced by a fresh one; particles are clamped into bounds and
// non-finite records dropped. Counters are restored exactly. Restore only
// fails for blobs from a newer format.
func (u *Universe) Restore(s State) error {
	if s.Version > StateVersion {
		return fmt.Errorf("restore state: %w: %d", ErrUnsupportedVersion, s.Version)
	}

	depth, rows, cols := field.Shape(field.Dimensions{Width: u.cfg.Width, Height: u.cfg.Height, Depth: u.cfg.Depth}, u.cfg.Resolution)
	f, err := field.FromState(s.IntentField)
	switch {
	case err != nil:
		u.logger.Printf("restore: %v; reinitializing field", err)
		f = u.freshField()
	case f.Depth != depth || f.Rows != rows || f.Cols != cols || f.Resolution != u.cfg.Resolution:
		u.logger.Printf("restore: field %dx%dx%d does not match %dx%dx%d; reinitializing field",
			f.Depth, f.Rows, f.Cols, depth, rows, cols)
		f = u.freshField()
	}
	u.field = f
	u.allocDisplay()

	if dropped := u.store.Restore(s.Particles, s.NextID); dropped > 0 {
		u.logger.Printf("restore: dropped %d invalid particles", dropped)
	}
	if over := u.store.Trim(u.cfg.Params.MaxParticles); len(over) > 0 {
		u.logger.Printf("restore: population exceeds max %d; evicted %d oldest particles",
			u.cfg.Params.MaxParticles, len(over))
	}
	u.monitor.Reset()
	u.monitor.Restore(s.Anomalies, s.AnomalyTotal)
	u.inflation.Restore(s.Inflations, s.InflationTotal)
	u.store.SetPostInflation(false)

	u.tick = s.Tick
	u.frames = s.FrameCount
	u.simTime = s.SimulationTime
	u.interactions = s.InteractionsCount
	u.lastResult.Fired = 0
	u.lastResult.Candidates = 0
	u.queue.Drain()
	return nil
}
