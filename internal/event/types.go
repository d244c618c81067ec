// Package event carries simulation notifications from the stepping loop to
// collaborators (renderers, audio, persistence) through a bounded queue.
package event

import "time"

// Type identifies an event.
type Type int

const (
	// ParticleCreated signals a particle admitted by the creation budget
	// Trigger: Store.TryCreate success | Payload: particle.Particle
	ParticleCreated Type = iota

	// ParticleEvicted signals FIFO removal at the population cap
	// Trigger: Store.TryCreate at capacity | Payload: particle.Particle
	ParticleEvicted

	// AnomalyRaised signals the single anomaly of a monitoring cycle
	// Trigger: Monitor.Run | Consumer: Hooks.OnAnomaly, audio cue | Payload: monitor.Anomaly
	AnomalyRaised

	// InflationStarted signals an inflation window opening
	// Trigger: Inflation.Check | Consumer: overlay flash, audio cue | Payload: monitor.InflationEvent
	InflationStarted

	// InflationEnded signals a completed inflation transition
	// Trigger: Inflation.Advance | Consumer: Hooks.OnInflation, storage | Payload: monitor.InflationEvent
	InflationEnded

	// StatsUpdated carries the throttled stats projection
	// Trigger: Runner.Frame every stats interval | Consumer: Hooks.OnStats | Payload: universe.Stats
	StatsUpdated

	// SimulationReset signals particles and counters were cleared
	// Trigger: Runner.Reset | Payload: nil
	SimulationReset

	// CanvasResized signals new output dimensions and a reallocated field
	// Trigger: Runner.CanvasReady | Payload: CanvasPayload
	CanvasResized

	// StateSaved signals a successful autosave
	// Trigger: Runner autosave | Payload: SavedPayload
	StateSaved

	// CollaboratorError reports a non-fatal failure outside the core
	// Trigger: autosave, audio, renderer | Consumer: Hooks.OnError | Payload: ErrorPayload
	CollaboratorError

	typeCount
)

var typeNames = [typeCount]string{
	"particle-created",
	"particle-evicted",
	"anomaly-raised",
	"inflation-started",
	"inflation-ended",
	"stats-updated",
	"simulation-reset",
	"canvas-resized",
	"state-saved",
	"collaborator-error",
}

func (t Type) String() string {
	if t >= 0 && t < typeCount {
		return typeNames[t]
	}
	return "unknown"
}

// Event is one queued notification.
type Event struct {
	Type      Type
	Payload   any
	Tick      uint64
	Timestamp time.Time
}

// CanvasPayload carries output dimensions.
type CanvasPayload struct {
	Width  int
	Height int
}

// SavedPayload describes a persisted state blob.
type SavedPayload struct {
	Key   string
	Bytes int
}

// ErrorPayload wraps a collaborator failure.
type ErrorPayload struct {
	Op  string
	Err error
}
