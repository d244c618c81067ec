package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep"

	"emergence/internal/event"
	"emergence/internal/monitor"
)

// Sink accepts cue streamers. *Player implements it.
type Sink interface {
	Play(beep.Streamer)
}

// Cues is an event handler that plays a chime per anomaly and a swell when
// an inflation starts. T is the router context type.
type Cues[T any] struct {
	sink   Sink
	volume float64
	played atomic.Uint64
}

// NewCues returns a handler feeding sink at the given linear volume.
func NewCues[T any](sink Sink, volume float64) *Cues[T] {
	return &Cues[T]{sink: sink, volume: volume}
}

// EventTypes implements event.Handler.
func (c *Cues[T]) EventTypes() []event.Type {
	return []event.Type{event.AnomalyRaised, event.InflationStarted}
}

// HandleEvent implements event.Handler.
func (c *Cues[T]) HandleEvent(_ T, ev event.Event) {
	switch ev.Type {
	case event.AnomalyRaised:
		a, ok := ev.Payload.(monitor.Anomaly)
		if !ok {
			return
		}
		c.sink.Play(AnomalyCue(a.Severity, c.volume))
	case event.InflationStarted:
		c.sink.Play(InflationCue(c.volume))
	default:
		return
	}
	c.played.Add(1)
}

// Played reports how many cues were issued.
func (c *Cues[T]) Played() uint64 { return c.played.Load() }
