package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"emergence/internal/event"
	"emergence/internal/monitor"
)

func drain(s beep.Streamer) (count int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		count += n
		if !ok {
			return count, peak
		}
	}
}

func TestOscillatorLength(t *testing.T) {
	osc := NewOscillator(440, 100*time.Millisecond, WaveSine, SampleRate)
	n, peak := drain(osc)
	if n != SampleRate.N(100*time.Millisecond) {
		t.Fatalf("samples = %d, want %d", n, SampleRate.N(100*time.Millisecond))
	}
	if peak > 1 {
		t.Fatalf("peak = %f exceeds unit amplitude", peak)
	}
}

func TestEnvelopeStartsSilent(t *testing.T) {
	osc := NewOscillator(0, 50*time.Millisecond, WaveSquare, SampleRate)
	env := NewEnvelope(osc, 50*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, SampleRate)
	buf := make([][2]float64, 4)
	if n, _ := env.Stream(buf); n != 4 {
		t.Fatalf("streamed %d", n)
	}
	if buf[0][0] != 0 {
		t.Fatalf("first sample = %f, want 0", buf[0][0])
	}
	if math.Abs(buf[3][0]) >= 1 {
		t.Fatalf("attack not applied: %f", buf[3][0])
	}
}

func TestAnomalyPitch(t *testing.T) {
	if AnomalyPitch(0) != 440 || AnomalyPitch(1) != 880 || AnomalyPitch(5) != 880 {
		t.Fatal("pitch must span one octave and clamp severity")
	}
}

type countingSink struct{ streams []beep.Streamer }

func (s *countingSink) Play(st beep.Streamer) { s.streams = append(s.streams, st) }

func TestCuesHandleEvents(t *testing.T) {
	sink := &countingSink{}
	cues := NewCues[struct{}](sink, 0.5)
	cues.HandleEvent(struct{}{}, event.Event{Type: event.AnomalyRaised, Payload: monitor.Anomaly{Severity: 0.5}})
	cues.HandleEvent(struct{}{}, event.Event{Type: event.InflationStarted, Payload: monitor.InflationEvent{}})
	cues.HandleEvent(struct{}{}, event.Event{Type: event.AnomalyRaised, Payload: "not an anomaly"})
	cues.HandleEvent(struct{}{}, event.Event{Type: event.StatsUpdated})

	if cues.Played() != 2 || len(sink.streams) != 2 {
		t.Fatalf("played %d cues, want 2", cues.Played())
	}
	n, _ := drain(sink.streams[1])
	if n != SampleRate.N(InflationCueDuration) {
		t.Fatalf("inflation cue length = %d", n)
	}
}

func TestPlayerIgnoresPlayBeforeInit(t *testing.T) {
	p := NewPlayer()
	p.Play(AnomalyCue(1, 1))
	p.Cleanup()
}
