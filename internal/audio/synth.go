// Package audio synthesises short cues for simulation events.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the output rate of every cue.
const SampleRate = beep.SampleRate(44100)

// WaveType selects an oscillator shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing duration worth of samples.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, duration: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		}
		samples[i][0] = val
		samples[i][1] = val
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope applies a linear attack and release to s.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{streamer: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(duration)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if start := e.total - e.release; e.position >= start && e.release > 0 {
			vol = math.Max(float64(e.total-e.position)/float64(e.release), 0)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; zero or negative volume silences it.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Cue lengths.
const (
	AnomalyCueDuration   = 180 * time.Millisecond
	InflationCueDuration = 700 * time.Millisecond
)

// AnomalyPitch maps severity in [0, 1] onto 440-880 Hz.
func AnomalyPitch(severity float64) float64 {
	severity = math.Min(math.Max(severity, 0), 1)
	return 440 * math.Pow(2, severity)
}

// AnomalyCue is a short two-partial chime whose pitch rises with severity.
func AnomalyCue(severity, volume float64) beep.Streamer {
	f := AnomalyPitch(severity)
	fund := NewEnvelope(NewOscillator(f, AnomalyCueDuration, WaveSine, SampleRate), AnomalyCueDuration, 5*time.Millisecond, 120*time.Millisecond, SampleRate)
	over := NewEnvelope(NewOscillator(2*f, AnomalyCueDuration, WaveSine, SampleRate), AnomalyCueDuration, 5*time.Millisecond, 60*time.Millisecond, SampleRate)
	return newVolume(beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3)), volume)
}

// InflationCue is a low saw swell marking the start of an inflation.
func InflationCue(volume float64) beep.Streamer {
	saw := NewOscillator(110, InflationCueDuration, WaveSaw, SampleRate)
	shaped := NewEnvelope(saw, InflationCueDuration, 300*time.Millisecond, 300*time.Millisecond, SampleRate)
	return newVolume(shaped, volume*0.6)
}
