package ui

import (
	"fmt"

	"emergence/internal/monitor"
)

// FlashFrames is how long an anomaly notice stays on screen at 60 FPS.
const FlashFrames = 120

// Flash tracks the fading on-screen notice for the latest anomaly.
type Flash struct {
	Text     string
	Severity float64
	left     int
	total    int
}

// Trigger replaces the current notice.
func (f *Flash) Trigger(a monitor.Anomaly, frames int) {
	if frames <= 0 {
		frames = FlashFrames
	}
	f.Text = fmt.Sprintf("%s @%d: %s", a.Type, a.Tick, a.Description)
	f.Severity = a.Severity
	f.left = frames
	f.total = frames
}

// Tick advances the fade by one frame.
func (f *Flash) Tick() {
	if f.left > 0 {
		f.left--
	}
}

// Active reports whether the notice is still visible.
func (f *Flash) Active() bool { return f.left > 0 }

// Alpha is the notice opacity in [0, 1], scaled by severity with a floor so
// mild anomalies stay readable.
func (f *Flash) Alpha() float64 {
	if f.left <= 0 || f.total <= 0 {
		return 0
	}
	fade := float64(f.left) / float64(f.total)
	weight := 0.4 + 0.6*clampUnit(f.Severity)
	return fade * weight
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
