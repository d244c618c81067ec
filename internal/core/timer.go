package core

import "time"

// DefaultMaxSteps bounds catch-up work per frame when none is configured.
const DefaultMaxSteps = 5

// FixedStep runs simulation updates at a steady ticks-per-second rate by
// accumulating frame time and paying it out in whole logical steps.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	maxSteps    int
	last        time.Time
	dropped     int
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	if tps <= 0 {
		tps = 60
	}
	fs := &FixedStep{maxSteps: DefaultMaxSteps}
	fs.SetTPS(tps)
	return fs
}

// NewFixedStepDuration constructs a controller with an explicit step length.
func NewFixedStepDuration(step time.Duration, maxSteps int) *FixedStep {
	fs := &FixedStep{}
	fs.SetStep(step)
	fs.SetMaxSteps(maxSteps)
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// SetStep changes the logical step length directly.
func (f *FixedStep) SetStep(step time.Duration) {
	if step <= 0 {
		step = time.Second / 60
	}
	f.step = step
}

// SetMaxSteps sets the per-frame catch-up cap. Values below one select the default.
func (f *FixedStep) SetMaxSteps(n int) {
	if n < 1 {
		n = DefaultMaxSteps
	}
	f.maxSteps = n
}

// Step returns the logical step length.
func (f *FixedStep) Step() time.Duration { return f.step }

// MaxSteps returns the per-frame catch-up cap.
func (f *FixedStep) MaxSteps() int { return f.maxSteps }

// Pending reports the unspent time in the accumulator.
func (f *FixedStep) Pending() time.Duration { return f.accumulator }

// Alpha reports how far the accumulator is into the next step, in [0, 1).
func (f *FixedStep) Alpha() float64 {
	if f.step <= 0 {
		return 0
	}
	return float64(f.accumulator) / float64(f.step)
}

// Dropped reports how many steps were discarded by the catch-up cap.
func (f *FixedStep) Dropped() int { return f.dropped }

// Advance adds elapsed frame time and returns how many logical steps are due.
// When more than MaxSteps are due the surplus backlog is discarded and only the
// sub-step remainder is carried forward.
func (f *FixedStep) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		f.accumulator += elapsed
	}
	steps := int(f.accumulator / f.step)
	if steps > f.maxSteps {
		f.dropped += steps - f.maxSteps
		steps = f.maxSteps
		f.accumulator %= f.step
		return steps
	}
	f.accumulator -= time.Duration(steps) * f.step
	return steps
}

// Tick measures the time since the previous call and advances by it. The
// first call only records the timestamp.
func (f *FixedStep) Tick(now time.Time) int {
	if f.last.IsZero() {
		f.last = now
		return 0
	}
	delta := now.Sub(f.last)
	f.last = now
	return f.Advance(delta)
}

// Rebase forgets the previous timestamp so the next Tick starts a fresh
// measurement. Used when a stopped loop is restarted.
func (f *FixedStep) Rebase() {
	f.last = time.Time{}
}

// Clear empties the accumulator and the drop counter.
func (f *FixedStep) Clear() {
	f.accumulator = 0
	f.dropped = 0
	f.last = time.Time{}
}
