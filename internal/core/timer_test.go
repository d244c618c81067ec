package core

import (
	"testing"
	"time"
)

func TestFixedStepCountMatchesAccumulatedTime(t *testing.T) {
	deltas := []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 48 * time.Millisecond, 16 * time.Millisecond}
	for _, step := range []time.Duration{16 * time.Millisecond, time.Second / 60, 10 * time.Millisecond} {
		fs := NewFixedStepDuration(step, 100)
		total := 0
		var sum time.Duration
		for _, d := range deltas {
			total += fs.Advance(d)
			sum += d
		}
		want := int(sum / step)
		if total != want {
			t.Fatalf("step %v: ran %d steps, expected floor(%v/%v)=%d", step, total, sum, step, want)
		}
	}
}

func TestFixedStepIndependentOfChunking(t *testing.T) {
	step := 16 * time.Millisecond
	chunkings := [][]time.Duration{
		{16 * time.Millisecond, 16 * time.Millisecond, 48 * time.Millisecond, 16 * time.Millisecond},
		{96 * time.Millisecond},
		{8 * time.Millisecond, 8 * time.Millisecond, 40 * time.Millisecond, 40 * time.Millisecond},
		{1 * time.Millisecond, 95 * time.Millisecond},
	}
	for i, deltas := range chunkings {
		fs := NewFixedStepDuration(step, 100)
		total := 0
		for _, d := range deltas {
			total += fs.Advance(d)
		}
		if total != 6 {
			t.Fatalf("chunking %d ran %d steps, expected 6", i, total)
		}
		if fs.Pending() != 0 {
			t.Fatalf("chunking %d left %v pending, expected 0", i, fs.Pending())
		}
	}
}

func TestFixedStepCapsCatchUp(t *testing.T) {
	fs := NewFixedStepDuration(10*time.Millisecond, 3)
	if got := fs.Advance(105 * time.Millisecond); got != 3 {
		t.Fatalf("expected cap of 3 steps, got %d", got)
	}
	if fs.Dropped() != 7 {
		t.Fatalf("expected 7 dropped steps, got %d", fs.Dropped())
	}
	if fs.Pending() != 5*time.Millisecond {
		t.Fatalf("expected sub-step remainder to carry, got %v", fs.Pending())
	}
	if got := fs.Advance(5 * time.Millisecond); got != 1 {
		t.Fatalf("expected remainder to complete one step, got %d", got)
	}
}

func TestFixedStepTickUsesClock(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	fs := NewFixedStepDuration(16*time.Millisecond, 10)
	if got := fs.Tick(clock.Now()); got != 0 {
		t.Fatalf("first tick should only record the timestamp, got %d steps", got)
	}
	total := 0
	for _, d := range []time.Duration{16, 16, 48, 16} {
		total += fs.Tick(clock.Advance(d * time.Millisecond))
	}
	if total != 6 {
		t.Fatalf("expected 6 steps, got %d", total)
	}
	fs.Rebase()
	if got := fs.Tick(clock.Advance(time.Hour)); got != 0 {
		t.Fatalf("rebased tick should not replay the pause, got %d", got)
	}
}

func TestNewFixedStepDefaults(t *testing.T) {
	fs := NewFixedStep(0)
	if fs.Step() != time.Second/60 {
		t.Fatalf("expected 60 TPS default, got %v", fs.Step())
	}
	if fs.MaxSteps() != DefaultMaxSteps {
		t.Fatalf("expected default max steps, got %d", fs.MaxSteps())
	}
}
