package universe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"emergence/internal/core"
	"emergence/internal/event"
	"emergence/internal/monitor"
)

func newTestRunner(hooks Hooks) *Runner {
	cfg := smallConfig()
	cfg.MaxStepsPerFrame = 10
	return NewRunner(New(cfg, quietLogger()), hooks)
}

func TestRunnerFrameSplitsMatchSingleDelta(t *testing.T) {
	base := time.Unix(1000, 0)
	split := newTestRunner(Hooks{})
	whole := newTestRunner(Hooks{})

	clock := base
	split.Frame(clock)
	for _, ms := range []int{16, 16, 48, 16} {
		clock = clock.Add(time.Duration(ms) * time.Millisecond)
		split.Frame(clock)
	}
	whole.Frame(base)
	whole.Frame(base.Add(96 * time.Millisecond))

	a, b := split.Stats(), whole.Stats()
	if a.Tick != 5 || b.Tick != 5 {
		t.Fatalf("ticks = %d and %d, want 5", a.Tick, b.Tick)
	}
	pa, pb := split.Particles(), whole.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("populations differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func TestRunnerCatchUpCapDropsBacklog(t *testing.T) {
	r := newTestRunner(Hooks{})
	base := time.Unix(0, 0)
	r.Frame(base)
	info := r.Frame(base.Add(5 * time.Second))
	if info.Steps != 10 {
		t.Fatalf("steps = %d, want the cap of 10", info.Steps)
	}
	if info.Dropped == 0 || r.Stats().DroppedSteps != info.Dropped {
		t.Fatalf("dropped = %d", info.Dropped)
	}
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	cfg := smallConfig()
	cfg.FrameInterval = time.Millisecond
	r := NewRunner(New(cfg, quietLogger()), Hooks{})

	ctx := context.Background()
	if !r.Start(ctx) {
		t.Fatal("first start must succeed")
	}
	if r.Start(ctx) {
		t.Fatal("second start must be a no-op")
	}
	time.Sleep(30 * time.Millisecond)
	if !r.Stop() {
		t.Fatal("first stop must succeed")
	}
	if r.Stop() {
		t.Fatal("second stop must be a no-op")
	}
	if r.Running() {
		t.Fatal("runner still reports running")
	}
	before := r.Stats()
	if before.FrameCount == 0 {
		t.Fatal("loop never rendered a frame")
	}
	time.Sleep(10 * time.Millisecond)
	after := r.Stats()
	if after.Tick != before.Tick || after.FrameCount != before.FrameCount {
		t.Fatal("state advanced after stop")
	}
	if !r.Start(ctx) {
		t.Fatal("restart after stop must succeed")
	}
	r.Close()
	if r.Start(ctx) {
		t.Fatal("start after close must be a no-op")
	}
}

func TestRunnerStopsWithContext(t *testing.T) {
	cfg := smallConfig()
	cfg.FrameInterval = time.Millisecond
	r := NewRunner(New(cfg, quietLogger()), Hooks{})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()
	deadline := time.Now().Add(time.Second)
	for r.Running() {
		if time.Now().After(deadline) {
			t.Fatal("loop ignored context cancellation")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunnerHooks(t *testing.T) {
	var renders, stats int
	r := newTestRunner(Hooks{
		OnRender: func(FrameInfo) { renders++ },
		OnStats:  func(Stats) { stats++ },
	})
	clock := core.NewManualClock(time.Unix(0, 0))
	for i := 0; i < 10; i++ {
		r.Frame(clock.Now())
		clock.Advance(100 * time.Millisecond)
	}
	if renders != 10 {
		t.Fatalf("render hook called %d times, want 10", renders)
	}
	// 500ms throttle over 900ms of frames.
	if stats != 2 {
		t.Fatalf("stats hook called %d times, want 2", stats)
	}
}

func TestRunnerInflationHook(t *testing.T) {
	cfg := smallConfig()
	cfg.Params.MonitorInterval = 5
	cfg.Params.Inflation.EnergyThreshold = 0.5
	cfg.Params.Inflation.KnowledgeThreshold = 0
	cfg.Params.Inflation.Duration = 10
	cfg.Params.Inflation.Cooldown = 100000
	u := New(cfg, quietLogger())
	u.Field().Fill(0.9)

	var got []string
	r := NewRunner(u, Hooks{})
	r.SetHooks(Hooks{OnInflation: func(ev monitor.InflationEvent) { got = append(got, ev.Trigger) }})
	var started int
	r.Subscribe(event.Func[*Universe]{
		Types: []event.Type{event.InflationStarted},
		Fn:    func(*Universe, event.Event) { started++ },
	})
	r.Steps(40)
	if started != 1 {
		t.Fatalf("subscriber saw %d starts, want 1", started)
	}
	if len(got) != 1 || got[0] != "energy" {
		t.Fatalf("inflation hook = %v", got)
	}
}

func TestRunnerResetKeepsFieldAndPublishes(t *testing.T) {
	r := newTestRunner(Hooks{})
	var resets int
	r.Subscribe(event.Func[*Universe]{
		Types: []event.Type{event.SimulationReset},
		Fn:    func(*Universe, event.Event) { resets++ },
	})
	r.Steps(20)
	before := r.FieldLayer(0)
	r.Reset()
	after := r.FieldLayer(0)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("cell %d changed across reset", i)
		}
	}
	if resets != 1 {
		t.Fatalf("reset published %d times", resets)
	}
	if s := r.Stats(); s.Tick != 0 || s.Particles != 0 {
		t.Fatalf("reset left %+v", s)
	}
}

func TestRunnerCanvasReady(t *testing.T) {
	r := newTestRunner(Hooks{})
	if r.CanvasReady(120, 90) {
		t.Fatal("unchanged dimensions must be a no-op")
	}
	if r.CanvasReady(0, 10) {
		t.Fatal("empty canvas must be ignored")
	}
	if !r.CanvasReady(200, 100) {
		t.Fatal("resize must apply")
	}
	if sz := r.Size(); sz.W != 20 || sz.H != 10 {
		t.Fatalf("display size = %+v", sz)
	}
	if got := len(r.Cells()); got != 200 {
		t.Fatalf("cells = %d", got)
	}
	for _, p := range r.Particles() {
		if p.X > 200 || p.Y > 100 {
			t.Fatalf("particle outside the new bounds: %+v", p)
		}
	}
}

type memorySaver struct {
	mu    sync.Mutex
	blobs map[string][]byte
	err   error
}

func (m *memorySaver) SaveState(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.blobs == nil {
		m.blobs = map[string][]byte{}
	}
	m.blobs[key] = blob
	return nil
}

func TestRunnerAutosave(t *testing.T) {
	saver := &memorySaver{}
	r := newTestRunner(Hooks{})
	r.SetAutosave(saver, "auto", time.Second)
	base := time.Unix(0, 0)
	r.Frame(base)
	r.Frame(base.Add(500 * time.Millisecond))
	r.Frame(base.Add(2 * time.Second))
	r.Close()

	blob, ok := saver.blobs["auto"]
	if !ok {
		t.Fatal("autosave never wrote")
	}
	s, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("autosave blob: %v", err)
	}
	if s.Tick == 0 {
		t.Fatal("autosave captured an empty universe")
	}
}

func TestRunnerAutosaveFailureReported(t *testing.T) {
	saver := &memorySaver{err: errors.New("disk full")}
	var reported []error
	r := newTestRunner(Hooks{OnError: func(err error) { reported = append(reported, err) }})
	r.SetAutosave(saver, "auto", time.Second)
	base := time.Unix(0, 0)
	r.Frame(base)
	r.Frame(base.Add(2 * time.Second))
	r.saveWG.Wait()
	r.Frame(base.Add(2100 * time.Millisecond))

	if len(reported) != 1 || !errors.Is(reported[0], saver.err) {
		t.Fatalf("reported = %v", reported)
	}
	if r.Stats().Tick == 0 {
		t.Fatal("a failing saver must not stop the simulation")
	}
}

func TestRunnerSaveNowRoundTrip(t *testing.T) {
	saver := &memorySaver{}
	r := newTestRunner(Hooks{})
	r.Steps(30)
	if err := r.SaveNow(context.Background(), saver, "manual"); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := Deserialize(saver.blobs["manual"])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	other := newTestRunner(Hooks{})
	if err := other.Restore(s); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if other.Stats().Tick != 30 || len(other.Particles()) != len(r.Particles()) {
		t.Fatalf("restored %+v", other.Stats())
	}
}

func TestRunnerCycleRenderMode(t *testing.T) {
	r := newTestRunner(Hooks{})
	seen := map[RenderMode]bool{}
	for range RenderModes {
		seen[r.CycleRenderMode()] = true
	}
	if len(seen) != len(RenderModes) {
		t.Fatalf("cycle visited %v", seen)
	}
	v := r.View()
	if v.Mode != RenderParticles || len(v.Cells) != v.Size.W*v.Size.H {
		t.Fatalf("view = mode %s cells %d", v.Mode, len(v.Cells))
	}
}

var _ core.Sim = (*Runner)(nil)

func TestRunnerGradientAt(t *testing.T) {
	r := newTestRunner(Hooks{})
	r.mu.Lock()
	f := r.u.Field()
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			f.Set(x, y, 0, float64(x)/float64(f.Cols))
		}
	}
	r.mu.Unlock()
	gx, gy := r.GradientAt(5.5, 4.5)
	if gx <= 0 || gy != 0 {
		t.Fatalf("gradient = (%f, %f), want positive x only", gx, gy)
	}
}

func TestFrameDeliversEveryAnomaly(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxStepsPerFrame = 30
	cfg.Params.IntentFluctuationRate = 0
	cfg.Params.ParticleCreationRate = 1e5
	cfg.Params.MonitorInterval = 1
	cfg.Params.Thresholds = monitor.Thresholds{Entropy: 1e-9, Order: 1e-9, Information: 1e-9}
	delivered := 0
	r := NewRunner(New(cfg, quietLogger()), Hooks{
		OnAnomaly: func(monitor.Anomaly) { delivered++ },
	})
	r.u.Field().Fill(0.95)

	base := time.Unix(1000, 0)
	r.Frame(base)
	info := r.Frame(base.Add(500 * time.Millisecond))
	if info.Steps < 20 {
		t.Fatalf("steps = %d, want a full catch-up frame", info.Steps)
	}
	total := r.Stats().Anomalies
	if total == 0 {
		t.Fatal("expected anomalies with near-zero thresholds")
	}
	if delivered != total {
		t.Fatalf("delivered %d anomalies, monitor raised %d", delivered, total)
	}
}
