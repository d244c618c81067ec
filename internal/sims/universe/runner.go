package universe

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"emergence/internal/core"
	"emergence/internal/event"
	"emergence/internal/monitor"
	"emergence/internal/particle"
)

// Hooks are invoked outside the runner lock with copies of the data. Any of
// them may be nil.
type Hooks struct {
	OnStats     func(Stats)
	OnAnomaly   func(monitor.Anomaly)
	OnInflation func(monitor.InflationEvent)
	OnRender    func(FrameInfo)
	OnError     func(error)
}

// FrameInfo describes one render callback.
type FrameInfo struct {
	Steps   int
	Alpha   float64
	Tick    uint64
	Dropped int
}

// StateSaver persists serialized state blobs.
type StateSaver interface {
	SaveState(ctx context.Context, key string, blob []byte) error
}

// View is a copy of what a renderer needs for one frame.
type View struct {
	Cells     []uint8
	Size      core.Size
	Palette   []color.RGBA
	Particles []particle.Particle
	Mode      RenderMode
	Bounds    particle.Bounds
	Inflating bool
}

// Runner drives a Universe with a fixed-step scheduler. Every mutation goes
// through its mutex so stepping, rendering reads and control calls share one
// execution context.
type Runner struct {
	mu     sync.Mutex
	u      *Universe
	clock  core.Clock
	timer  *core.FixedStep
	router *event.Router[*Universe]
	hooks  Hooks

	statsInterval time.Duration
	frameInterval time.Duration
	lastStats     time.Time

	saver            StateSaver
	saveKey          string
	autosaveInterval time.Duration
	lastSave         time.Time
	saving           atomic.Bool
	saveWG           sync.WaitGroup

	running bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	pending delivery
}

type delivery struct {
	stats      []Stats
	anomalies  []monitor.Anomaly
	inflations []monitor.InflationEvent
	errors     []error
}

// NewRunner wraps u. The runner reads the system clock until SetClock is
// called.
func NewRunner(u *Universe, hooks Hooks) *Runner {
	cfg := u.Config()
	r := &Runner{
		u:             u,
		clock:         core.SystemClock{},
		timer:         core.NewFixedStepDuration(u.StepDuration(), cfg.MaxStepsPerFrame),
		hooks:         hooks,
		statsInterval: cfg.StatsInterval,
		frameInterval: cfg.FrameInterval,
	}
	r.router = event.NewRouter[*Universe](u.Events())
	r.router.Register(hookBridge{r: r})
	return r
}

// hookBridge collects events destined for Hooks during dispatch.
type hookBridge struct{ r *Runner }

func (b hookBridge) EventTypes() []event.Type {
	return []event.Type{event.StatsUpdated, event.AnomalyRaised, event.InflationEnded, event.CollaboratorError}
}

func (b hookBridge) HandleEvent(_ *Universe, ev event.Event) {
	p := &b.r.pending
	switch payload := ev.Payload.(type) {
	case Stats:
		p.stats = append(p.stats, payload)
	case monitor.Anomaly:
		p.anomalies = append(p.anomalies, payload)
	case monitor.InflationEvent:
		p.inflations = append(p.inflations, payload)
	case event.ErrorPayload:
		p.errors = append(p.errors, payload.Err)
	}
}

// SetClock replaces the time source used by Start.
func (r *Runner) SetClock(c core.Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == nil {
		c = core.SystemClock{}
	}
	r.clock = c
}

// SetHooks replaces the hook set.
func (r *Runner) SetHooks(h Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = h
}

// SetAutosave enables periodic state saves under key. A nil saver or a
// non-positive interval disables autosave.
func (r *Runner) SetAutosave(s StateSaver, key string, every time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saver = s
	r.saveKey = key
	r.autosaveInterval = every
	r.lastSave = time.Time{}
}

// Subscribe registers a handler for queued events. Handlers run inside the
// stepping context and must not call back into the runner.
func (r *Runner) Subscribe(h event.Handler[*Universe]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.router.Register(h)
}

// Frame is the render callback: it runs the logical steps due since the
// previous frame, dispatching events after each one, publishes throttled
// stats and invokes OnRender exactly once.
func (r *Runner) Frame(now time.Time) FrameInfo {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return FrameInfo{}
	}
	steps := r.timer.Tick(now)
	for i := 0; i < steps; i++ {
		r.u.Step()
		r.router.DispatchAll(r.u)
	}
	r.u.MarkFrame()

	if r.lastStats.IsZero() || now.Sub(r.lastStats) >= r.statsInterval {
		r.lastStats = now
		r.u.publish(event.StatsUpdated, r.statsLocked())
	}
	r.maybeAutosave(now)
	r.router.DispatchAll(r.u)

	info := FrameInfo{
		Steps:   steps,
		Alpha:   r.timer.Alpha(),
		Tick:    r.u.Tick(),
		Dropped: r.timer.Dropped(),
	}
	hooks, out := r.takePending()
	r.mu.Unlock()

	deliver(hooks, out)
	if hooks.OnRender != nil {
		hooks.OnRender(info)
	}
	return info
}

// Steps runs n logical steps immediately, dispatching after each one. It is
// used by headless tools and ignores the clock.
func (r *Runner) Steps(n int) uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}
	for i := 0; i < n; i++ {
		r.u.Step()
		r.router.DispatchAll(r.u)
	}
	tick := r.u.Tick()
	hooks, out := r.takePending()
	r.mu.Unlock()
	deliver(hooks, out)
	return tick
}

// Step runs a single logical step. It satisfies core.Sim.
func (r *Runner) Step() { r.Steps(1) }

func (r *Runner) takePending() (Hooks, delivery) {
	out := r.pending
	r.pending = delivery{}
	return r.hooks, out
}

func deliver(h Hooks, d delivery) {
	if h.OnError != nil {
		for _, err := range d.errors {
			h.OnError(err)
		}
	}
	if h.OnAnomaly != nil {
		for _, a := range d.anomalies {
			h.OnAnomaly(a)
		}
	}
	if h.OnInflation != nil {
		for _, ev := range d.inflations {
			h.OnInflation(ev)
		}
	}
	if h.OnStats != nil {
		for _, s := range d.stats {
			h.OnStats(s)
		}
	}
}

func (r *Runner) maybeAutosave(now time.Time) {
	if r.saver == nil || r.autosaveInterval <= 0 {
		return
	}
	if r.lastSave.IsZero() {
		r.lastSave = now
		return
	}
	if now.Sub(r.lastSave) < r.autosaveInterval || r.saving.Load() {
		return
	}
	r.lastSave = now
	blob, err := Serialize(r.u.Snapshot())
	if err != nil {
		r.u.publish(event.CollaboratorError, event.ErrorPayload{Op: "autosave", Err: err})
		return
	}
	r.saving.Store(true)
	r.saveWG.Add(1)
	saver, key, queue, tick := r.saver, r.saveKey, r.u.Events(), r.u.Tick()
	go func() {
		defer r.saveWG.Done()
		defer r.saving.Store(false)
		if err := saver.SaveState(context.Background(), key, blob); err != nil {
			queue.Push(event.Event{
				Type:      event.CollaboratorError,
				Payload:   event.ErrorPayload{Op: "autosave", Err: fmt.Errorf("autosave %s: %w", key, err)},
				Tick:      tick,
				Timestamp: time.Now(),
			})
			return
		}
		queue.Push(event.Event{
			Type:      event.StateSaved,
			Payload:   event.SavedPayload{Key: key, Bytes: len(blob)},
			Tick:      tick,
			Timestamp: time.Now(),
		})
	}()
}

// SaveNow serializes the current state and writes it synchronously.
func (r *Runner) SaveNow(ctx context.Context, s StateSaver, key string) error {
	r.mu.Lock()
	blob, err := Serialize(r.u.Snapshot())
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.SaveState(ctx, key, blob); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	r.u.Events().Push(event.Event{Type: event.StateSaved, Payload: event.SavedPayload{Key: key, Bytes: len(blob)}, Timestamp: time.Now()})
	return nil
}

// Start launches a goroutine that calls Frame every frame interval until
// ctx is cancelled or Stop is called. Starting a running or closed runner
// is a no-op that returns false.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.running {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.running = true
	r.cancel = cancel
	r.done = done
	r.timer.Rebase()
	go r.loop(ctx, done)
	return true
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.done == done {
				r.running = false
				r.cancel = nil
				r.done = nil
			}
			r.mu.Unlock()
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			r.mu.Lock()
			clock := r.clock
			r.mu.Unlock()
			r.Frame(clock.Now())
		}
	}
}

// Stop cancels the frame loop and waits for it to exit. State is left
// intact. Stopping a stopped runner is a no-op that returns false. Stop must
// not be called from a hook.
func (r *Runner) Stop() bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return false
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.timer.Rebase()
	r.mu.Unlock()
	return true
}

// Running reports whether the frame loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Reset clears particles and counters but keeps the field.
func (r *Runner) Reset() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.u.Reset()
	r.timer.Clear()
	r.lastStats = time.Time{}
	r.u.publish(event.SimulationReset, nil)
	r.router.DispatchAll(r.u)
	hooks, out := r.takePending()
	r.mu.Unlock()
	deliver(hooks, out)
}

// Reinitialize rebuilds the universe, field included, from seed.
func (r *Runner) Reinitialize(seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.u.Reinitialize(seed)
	r.timer.Clear()
	r.lastStats = time.Time{}
	r.u.publish(event.SimulationReset, nil)
}

// Close stops the loop, waits for in-flight saves and releases the runner.
// Further calls are no-ops.
func (r *Runner) Close() {
	r.Stop()
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.saveWG.Wait()
}

// CanvasReady adapts the field to new output dimensions. It is a no-op when
// the dimensions are unchanged.
func (r *Runner) CanvasReady(width, height int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.u.SetCanvas(width, height) {
		return false
	}
	r.u.publish(event.CanvasResized, event.CanvasPayload{Width: width, Height: height})
	return true
}

func (r *Runner) statsLocked() Stats {
	s := r.u.Stats()
	s.Running = r.running
	s.DroppedSteps = r.timer.Dropped()
	s.DroppedEvents = r.u.Events().Dropped()
	return s
}

// Config returns the active configuration.
func (r *Runner) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Config()
}

// Stats returns a fresh projection.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsLocked()
}

// Snapshot returns the persisted form of the current state.
func (r *Runner) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Snapshot()
}

// Restore loads a state blob into the universe.
func (r *Runner) Restore(s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.u.Restore(s); err != nil {
		return err
	}
	r.timer.Clear()
	return nil
}

// Particles returns a copy of the population.
func (r *Runner) Particles() []particle.Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Particles()
}

// FieldLayer returns a copy of one field layer.
func (r *Runner) FieldLayer(z int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.FieldLayer(z)
}

// GradientAt samples the top-layer field gradient at display-cell
// coordinates.
func (r *Runner) GradientAt(cellX, cellY float64) (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.u.cfg.Resolution
	return r.u.field.Gradient(cellX*res, cellY*res, 0)
}

// View copies everything a renderer needs for one frame.
func (r *Runner) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := View{
		Cells:     append([]uint8(nil), r.u.Cells()...),
		Size:      r.u.Size(),
		Palette:   r.u.Palette(),
		Mode:      r.u.RenderMode(),
		Bounds:    r.u.bounds(),
		Inflating: r.u.inflation.Active(),
	}
	if v.Mode == RenderParticles || v.Mode == RenderCombined {
		v.Particles = r.u.Particles()
	}
	return v
}

// SetRenderMode switches the display mode.
func (r *Runner) SetRenderMode(m RenderMode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.SetRenderMode(m)
}

// CycleRenderMode advances to the next display mode and returns it.
func (r *Runner) CycleRenderMode() RenderMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.u.RenderMode().Next()
	r.u.SetRenderMode(next)
	return next
}

// Name implements core.Sim.
func (r *Runner) Name() string { return "universe" }

// Size implements core.Sim.
func (r *Runner) Size() core.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Size()
}

// Cells implements core.Sim with a copy of the display buffer.
func (r *Runner) Cells() []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint8(nil), r.u.Cells()...)
}

// Parameters implements core.ParameterProvider.
func (r *Runner) Parameters() core.ParameterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Parameters()
}

// ParameterControls implements core.ParameterControlsProvider.
func (r *Runner) ParameterControls() []core.ParameterControl {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.ParameterControls()
}

// SetFloatParameter implements core.FloatParameterSetter.
func (r *Runner) SetFloatParameter(key string, value float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.SetFloatParameter(key, value)
}

// SetIntParameter implements core.IntParameterSetter.
func (r *Runner) SetIntParameter(key string, value int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.SetIntParameter(key, value)
}

// SetBoolParameter implements core.BoolParameterSetter.
func (r *Runner) SetBoolParameter(key string, value bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.SetBoolParameter(key, value)
}
