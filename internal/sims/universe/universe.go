// Package universe wires the intent field, particle store, interaction engine
// and monitors into one steppable simulation handle.
package universe

import (
	"log"
	"time"

	"emergence/internal/core"
	"emergence/internal/event"
	"emergence/internal/field"
	"emergence/internal/interact"
	"emergence/internal/monitor"
	"emergence/internal/particle"
	pcore "emergence/pkg/core"
)

// Universe owns all simulation state. It is not safe for concurrent use;
// Runner serialises access.
type Universe struct {
	cfg    Config
	logger *log.Logger
	rng    *pcore.RNG

	field     *field.Field
	store     *particle.Store
	engine    *interact.Engine
	monitor   *monitor.Monitor
	inflation *monitor.Inflation
	queue     *event.Queue

	step time.Duration

	tick         uint64
	frames       uint64
	simTime      float64
	interactions uint64
	lastResult   interact.Result
	created      uint64
	evicted      uint64
	expired      uint64

	display      *core.ByteGrid
	displayDirty bool
}

// New builds a universe from cfg. A nil logger selects log.Default().
func New(cfg Config, logger *log.Logger) *Universe {
	if logger == nil {
		logger = log.Default()
	}
	cfg = cfg.Sanitize(logger)
	u := &Universe{
		cfg:    cfg,
		logger: logger,
		queue:  event.NewQueue(),
	}
	u.build(cfg.Seed)
	return u
}

// NewDefault builds a universe with DefaultConfig.
func NewDefault() *Universe {
	return New(DefaultConfig(), nil)
}

func (u *Universe) build(seed int64) {
	cfg := u.cfg
	u.cfg.Seed = seed
	u.rng = pcore.NewRNG(seed)
	u.step = time.Second / time.Duration(cfg.TPS)
	u.field = u.freshField()

	b := u.bounds()
	u.store = particle.NewStore(cfg.Params.ParticleParams(), b, u.rng)
	u.engine = interact.New(cfg.Params.InteractParams(), b)
	pp := cfg.Params.ParticleParams()
	sampler := monitor.NewSampler(b, cfg.Params.ClusterRadius, pp.KnowledgeCap, pp.ComplexityCap)
	u.monitor = monitor.New(sampler, cfg.Params.Thresholds)
	u.inflation = monitor.NewInflation(cfg.Params.Inflation)
	u.resetCounters()
	u.allocDisplay()
}

func (u *Universe) freshField() *field.Field {
	dims := field.Dimensions{Width: u.cfg.Width, Height: u.cfg.Height, Depth: u.cfg.Depth}
	if u.cfg.FieldSeeding == SeedPerlin {
		return field.InitializeCoherent(dims, u.cfg.Resolution, u.rng.Seed(), u.cfg.NoiseScale)
	}
	return field.Initialize(dims, u.cfg.Resolution, u.rng)
}

func (u *Universe) bounds() particle.Bounds {
	return particle.Bounds{Width: u.cfg.Width, Height: u.cfg.Height, Depth: float64(u.cfg.Depth)}
}

func (u *Universe) allocDisplay() {
	u.display = core.NewByteGrid(u.field.Cols, u.field.Rows)
	u.displayDirty = true
}

func (u *Universe) resetCounters() {
	u.tick = 0
	u.frames = 0
	u.simTime = 0
	u.interactions = 0
	u.lastResult = interact.Result{}
	u.created = 0
	u.evicted = 0
	u.expired = 0
}

// Name implements core.Sim.
func (u *Universe) Name() string { return "universe" }

// Size reports the display buffer dimensions, one cell per field column/row.
func (u *Universe) Size() core.Size { return core.Size{W: u.display.W, H: u.display.H} }

// Config returns the active configuration.
func (u *Universe) Config() Config { return u.cfg }

// Logger returns the logger corrections and recoveries are written to.
func (u *Universe) Logger() *log.Logger { return u.logger }

// Events returns the queue the universe publishes to.
func (u *Universe) Events() *event.Queue { return u.queue }

// Tick is the number of logical steps since the last reset.
func (u *Universe) Tick() uint64 { return u.tick }

// StepDuration is the logical step length.
func (u *Universe) StepDuration() time.Duration { return u.step }

// Field exposes the intent field. Callers outside the stepping context must
// use FieldLayer or Snapshot instead.
func (u *Universe) Field() *field.Field { return u.field }

// FieldLayer returns a copy of one depth layer.
func (u *Universe) FieldLayer(z int) []float64 { return u.field.Layer(z) }

// Particles returns a copy of the population.
func (u *Universe) Particles() []particle.Particle { return u.store.Snapshot() }

// Anomalies returns the retained anomaly history.
func (u *Universe) Anomalies() []monitor.Anomaly { return u.monitor.History() }

// Inflations returns completed inflation transitions.
func (u *Universe) Inflations() []monitor.InflationEvent { return u.inflation.History() }

// MarkFrame counts one rendered frame.
func (u *Universe) MarkFrame() { u.frames++ }

func (u *Universe) publish(t event.Type, payload any) {
	u.queue.Push(event.Event{Type: t, Payload: payload, Tick: u.tick, Timestamp: time.Now()})
}

// Step advances one logical step.
func (u *Universe) Step() {
	dt := u.step.Seconds()
	p := u.cfg.Params
	u.tick++
	u.simTime += dt

	u.expired += uint64(u.store.Compact())
	u.trimPopulation()
	u.field.Fluctuate(p.IntentFluctuationRate, p.ProbabilisticIntent, u.rng)
	u.createParticles()
	u.store.Age(dt)
	u.store.Move(u.field, dt)

	u.lastResult = u.engine.Run(u.store.Live(), u.rng)
	u.interactions += uint64(u.lastResult.Fired)
	u.store.Project()

	u.progressInflation()
	if u.tick%uint64(p.MonitorInterval) == 0 {
		u.runMonitor()
	}
	u.displayDirty = true
}

// trimPopulation evicts the oldest particles above MaxParticles.
func (u *Universe) trimPopulation() {
	for _, p := range u.store.Trim(u.cfg.Params.MaxParticles) {
		u.evicted++
		u.publish(event.ParticleEvicted, p)
	}
}

func (u *Universe) createParticles() {
	p := u.cfg.Params
	rate := p.ParticleCreationRate * u.inflation.RateMultiplier()
	elapsed := u.step
	for i := 0; i < p.MaxCreationsPerStep; i++ {
		if i > 0 && u.store.Budget() < 1 {
			break
		}
		created, ok := u.store.TryCreate(u.field, rate, p.MaxParticles, elapsed)
		elapsed = 0
		if evicted, had := u.store.LastEvicted(); had {
			u.evicted++
			u.publish(event.ParticleEvicted, evicted)
		}
		if ok {
			u.created++
			u.publish(event.ParticleCreated, created)
		}
	}
}

func (u *Universe) aggregates() monitor.Aggregates {
	t := u.store.Totals()
	return monitor.Aggregates{
		Knowledge:  t.Knowledge,
		Energy:     t.Energy,
		Complexity: t.Complexity,
		Population: u.store.Len(),
	}
}

func (u *Universe) progressInflation() {
	if !u.inflation.Active() {
		return
	}
	ev, ok := u.inflation.Advance(u.tick, u.aggregates())
	if !ok {
		return
	}
	u.store.SetPostInflation(false)
	u.publish(event.InflationEnded, ev)
}

func (u *Universe) runMonitor() {
	if a, ok := u.monitor.Run(u.tick, u.store.Live()); ok {
		u.publish(event.AnomalyRaised, a)
	}
	begin, ok := u.inflation.Check(u.tick, u.aggregates())
	if !ok {
		return
	}
	u.field.Amplify(begin.FieldAmplification)
	u.store.SetPostInflation(true)
	u.publish(event.InflationStarted, begin.Event)
}

// Reset clears particles, counters and monitor history. The intent field is
// kept as is.
func (u *Universe) Reset() {
	u.store.Reset()
	u.monitor.Reset()
	u.inflation.Reset()
	u.resetCounters()
	u.queue.Drain()
	u.displayDirty = true
}

// Reinitialize rebuilds every store, including a fresh field, from seed.
func (u *Universe) Reinitialize(seed int64) {
	u.queue.Drain()
	u.build(seed)
}

// SetCanvas adapts the world to new output dimensions. The field is
// reallocated and particles are pulled inside the new bounds. It reports
// whether anything changed.
func (u *Universe) SetCanvas(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	w, h := float64(width), float64(height)
	if w == u.cfg.Width && h == u.cfg.Height {
		return false
	}
	u.cfg.Width = w
	u.cfg.Height = h
	u.field = u.freshField()
	b := u.bounds()
	u.store.SetBounds(b)
	u.engine.SetBounds(b)
	u.monitor.Sampler().SetBounds(b)
	u.allocDisplay()
	return true
}

// SetParams replaces the pipeline tunables after sanitising them.
func (u *Universe) SetParams(p Params) {
	cfg := u.cfg
	cfg.Params = p
	cfg = cfg.Sanitize(u.logger)
	u.cfg = cfg
	u.applyParams()
}

func (u *Universe) applyParams() {
	p := u.cfg.Params
	u.store.SetParams(p.ParticleParams())
	u.trimPopulation()
	u.engine.SetParams(p.InteractParams())
	s := u.monitor.Sampler()
	if s.Radius != p.ClusterRadius {
		s.Radius = p.ClusterRadius
		s.SetBounds(u.bounds())
	}
	u.monitor.Thresholds = p.Thresholds
	u.inflation.Params = p.Inflation
}

// SetRenderMode switches the display buffer content.
func (u *Universe) SetRenderMode(m RenderMode) bool {
	if !m.Valid() {
		return false
	}
	u.cfg.RenderMode = m
	u.displayDirty = true
	return true
}

// Stats projects the current state. Nothing is cached.
func (u *Universe) Stats() Stats {
	s := Stats{
		Tick:             u.tick,
		FrameCount:       u.frames,
		SimulationTime:   u.simTime,
		Interactions:     u.interactions,
		LastInteractions: u.lastResult.Fired,
		Candidates:       u.lastResult.Candidates,
		Created:          u.created,
		Evicted:          u.evicted,
		Expired:          u.expired,
		Macro:            u.monitor.Latest(),
		Field:            u.field.Analyze(),
		InflationActive:  u.inflation.Active(),
		Anomalies:        u.monitor.Total(),
		Inflations:       u.inflation.Count(),
		RenderMode:       u.cfg.RenderMode,
	}
	var knowledge, energy, complexity float64
	for _, p := range u.store.Live() {
		if p.Expired {
			continue
		}
		s.Particles++
		s.Charges.add(p.Charge)
		s.Kinds.add(p.Kind)
		if p.PostInflation {
			s.PostInflation++
		}
		knowledge += p.Knowledge
		energy += p.Energy
		complexity += p.Complexity
	}
	if s.Particles > 0 {
		n := float64(s.Particles)
		s.AverageKnowledge = knowledge / n
		s.AverageEnergy = energy / n
		s.ComplexityIndex = complexity / n
	}
	s.Entropy = s.Macro.Entropy
	return s
}
