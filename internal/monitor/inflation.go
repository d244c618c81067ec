package monitor

// InflationParams configures the inflation transition.
type InflationParams struct {
	KnowledgeThreshold float64 `env:"KNOWLEDGE_THRESHOLD"`
	EnergyThreshold    float64 `env:"ENERGY_THRESHOLD"`
	Factor             float64 `env:"FACTOR"`
	FieldBoost         float64 `env:"FIELD_BOOST"`
	Duration           uint64  `env:"DURATION"`
	Cooldown           uint64  `env:"COOLDOWN"`
}

// DefaultInflationParams returns the standard inflation tunables.
func DefaultInflationParams() InflationParams {
	return InflationParams{
		KnowledgeThreshold: 1500,
		EnergyThreshold:    400,
		Factor:             2.5,
		FieldBoost:         0.1,
		Duration:           180,
		Cooldown:           1800,
	}
}

// Aggregates are the population totals inflation watches.
type Aggregates struct {
	Knowledge  float64
	Energy     float64
	Complexity float64
	Population int
}

// InflationEvent describes one inflation transition. ParticlesAfter and the
// increases are filled when the window closes.
type InflationEvent struct {
	ID                 uint64  `json:"id"`
	Tick               uint64  `json:"timestamp"`
	EndTick            uint64  `json:"endTimestamp"`
	ParticlesBefore    int     `json:"particlesBefore"`
	ParticlesAfter     int     `json:"particlesAfter"`
	InflationFactor    float64 `json:"inflationFactor"`
	EnergyIncrease     float64 `json:"energyIncrease"`
	ComplexityIncrease float64 `json:"complexityIncrease"`
	Trigger            string  `json:"trigger"`
}

// Begin is returned when an inflation starts.
type Begin struct {
	Event InflationEvent
	// RateMultiplier scales the creation rate during the window.
	RateMultiplier float64
	// FieldAmplification is applied once to the field.
	FieldAmplification float64
}

// Inflation tracks at most one active transition and a bounded history of
// completed ones.
type Inflation struct {
	Params       InflationParams
	HistoryLimit int

	active     bool
	current    InflationEvent
	energy     float64
	complexity float64
	lastEnd    uint64
	ended      bool
	nextEvent  uint64
	history    []InflationEvent
	total      int
}

// NewInflation creates an idle tracker.
func NewInflation(p InflationParams) *Inflation {
	return &Inflation{Params: p, HistoryLimit: DefaultHistoryLimit, nextEvent: 1}
}

// Active reports whether a transition window is open.
func (in *Inflation) Active() bool { return in.active }

// Current returns the open transition, if any.
func (in *Inflation) Current() (InflationEvent, bool) { return in.current, in.active }

// RateMultiplier is Factor while active and 1 otherwise.
func (in *Inflation) RateMultiplier() float64 {
	if in.active && in.Params.Factor > 0 {
		return in.Params.Factor
	}
	return 1
}

// History returns the retained completed transitions, oldest first.
func (in *Inflation) History() []InflationEvent {
	return append([]InflationEvent(nil), in.history...)
}

// Count is the number of completed transitions, including ones dropped from
// history.
func (in *Inflation) Count() int { return in.total }

// Reset closes any open window and clears history.
func (in *Inflation) Reset() {
	in.active = false
	in.current = InflationEvent{}
	in.ended = false
	in.lastEnd = 0
	in.history = nil
	in.total = 0
	in.nextEvent = 1
}

// Restore reinstates completed transitions. total is raised to the history
// length when smaller.
func (in *Inflation) Restore(history []InflationEvent, total int) {
	in.Reset()
	in.history = append([]InflationEvent(nil), history...)
	for _, ev := range in.history {
		if ev.ID >= in.nextEvent {
			in.nextEvent = ev.ID + 1
		}
	}
	if total < len(in.history) {
		total = len(in.history)
	}
	in.total = total
	in.trim()
}

func (in *Inflation) trim() {
	limit := in.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if over := len(in.history) - limit; over > 0 {
		in.history = append([]InflationEvent(nil), in.history[over:]...)
	}
}

func (in *Inflation) trigger(agg Aggregates) string {
	p := in.Params
	switch {
	case p.KnowledgeThreshold > 0 && agg.Knowledge >= p.KnowledgeThreshold:
		return "knowledge"
	case p.EnergyThreshold > 0 && agg.Energy >= p.EnergyThreshold:
		return "energy"
	}
	return ""
}

// Check starts a transition when an aggregate crosses its threshold, no
// transition is active and the cooldown since the last one has elapsed.
func (in *Inflation) Check(tick uint64, agg Aggregates) (Begin, bool) {
	if in.active {
		return Begin{}, false
	}
	if in.ended && tick < in.lastEnd+in.Params.Cooldown {
		return Begin{}, false
	}
	reason := in.trigger(agg)
	if reason == "" {
		return Begin{}, false
	}
	factor := in.Params.Factor
	if factor < 1 {
		factor = 1
	}
	in.active = true
	in.energy = agg.Energy
	in.complexity = agg.Complexity
	in.current = InflationEvent{
		ID:              in.nextEvent,
		Tick:            tick,
		ParticlesBefore: agg.Population,
		InflationFactor: factor,
		Trigger:         reason,
	}
	in.nextEvent++
	return Begin{
		Event:              in.current,
		RateMultiplier:     factor,
		FieldAmplification: 1 + (factor-1)*in.Params.FieldBoost,
	}, true
}

// Advance closes the window once Duration ticks have passed and returns the
// completed transition.
func (in *Inflation) Advance(tick uint64, agg Aggregates) (InflationEvent, bool) {
	if !in.active || tick < in.current.Tick+in.Params.Duration {
		return InflationEvent{}, false
	}
	ev := in.current
	ev.EndTick = tick
	ev.ParticlesAfter = agg.Population
	ev.EnergyIncrease = agg.Energy - in.energy
	ev.ComplexityIncrease = agg.Complexity - in.complexity
	in.active = false
	in.current = InflationEvent{}
	in.ended = true
	in.lastEnd = tick
	in.history = append(in.history, ev)
	in.total++
	in.trim()
	return ev, true
}
