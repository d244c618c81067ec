package universe

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"emergence/internal/interact"
	"emergence/internal/monitor"
	"emergence/internal/particle"
)

// RenderMode selects what the display buffer shows.
type RenderMode string

const (
	RenderParticles RenderMode = "particles"
	RenderField     RenderMode = "field"
	RenderDensity   RenderMode = "density"
	RenderCombined  RenderMode = "combined"
)

// RenderModes lists the modes in cycling order.
var RenderModes = []RenderMode{RenderParticles, RenderField, RenderDensity, RenderCombined}

// Valid reports whether m is a known mode.
func (m RenderMode) Valid() bool {
	for _, known := range RenderModes {
		if m == known {
			return true
		}
	}
	return false
}

// Next returns the following mode in cycling order.
func (m RenderMode) Next() RenderMode {
	for i, known := range RenderModes {
		if m == known {
			return RenderModes[(i+1)%len(RenderModes)]
		}
	}
	return RenderParticles
}

// FieldSeeding selects how a fresh intent field is filled.
type FieldSeeding string

const (
	SeedUniform FieldSeeding = "uniform"
	SeedPerlin  FieldSeeding = "perlin"
)

// Params holds the tunables of the stepping pipeline.
type Params struct {
	IntentFluctuationRate float64 `env:"UNIVERSE_INTENT_FLUCTUATION_RATE"`
	ProbabilisticIntent   bool    `env:"UNIVERSE_PROBABILISTIC_INTENT"`
	MaxParticles          int     `env:"UNIVERSE_MAX_PARTICLES"`
	ParticleCreationRate  float64 `env:"UNIVERSE_PARTICLE_CREATION_RATE"`
	MaxCreationsPerStep   int     `env:"UNIVERSE_MAX_CREATIONS_PER_STEP"`

	CreationThreshold float64 `env:"UNIVERSE_CREATION_THRESHOLD"`
	IntentMultiplier  float64 `env:"UNIVERSE_INTENT_MULTIPLIER"`
	Lifespan          float64 `env:"UNIVERSE_LIFESPAN"`
	EnergyDecay       float64 `env:"UNIVERSE_ENERGY_DECAY"`
	MaxSpeed          float64 `env:"UNIVERSE_MAX_SPEED"`
	FieldCoupling     float64 `env:"UNIVERSE_FIELD_COUPLING"`
	Damping           float64 `env:"UNIVERSE_DAMPING"`

	LearningRate           float64 `env:"UNIVERSE_LEARNING_RATE"`
	EnergyConservation     bool    `env:"UNIVERSE_ENERGY_CONSERVATION"`
	EnergyLossRate         float64 `env:"UNIVERSE_ENERGY_LOSS_RATE"`
	InteractionRadius      float64 `env:"UNIVERSE_INTERACTION_RADIUS"`
	InteractionProbability float64 `env:"UNIVERSE_INTERACTION_PROBABILITY"`

	MonitorInterval int                     `env:"UNIVERSE_MONITOR_INTERVAL"`
	ClusterRadius   float64                 `env:"UNIVERSE_CLUSTER_RADIUS"`
	Thresholds      monitor.Thresholds      `envPrefix:"UNIVERSE_ANOMALY_"`
	Inflation       monitor.InflationParams `envPrefix:"UNIVERSE_INFLATION_"`
}

// Config controls world dimensions, seeding and scheduling.
type Config struct {
	Width      float64 `env:"UNIVERSE_WIDTH"`
	Height     float64 `env:"UNIVERSE_HEIGHT"`
	Depth      int     `env:"UNIVERSE_DEPTH"`
	Resolution float64 `env:"UNIVERSE_RESOLUTION"`

	Seed         int64        `env:"UNIVERSE_SEED"`
	FieldSeeding FieldSeeding `env:"UNIVERSE_FIELD_SEEDING"`
	NoiseScale   float64      `env:"UNIVERSE_NOISE_SCALE"`

	TPS              int           `env:"UNIVERSE_TPS"`
	MaxStepsPerFrame int           `env:"UNIVERSE_MAX_STEPS_PER_FRAME"`
	FrameInterval    time.Duration `env:"UNIVERSE_FRAME_INTERVAL"`
	StatsInterval    time.Duration `env:"UNIVERSE_STATS_INTERVAL"`
	AutosaveInterval time.Duration `env:"UNIVERSE_AUTOSAVE_INTERVAL"`

	RenderMode RenderMode `env:"UNIVERSE_RENDER_MODE"`

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	inflation := monitor.DefaultInflationParams()
	return Config{
		Width:            800,
		Height:           600,
		Depth:            3,
		Resolution:       10,
		Seed:             1337,
		FieldSeeding:     SeedUniform,
		NoiseScale:       0.08,
		TPS:              60,
		MaxStepsPerFrame: 5,
		FrameInterval:    time.Second / 60,
		StatsInterval:    500 * time.Millisecond,
		RenderMode:       RenderParticles,
		Params: Params{
			IntentFluctuationRate:  0.05,
			ProbabilisticIntent:    true,
			MaxParticles:           500,
			ParticleCreationRate:   20,
			MaxCreationsPerStep:    16,
			CreationThreshold:      0.5,
			IntentMultiplier:       1,
			Lifespan:               90,
			EnergyDecay:            0.001,
			MaxSpeed:               40,
			FieldCoupling:          120,
			Damping:                0.98,
			LearningRate:           0.1,
			EnergyConservation:     true,
			EnergyLossRate:         0.5,
			InteractionRadius:      24,
			InteractionProbability: 0.05,
			MonitorInterval:        30,
			ClusterRadius:          24,
			Thresholds:             monitor.DefaultThresholds(),
			Inflation:              inflation,
		},
	}
}

// ParticleParams projects the lifecycle tunables.
func (p Params) ParticleParams() particle.Params {
	pp := particle.DefaultParams()
	pp.CreationThreshold = p.CreationThreshold
	pp.IntentMultiplier = p.IntentMultiplier
	pp.Lifespan = p.Lifespan
	pp.EnergyDecay = p.EnergyDecay
	pp.MaxSpeed = p.MaxSpeed
	pp.FieldCoupling = p.FieldCoupling
	pp.Damping = p.Damping
	return pp
}

// InteractParams projects the interaction tunables.
func (p Params) InteractParams() interact.Params {
	ip := interact.DefaultParams()
	ip.Radius = p.InteractionRadius
	ip.Probability = p.InteractionProbability
	ip.LearningRate = p.LearningRate
	ip.EnergyLossRate = p.EnergyLossRate
	ip.EnergyConservation = p.EnergyConservation
	return ip
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparsable or out-of-range values leave the default in place.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	ApplyMap(&c, cfg)
	return c
}

// ApplyMap overlays flag-style key/value pairs onto c.
func ApplyMap(c *Config, cfg map[string]string) {
	if cfg == nil {
		return
	}
	p := &c.Params
	floatOpt(cfg, "w", &c.Width, 1, math.Inf(1))
	floatOpt(cfg, "h", &c.Height, 1, math.Inf(1))
	intOpt(cfg, "depth", &c.Depth, 1, math.MaxInt32)
	floatOpt(cfg, "resolution", &c.Resolution, 1e-3, math.Inf(1))
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["field_seeding"]; ok {
		switch s := FieldSeeding(strings.ToLower(v)); s {
		case SeedUniform, SeedPerlin:
			c.FieldSeeding = s
		}
	}
	floatOpt(cfg, "noise_scale", &c.NoiseScale, 1e-6, math.Inf(1))
	intOpt(cfg, "tps", &c.TPS, 1, 1000)
	intOpt(cfg, "max_steps", &c.MaxStepsPerFrame, 1, 1000)
	durationOpt(cfg, "stats_interval", &c.StatsInterval)
	durationOpt(cfg, "autosave_interval", &c.AutosaveInterval)
	if v, ok := cfg["render_mode"]; ok {
		if m := RenderMode(strings.ToLower(v)); m.Valid() {
			c.RenderMode = m
		}
	}

	floatOpt(cfg, "intent_fluctuation_rate", &p.IntentFluctuationRate, 0, 1)
	boolOpt(cfg, "probabilistic_intent", &p.ProbabilisticIntent)
	intOpt(cfg, "max_particles", &p.MaxParticles, 0, math.MaxInt32)
	floatOpt(cfg, "particle_creation_rate", &p.ParticleCreationRate, 0, math.Inf(1))
	intOpt(cfg, "max_creations_per_step", &p.MaxCreationsPerStep, 1, math.MaxInt32)
	floatOpt(cfg, "creation_threshold", &p.CreationThreshold, 0, 1)
	floatOpt(cfg, "intent_multiplier", &p.IntentMultiplier, 0, math.Inf(1))
	floatOpt(cfg, "lifespan", &p.Lifespan, 0, math.Inf(1))
	floatOpt(cfg, "energy_decay", &p.EnergyDecay, 0, 1)
	floatOpt(cfg, "max_speed", &p.MaxSpeed, 0, math.Inf(1))
	floatOpt(cfg, "field_coupling", &p.FieldCoupling, 0, math.Inf(1))
	floatOpt(cfg, "damping", &p.Damping, 0, 1)
	floatOpt(cfg, "learning_rate", &p.LearningRate, 0, math.Inf(1))
	boolOpt(cfg, "energy_conservation", &p.EnergyConservation)
	floatOpt(cfg, "energy_loss_rate", &p.EnergyLossRate, 0, 1)
	floatOpt(cfg, "interaction_radius", &p.InteractionRadius, 0, math.Inf(1))
	floatOpt(cfg, "interaction_probability", &p.InteractionProbability, 0, 1)
	intOpt(cfg, "monitor_interval", &p.MonitorInterval, 1, math.MaxInt32)
	floatOpt(cfg, "cluster_radius", &p.ClusterRadius, 0, math.Inf(1))

	th := &p.Thresholds
	floatOpt(cfg, "anomaly_entropy", &th.Entropy, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_clusters", &th.Clusters, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_adaptive", &th.Adaptive, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_composite", &th.Composite, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_order", &th.Order, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_information", &th.Information, 0, math.Inf(1))
	floatOpt(cfg, "anomaly_complexity", &th.Complexity, 0, math.Inf(1))

	inf := &p.Inflation
	floatOpt(cfg, "inflation_knowledge_threshold", &inf.KnowledgeThreshold, 0, math.Inf(1))
	floatOpt(cfg, "inflation_energy_threshold", &inf.EnergyThreshold, 0, math.Inf(1))
	floatOpt(cfg, "inflation_factor", &inf.Factor, 1, math.Inf(1))
	floatOpt(cfg, "inflation_field_boost", &inf.FieldBoost, 0, math.Inf(1))
	uintOpt(cfg, "inflation_duration", &inf.Duration)
	uintOpt(cfg, "inflation_cooldown", &inf.Cooldown)
}

func floatOpt(cfg map[string]string, key string, dst *float64, lo, hi float64) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= lo && parsed <= hi {
		*dst = parsed
	}
}

func intOpt(cfg map[string]string, key string, dst *int, lo, hi int) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.Atoi(v); err == nil && parsed >= lo && parsed <= hi {
		*dst = parsed
	}
}

func uintOpt(cfg map[string]string, key string, dst *uint64) {
	if v, ok := cfg[key]; ok {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func boolOpt(cfg map[string]string, key string, dst *bool) {
	if v, ok := cfg[key]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func durationOpt(cfg map[string]string, key string, dst *time.Duration) {
	if v, ok := cfg[key]; ok {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			*dst = parsed
		}
	}
}

// MinRadius is the smallest non-zero interaction or cluster radius. Zero
// disables the pair search.
const MinRadius = 0.01

// Sanitize clamps out-of-range values to the nearest valid value and logs
// each correction. It never fails.
func (c Config) Sanitize(logger *log.Logger) Config {
	if logger == nil {
		logger = log.Default()
	}
	d := DefaultConfig()
	fix := func(name string, from, to any) {
		logger.Printf("config: %s %v out of range, using %v", name, from, to)
	}
	clampF := func(name string, v *float64, lo, hi float64) {
		switch {
		case math.IsNaN(*v):
			fix(name, *v, lo)
			*v = lo
		case *v < lo:
			fix(name, *v, lo)
			*v = lo
		case *v > hi:
			fix(name, *v, hi)
			*v = hi
		}
	}
	clampI := func(name string, v *int, lo, hi int) {
		switch {
		case *v < lo:
			fix(name, *v, lo)
			*v = lo
		case *v > hi:
			fix(name, *v, hi)
			*v = hi
		}
	}

	clampF("width", &c.Width, 1, math.MaxFloat64)
	clampF("height", &c.Height, 1, math.MaxFloat64)
	clampI("depth", &c.Depth, 1, math.MaxInt32)
	clampF("resolution", &c.Resolution, 1e-3, math.MaxFloat64)
	if c.FieldSeeding != SeedUniform && c.FieldSeeding != SeedPerlin {
		fix("field seeding", c.FieldSeeding, d.FieldSeeding)
		c.FieldSeeding = d.FieldSeeding
	}
	if c.NoiseScale <= 0 || math.IsNaN(c.NoiseScale) {
		fix("noise scale", c.NoiseScale, d.NoiseScale)
		c.NoiseScale = d.NoiseScale
	}
	clampI("tps", &c.TPS, 1, 1000)
	clampI("max steps per frame", &c.MaxStepsPerFrame, 1, 1000)
	if c.FrameInterval <= 0 {
		fix("frame interval", c.FrameInterval, d.FrameInterval)
		c.FrameInterval = d.FrameInterval
	}
	if c.StatsInterval <= 0 {
		fix("stats interval", c.StatsInterval, d.StatsInterval)
		c.StatsInterval = d.StatsInterval
	}
	if c.AutosaveInterval < 0 {
		fix("autosave interval", c.AutosaveInterval, time.Duration(0))
		c.AutosaveInterval = 0
	}
	if !c.RenderMode.Valid() {
		fix("render mode", c.RenderMode, d.RenderMode)
		c.RenderMode = d.RenderMode
	}

	p := &c.Params
	clampF("intent fluctuation rate", &p.IntentFluctuationRate, 0, 1)
	clampI("max particles", &p.MaxParticles, 0, math.MaxInt32)
	clampF("particle creation rate", &p.ParticleCreationRate, 0, math.MaxFloat64)
	clampI("max creations per step", &p.MaxCreationsPerStep, 1, math.MaxInt32)
	clampF("creation threshold", &p.CreationThreshold, 0, 1)
	clampF("intent multiplier", &p.IntentMultiplier, 0, math.MaxFloat64)
	clampF("lifespan", &p.Lifespan, 0, math.MaxFloat64)
	clampF("energy decay", &p.EnergyDecay, 0, 1)
	clampF("max speed", &p.MaxSpeed, 0, math.MaxFloat64)
	clampF("field coupling", &p.FieldCoupling, 0, math.MaxFloat64)
	clampF("damping", &p.Damping, 0, 1)
	clampF("learning rate", &p.LearningRate, 0, math.MaxFloat64)
	clampF("energy loss rate", &p.EnergyLossRate, 0.001, 0.999)
	clampRadius := func(name string, v *float64) {
		clampF(name, v, 0, math.MaxFloat64)
		if *v > 0 && *v < MinRadius {
			fix(name, *v, MinRadius)
			*v = MinRadius
		}
	}
	clampRadius("interaction radius", &p.InteractionRadius)
	clampF("interaction probability", &p.InteractionProbability, 0, 1)
	clampI("monitor interval", &p.MonitorInterval, 1, math.MaxInt32)
	clampRadius("cluster radius", &p.ClusterRadius)

	th := &p.Thresholds
	for _, t := range []struct {
		name string
		v    *float64
	}{
		{"entropy threshold", &th.Entropy},
		{"cluster threshold", &th.Clusters},
		{"adaptive threshold", &th.Adaptive},
		{"composite threshold", &th.Composite},
		{"order threshold", &th.Order},
		{"information threshold", &th.Information},
		{"complexity threshold", &th.Complexity},
	} {
		clampF(t.name, t.v, 0, math.MaxFloat64)
	}

	inf := &p.Inflation
	clampF("inflation knowledge threshold", &inf.KnowledgeThreshold, 0, math.MaxFloat64)
	clampF("inflation energy threshold", &inf.EnergyThreshold, 0, math.MaxFloat64)
	clampF("inflation factor", &inf.Factor, 1, math.MaxFloat64)
	clampF("inflation field boost", &inf.FieldBoost, 0, math.MaxFloat64)
	return c
}
