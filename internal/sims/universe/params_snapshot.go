package universe

import (
	"strconv"

	"emergence/internal/core"
)

// Parameters reports the current tunables grouped for presentation.
func (u *Universe) Parameters() core.ParameterSnapshot {
	c := u.cfg
	p := c.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				floatParam("w", "Width", c.Width),
				floatParam("h", "Height", c.Height),
				intParam("depth", "Depth", c.Depth),
				floatParam("resolution", "Resolution", c.Resolution),
				int64Param("seed", "Seed", c.Seed),
				enumParam("field_seeding", "Field seeding", string(c.FieldSeeding)),
				enumParam("render_mode", "Render mode", string(c.RenderMode)),
			},
		},
		{
			Name: "Intent Field",
			Params: []core.Parameter{
				floatParam("intent_fluctuation_rate", "Fluctuation rate", p.IntentFluctuationRate),
				boolParam("probabilistic_intent", "Probabilistic intent", p.ProbabilisticIntent),
			},
		},
		{
			Name: "Particles",
			Params: []core.Parameter{
				intParam("max_particles", "Max particles", p.MaxParticles),
				floatParam("particle_creation_rate", "Creation rate", p.ParticleCreationRate),
				floatParam("creation_threshold", "Creation threshold", p.CreationThreshold),
				floatParam("intent_multiplier", "Intent multiplier", p.IntentMultiplier),
				floatParam("lifespan", "Lifespan", p.Lifespan),
				floatParam("energy_decay", "Energy decay", p.EnergyDecay),
				floatParam("max_speed", "Max speed", p.MaxSpeed),
				floatParam("field_coupling", "Field coupling", p.FieldCoupling),
			},
		},
		{
			Name: "Interactions",
			Params: []core.Parameter{
				floatParam("learning_rate", "Learning rate", p.LearningRate),
				boolParam("energy_conservation", "Energy conservation", p.EnergyConservation),
				floatParam("energy_loss_rate", "Energy loss rate", p.EnergyLossRate),
				floatParam("interaction_radius", "Interaction radius", p.InteractionRadius),
				floatParam("interaction_probability", "Interaction probability", p.InteractionProbability),
			},
		},
		{
			Name: "Monitor",
			Params: []core.Parameter{
				intParam("monitor_interval", "Monitor interval", p.MonitorInterval),
				floatParam("anomaly_entropy", "Entropy threshold", p.Thresholds.Entropy),
				floatParam("anomaly_clusters", "Cluster threshold", p.Thresholds.Clusters),
				floatParam("anomaly_order", "Order threshold", p.Thresholds.Order),
				floatParam("inflation_knowledge_threshold", "Inflation knowledge", p.Inflation.KnowledgeThreshold),
				floatParam("inflation_energy_threshold", "Inflation energy", p.Inflation.EnergyThreshold),
				floatParam("inflation_factor", "Inflation factor", p.Inflation.Factor),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable tunables.
func (u *Universe) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "intent_fluctuation_rate", Label: "Fluctuation", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "max_particles", Label: "Max particles", Type: core.ParamTypeInt, Step: 50, Min: 0, Max: 5000, HasMin: true, HasMax: true},
		{Key: "particle_creation_rate", Label: "Creation /s", Type: core.ParamTypeFloat, Step: 5, Min: 0, Max: 500, HasMin: true, HasMax: true},
		{Key: "learning_rate", Label: "Learning rate", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "interaction_radius", Label: "Radius", Type: core.ParamTypeFloat, Step: 2, Min: 0, Max: 200, HasMin: true, HasMax: true},
		{Key: "interaction_probability", Label: "Interact p", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "energy_loss_rate", Label: "Loss rate", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 0.95, HasMin: true, HasMax: true},
		{Key: "creation_threshold", Label: "Threshold", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "energy_conservation", Label: "Conserve energy", Type: core.ParamTypeBool},
		{Key: "probabilistic_intent", Label: "Heavy-tail noise", Type: core.ParamTypeBool},
	}
}

// SetFloatParameter updates a floating-point tunable. Values outside the
// valid range are clamped by Sanitize.
func (u *Universe) SetFloatParameter(key string, value float64) bool {
	p := u.cfg.Params
	switch key {
	case "intent_fluctuation_rate":
		p.IntentFluctuationRate = value
	case "particle_creation_rate":
		p.ParticleCreationRate = value
	case "creation_threshold":
		p.CreationThreshold = value
	case "intent_multiplier":
		p.IntentMultiplier = value
	case "lifespan":
		p.Lifespan = value
	case "energy_decay":
		p.EnergyDecay = value
	case "max_speed":
		p.MaxSpeed = value
	case "field_coupling":
		p.FieldCoupling = value
	case "learning_rate":
		p.LearningRate = value
	case "energy_loss_rate":
		p.EnergyLossRate = value
	case "interaction_radius":
		p.InteractionRadius = value
	case "interaction_probability":
		p.InteractionProbability = value
	case "anomaly_entropy":
		p.Thresholds.Entropy = value
	case "anomaly_clusters":
		p.Thresholds.Clusters = value
	case "anomaly_order":
		p.Thresholds.Order = value
	case "inflation_knowledge_threshold":
		p.Inflation.KnowledgeThreshold = value
	case "inflation_energy_threshold":
		p.Inflation.EnergyThreshold = value
	case "inflation_factor":
		p.Inflation.Factor = value
	default:
		return false
	}
	u.SetParams(p)
	return true
}

// SetIntParameter updates an integer tunable.
func (u *Universe) SetIntParameter(key string, value int) bool {
	p := u.cfg.Params
	switch key {
	case "max_particles":
		p.MaxParticles = value
	case "monitor_interval":
		p.MonitorInterval = value
	default:
		return false
	}
	u.SetParams(p)
	return true
}

// SetBoolParameter toggles a boolean tunable.
func (u *Universe) SetBoolParameter(key string, value bool) bool {
	p := u.cfg.Params
	switch key {
	case "probabilistic_intent":
		p.ProbabilisticIntent = value
	case "energy_conservation":
		p.EnergyConservation = value
	default:
		return false
	}
	u.SetParams(p)
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}

func enumParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeEnum,
		Value: value,
	}
}
