package particle

// Params holds the tunables of the particle lifecycle.
type Params struct {
	// CreationThreshold is the minimum |field| that spawns a particle.
	CreationThreshold float64
	// IntentMultiplier scales the spawning field magnitude into Intent.
	IntentMultiplier float64
	// Lifespan in seconds; zero disables expiry.
	Lifespan float64
	// EnergyDecay is the fractional energy loss per Age call.
	EnergyDecay float64
	// MaxSpeed caps velocity magnitude in world units per second.
	MaxSpeed float64
	// FieldCoupling scales the acceleration along the local field gradient.
	FieldCoupling float64
	// Damping is the per-tick velocity retention factor.
	Damping float64

	KnowledgeCap  float64
	ComplexityCap float64

	HighEnergyThreshold  float64
	QuantumComplexity    float64
	CompositeInteraction int
	AdaptiveKnowledge    float64
}

// DefaultParams returns the standard lifecycle tunables.
func DefaultParams() Params {
	return Params{
		CreationThreshold:    0.5,
		IntentMultiplier:     1,
		Lifespan:             90,
		EnergyDecay:          0.001,
		MaxSpeed:             40,
		FieldCoupling:        120,
		Damping:              0.98,
		KnowledgeCap:         100,
		ComplexityCap:        100,
		HighEnergyThreshold:  0.9,
		QuantumComplexity:    25,
		CompositeInteraction: 20,
		AdaptiveKnowledge:    50,
	}
}
