package particle

import "math"

// RecomputeComplexity raises complexity toward the value implied by the
// particle's interaction count, knowledge and age. It never lowers it.
func RecomputeComplexity(p *Particle, limit float64) {
	target := 2*math.Log1p(float64(p.Interactions)) + 0.05*p.Knowledge + 0.01*p.Age
	if target > limit {
		target = limit
	}
	if target > p.Complexity {
		p.Complexity = target
	}
}
