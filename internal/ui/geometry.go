package ui

import (
	"image/color"
	"math"

	"emergence/internal/core"
)

// sampleSpacing picks the cell distance between gradient arrows so roughly
// targetSamples arrows cover the grid.
func sampleSpacing(size core.Size) int {
	const (
		targetSamples = 360.0
		minSpacing    = 2
		maxSpacing    = 12
	)
	area := float64(size.W * size.H)
	spacing := int(math.Sqrt(area / targetSamples))
	if spacing < minSpacing {
		spacing = minSpacing
	}
	if spacing > maxSpacing {
		spacing = maxSpacing
	}
	return spacing
}

func interpolateColor(t float64) color.RGBA {
	t = clamp01(t)
	r := uint8(math.Round(80 + 70*t))
	g := uint8(math.Round(170 + 70*t))
	b := uint8(math.Round(230 + 20*t))
	a := uint8(math.Round(150 + 90*t))
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
