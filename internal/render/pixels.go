// Package render turns display buffers and particles into pixels.
package render

import (
	"image/color"
	"math"

	"emergence/internal/particle"
)

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Particle sizing in screen pixels before view scaling.
const (
	minRadius = 1.5
	maxRadius = 5.0
)

// ParticleRadius grows with energy and complexity.
func ParticleRadius(p particle.Particle, complexityCap float64) float32 {
	e := math.Min(math.Max(p.Energy, 0), 2) / 2
	c := 0.0
	if complexityCap > 0 {
		c = math.Min(math.Max(p.Complexity, 0)/complexityCap, 1)
	}
	return float32(minRadius + (maxRadius-minRadius)*(0.6*e+0.4*c))
}

// ParticleColor tints a base charge colour by kind and knowledge. Particles
// born during an inflation are drawn brighter.
func ParticleColor(p particle.Particle, base color.RGBA, knowledgeCap float64) color.RGBA {
	col := base
	switch p.Kind {
	case particle.HighEnergy:
		col = mix(col, color.RGBA{R: 255, G: 240, B: 120, A: 255}, 0.5)
	case particle.Quantum:
		col = mix(col, color.RGBA{R: 170, G: 110, B: 255, A: 255}, 0.55)
	case particle.Composite:
		col = mix(col, color.RGBA{R: 90, G: 230, B: 160, A: 255}, 0.55)
	case particle.Adaptive:
		col = mix(col, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0.6)
	}
	k := 0.0
	if knowledgeCap > 0 {
		k = math.Min(math.Max(p.Knowledge, 0)/knowledgeCap, 1)
	}
	col.A = uint8(math.Round(150 + 105*k))
	if p.PostInflation {
		col = mix(col, color.RGBA{R: 255, G: 255, B: 255, A: col.A}, 0.25)
	}
	return col
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
