package universe

import (
	"image/color"
	"math"

	"emergence/internal/particle"
)

// Display buffer layout. Field values occupy the first fieldLevels indices,
// particle density the next densityLevels, and the last index is the empty
// background used in particle mode.
const (
	fieldLevels     = 64
	densityBase     = fieldLevels
	densityLevels   = 64
	backgroundIndex = densityBase + densityLevels
)

var universePalette = buildUniversePalette()

// Palette exposes the colours used to paint Cells.
func (u *Universe) Palette() []color.RGBA {
	return universePalette
}

// Cells returns the display buffer for the active render mode, one entry per
// field cell of the top layer.
func (u *Universe) Cells() []uint8 {
	if u.displayDirty {
		u.rasterize()
		u.displayDirty = false
	}
	return u.display.Cells()
}

// RenderMode reports the active display mode.
func (u *Universe) RenderMode() RenderMode { return u.cfg.RenderMode }

func (u *Universe) rasterize() {
	cells := u.display.Cells()
	switch u.cfg.RenderMode {
	case RenderField, RenderCombined:
		layer := u.field.Layer(0)
		for i := range cells {
			if i < len(layer) {
				cells[i] = FieldIndex(layer[i])
			} else {
				cells[i] = backgroundIndex
			}
		}
	case RenderDensity:
		u.display.Clear()
		res := u.cfg.Resolution
		for _, p := range u.store.Live() {
			if p.Expired {
				continue
			}
			u.display.Saturate(int(p.X/res), int(p.Y/res), densityLevels-1)
		}
		for i := range cells {
			cells[i] += densityBase
		}
	default:
		for i := range cells {
			cells[i] = backgroundIndex
		}
	}
}

// FieldIndex maps a field value in [-1, 1] onto the field segment of the
// palette.
func FieldIndex(v float64) uint8 {
	t := (v + 1) / 2
	if t < 0 || t != t {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return uint8(math.Round(t * (fieldLevels - 1)))
}

func buildUniversePalette() []color.RGBA {
	palette := make([]color.RGBA, backgroundIndex+1)
	negative := color.NRGBA{R: 40, G: 90, B: 230, A: 255}
	zero := color.NRGBA{R: 8, G: 8, B: 14, A: 255}
	positive := color.NRGBA{R: 235, G: 80, B: 50, A: 255}
	for i := 0; i < fieldLevels; i++ {
		v := float64(i)/float64(fieldLevels-1)*2 - 1
		if v < 0 {
			palette[i] = toRGBA(blendColors(zero, negative, -v))
		} else {
			palette[i] = toRGBA(blendColors(zero, positive, v))
		}
	}
	cold := color.NRGBA{R: 6, G: 6, B: 12, A: 255}
	hot := color.NRGBA{R: 255, G: 230, B: 140, A: 255}
	for i := 0; i < densityLevels; i++ {
		w := math.Sqrt(float64(i) / float64(densityLevels-1))
		palette[densityBase+i] = toRGBA(blendColors(cold, hot, w))
	}
	palette[backgroundIndex] = color.RGBA{R: 4, G: 4, B: 10, A: 255}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*(1-overlayWeight) + float64(b)*overlayWeight))
	}
	return color.NRGBA{R: mix(base.R, overlay.R), G: mix(base.G, overlay.G), B: mix(base.B, overlay.B), A: 255}
}

// ChargeColor is the colour particle renderers use for a charge.
func ChargeColor(c particle.Charge) color.RGBA {
	switch c {
	case particle.Positive:
		return color.RGBA{R: 255, G: 120, B: 90, A: 255}
	case particle.Negative:
		return color.RGBA{R: 90, G: 150, B: 255, A: 255}
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}
