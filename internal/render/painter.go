//go:build ebiten

package render

import (
	"image/color"

	"emergence/internal/particle"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// GridPainter uploads palette-indexed display cells into a single image.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Resize reallocates the backing image when the grid dimensions change.
func (gp *GridPainter) Resize(w, h int) {
	if w == gp.w && h == gp.h {
		return
	}
	gp.img.Deallocate()
	*gp = *NewGridPainter(w, h)
}

// Blit uploads the provided cells into the painter image and draws it
// scaled by cellPixels.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, palette []color.RGBA, cellPixels float64) {
	if len(cells) != gp.w*gp.h {
		return
	}
	fillPaletteRGBA(gp.buf, cells, palette)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(cellPixels, cellPixels)
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }

// ParticleStyle carries the caps used to normalise size and colour.
type ParticleStyle struct {
	KnowledgeCap  float64
	ComplexityCap float64
	ChargeColor   func(particle.Charge) color.RGBA
}

// DrawParticles paints each particle as a filled circle at world coordinates
// multiplied by scale.
func DrawParticles(dst *ebiten.Image, ps []particle.Particle, scale float64, style ParticleStyle) {
	for _, p := range ps {
		if p.Expired {
			continue
		}
		base := color.RGBA{R: 200, G: 200, B: 200, A: 255}
		if style.ChargeColor != nil {
			base = style.ChargeColor(p.Charge)
		}
		col := ParticleColor(p, base, style.KnowledgeCap)
		r := ParticleRadius(p, style.ComplexityCap) * float32(scale)
		vector.DrawFilledCircle(dst, float32(p.X*scale), float32(p.Y*scale), r, col, true)
	}
}
