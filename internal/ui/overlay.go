//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"emergence/internal/core"
	"emergence/internal/monitor"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type gradientProvider interface {
	GradientAt(x, y float64) (float64, float64)
}

// Overlay draws transient notices and optional field visuals on top of the
// base simulation.
type Overlay struct {
	sim          core.Sim
	cellPixels   float64
	showGradient bool

	flash     Flash
	inflating bool
	mode      string

	pixel      *ebiten.Image
	samples    []gradientSample
	cacheW     int
	cacheH     int
	cacheScale float64
	pixelSpan  float64
}

type gradientSample struct {
	cx float64
	cy float64
	sx float64
	sy float64
}

// NewOverlay constructs an overlay for a display grid drawn at cellPixels
// screen pixels per cell.
func NewOverlay(sim core.Sim, cellPixels float64) *Overlay {
	o := &Overlay{sim: sim, cellPixels: cellPixels}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// SetCellPixels updates the display scale after a canvas change.
func (o *Overlay) SetCellPixels(v float64) { o.cellPixels = v }

// Notify starts an anomaly flash.
func (o *Overlay) Notify(a monitor.Anomaly) { o.flash.Trigger(a, FlashFrames) }

// SetStatus records the render mode label and inflation state.
func (o *Overlay) SetStatus(mode string, inflating bool) {
	o.mode = mode
	o.inflating = inflating
}

// Update handles overlay toggles and advances fades.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.showGradient = !o.showGradient
	}
	o.flash.Tick()
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := o.cellPixels
	if scale <= 0 {
		scale = 1
	}
	w, h := float64(size.W)*scale, float64(size.H)*scale

	if o.showGradient {
		if provider, ok := o.sim.(gradientProvider); ok {
			o.drawGradientField(screen, provider, size, scale)
		}
	}

	face := basicfont.Face7x13
	if o.inflating {
		o.drawRect(screen, 0, 0, w, 20, color.RGBA{R: 120, G: 40, B: 150, A: 170})
		text.Draw(screen, "INFLATION", face, 8, 14, color.RGBA{R: 255, G: 230, B: 255, A: 255})
	}
	if o.flash.Active() {
		a := o.flash.Alpha()
		border := color.RGBA{R: 255, G: 190, B: 60, A: uint8(math.Round(200 * a))}
		const t = 4.0
		o.drawRect(screen, 0, 0, w, t, border)
		o.drawRect(screen, 0, h-t, w, t, border)
		o.drawRect(screen, 0, 0, t, h, border)
		o.drawRect(screen, w-t, 0, t, h, border)
		text.Draw(screen, o.flash.Text, face, 8, int(h)-12, color.RGBA{R: 255, G: 220, B: 150, A: uint8(math.Round(255 * a))})
	}
	if o.mode != "" {
		label := "mode: " + o.mode
		bounds := text.BoundString(face, label)
		text.Draw(screen, label, face, int(w)-bounds.Dx()-8, 14, color.RGBA{R: 180, G: 180, B: 190, A: 220})
	}
}

func (o *Overlay) drawGradientField(screen *ebiten.Image, provider gradientProvider, size core.Size, scale float64) {
	if o.pixel == nil {
		return
	}
	if !o.ensureSamples(size, scale) {
		return
	}

	const (
		calmThreshold    = 0.02
		maxSpeedEstimate = 1.0
		headAngle        = math.Pi / 6
		calmDotScale     = 0.18
		minThickness     = 0.08
		maxThickness     = 0.16
	)

	baseSpan := o.pixelSpan
	if baseSpan <= 0 {
		baseSpan = scale * 4
	}
	minLength := baseSpan * 0.35
	maxLength := baseSpan * 0.7

	calmDotSize := baseSpan * calmDotScale
	if calmDotSize < 1 {
		calmDotSize = 1
	}

	for _, sample := range o.samples {
		vx, vy := provider.GradientAt(sample.cx, sample.cy)
		speed := math.Hypot(vx, vy)
		if speed < calmThreshold {
			o.drawPoint(screen, sample.sx, sample.sy, calmDotSize, color.RGBA{R: 90, G: 130, B: 170, A: 120})
			continue
		}

		nx := vx / speed
		ny := vy / speed
		normalized := clamp01(speed / maxSpeedEstimate)
		length := minLength + (maxLength-minLength)*math.Sqrt(normalized)
		headLength := math.Min(length*0.3, scale*0.8)
		tailLength := length * 0.4
		tipX := sample.sx + nx*(length-tailLength)
		tipY := sample.sy + ny*(length-tailLength)
		tailX := sample.sx - nx*tailLength
		tailY := sample.sy - ny*tailLength
		bodyEndX := tipX - nx*headLength
		bodyEndY := tipY - ny*headLength

		thickness := scale * (minThickness + (maxThickness-minThickness)*normalized)
		if thickness < 1 {
			thickness = 1
		}

		col := interpolateColor(normalized)
		o.drawLine(screen, tailX, tailY, bodyEndX, bodyEndY, thickness, col)

		angle := math.Atan2(ny, nx)
		leftX := tipX - math.Cos(angle+headAngle)*headLength
		leftY := tipY - math.Sin(angle+headAngle)*headLength
		rightX := tipX - math.Cos(angle-headAngle)*headLength
		rightY := tipY - math.Sin(angle-headAngle)*headLength
		o.drawLine(screen, tipX, tipY, leftX, leftY, thickness*0.85, col)
		o.drawLine(screen, tipX, tipY, rightX, rightY, thickness*0.85, col)
	}
}

func (o *Overlay) ensureSamples(size core.Size, scale float64) bool {
	if size.W <= 0 || size.H <= 0 {
		return false
	}
	if o.cacheW == size.W && o.cacheH == size.H && o.cacheScale == scale && len(o.samples) > 0 {
		return true
	}
	spacing := sampleSpacing(size)
	countX := (size.W + spacing - 1) / spacing
	countY := (size.H + spacing - 1) / spacing
	startX := (size.W - 1 - (countX-1)*spacing) / 2
	if startX < 0 {
		startX = 0
	}
	startY := (size.H - 1 - (countY-1)*spacing) / 2
	if startY < 0 {
		startY = 0
	}

	o.samples = o.samples[:0]
	for yi := 0; yi < countY; yi++ {
		cellY := min(startY+yi*spacing, size.H-1)
		cy := float64(cellY) + 0.5
		for xi := 0; xi < countX; xi++ {
			cellX := min(startX+xi*spacing, size.W-1)
			cx := float64(cellX) + 0.5
			o.samples = append(o.samples, gradientSample{cx: cx, cy: cy, sx: cx * scale, sy: cy * scale})
		}
	}

	o.cacheW = size.W
	o.cacheH = size.H
	o.cacheScale = scale
	o.pixelSpan = float64(spacing) * scale
	return len(o.samples) > 0
}

func (o *Overlay) drawRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if o.pixel == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if size <= 0 {
		return
	}
	o.drawRect(screen, x-size*0.5, y-size*0.5, size, size, col)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
