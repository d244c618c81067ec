// Package term renders a universe runner into a terminal with tcell.
package term

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"emergence/internal/particle"
	"emergence/internal/sims/universe"
)

// Canvas is the subset of tcell.Screen the renderer writes to.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

// PanelWidth is the number of columns reserved for the stats panel.
const PanelWidth = 34

const halfBlock = '▀'

// Frame is everything one terminal redraw needs.
type Frame struct {
	View   universe.View
	Lines  []string
	Notice string
}

// Draw paints the world on the left, stats on the right and the latest
// notice on the bottom row. The world uses half-block cells so each
// terminal row shows two display rows.
func Draw(c Canvas, f Frame) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	mapW := w - PanelWidth
	if mapW < 1 {
		mapW = w
	}
	mapH := h - 1
	if mapH < 1 {
		mapH = h
	}
	blank(c, w, h)
	drawGrid(c, f.View, mapW, mapH)
	drawParticles(c, f.View, mapW, mapH)
	if mapW < w {
		drawPanel(c, f.Lines, mapW+1, w, h)
	}
	if f.Notice != "" && mapH < h {
		drawText(c, 0, h-1, w, f.Notice, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
}

func blank(c Canvas, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func drawGrid(c Canvas, v universe.View, mapW, mapH int) {
	gw, gh := v.Size.W, v.Size.H
	if gw <= 0 || gh <= 0 || len(v.Cells) != gw*gh || len(v.Palette) == 0 {
		return
	}
	for ty := 0; ty < mapH; ty++ {
		top := sampleRow(2*ty, 2*mapH, gh)
		bottom := sampleRow(2*ty+1, 2*mapH, gh)
		for tx := 0; tx < mapW; tx++ {
			gx := tx * gw / mapW
			fg := paletteColor(v, v.Cells[top*gw+gx])
			bg := paletteColor(v, v.Cells[bottom*gw+gx])
			c.SetContent(tx, ty, halfBlock, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func sampleRow(row, rows, gh int) int {
	r := row * gh / rows
	if r >= gh {
		r = gh - 1
	}
	return r
}

func paletteColor(v universe.View, idx uint8) tcell.Color {
	i := int(idx)
	if i >= len(v.Palette) {
		i = len(v.Palette) - 1
	}
	return rgb(v.Palette[i])
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Glyph is the rune drawn for a particle of the given kind.
func Glyph(k particle.Kind) rune {
	switch k {
	case particle.HighEnergy:
		return '*'
	case particle.Quantum:
		return '~'
	case particle.Composite:
		return 'o'
	case particle.Adaptive:
		return '@'
	}
	return '.'
}

// CellFor maps world coordinates onto a terminal cell of a mapW x mapH area.
func CellFor(x, y float64, b particle.Bounds, mapW, mapH int) (int, int) {
	if b.Width <= 0 || b.Height <= 0 {
		return 0, 0
	}
	tx := int(x / b.Width * float64(mapW))
	ty := int(y / b.Height * float64(mapH))
	return clampInt(tx, 0, mapW-1), clampInt(ty, 0, mapH-1)
}

func drawParticles(c Canvas, v universe.View, mapW, mapH int) {
	for _, p := range v.Particles {
		if p.Expired {
			continue
		}
		tx, ty := CellFor(p.X, p.Y, v.Bounds, mapW, mapH)
		style := tcell.StyleDefault.Foreground(rgb(universe.ChargeColor(p.Charge)))
		if p.PostInflation {
			style = style.Bold(true)
		}
		c.SetContent(tx, ty, Glyph(p.Kind), nil, style)
	}
}

func drawPanel(c Canvas, lines []string, x0, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorLightGray)
	for i, line := range lines {
		if i >= h-1 {
			return
		}
		drawText(c, x0, i, w, line, style)
	}
}

func drawText(c Canvas, x0, y, w int, s string, style tcell.Style) {
	x := x0
	for _, r := range s {
		if x >= w {
			return
		}
		c.SetContent(x, y, r, nil, style)
		x++
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
