//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"emergence/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	panelBG      = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	selectedBG   = color.RGBA{R: 30, G: 34, B: 46, A: 255}
	titleColor   = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor     = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	infoColor    = color.RGBA{R: 170, G: 190, B: 200, A: 255}
	buttonBG     = color.RGBA{R: 54, G: 56, B: 64, A: 255}
	buttonOffBG  = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	buttonFG     = color.RGBA{R: 230, G: 230, B: 240, A: 255}
	buttonOffFG  = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	selectMarker = color.RGBA{R: 120, G: 170, B: 255, A: 255}
)

// HUD renders the parameter panel and a stats readout to the right of the
// simulation view. Controls respond to mouse clicks on their buttons and to
// the arrow keys: up and down select, left and right adjust.
type HUD struct {
	sim      core.Sim
	setters  setters
	width    int
	title    string
	controls []control
	rows     []controlRow
	selected int
	info     []string

	panel   *ebiten.Image
	height  int
	offsetX int
	pixel   *ebiten.Image
}

type controlRow struct {
	top   int
	minus image.Rectangle
	plus  image.Rectangle
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	h := &HUD{sim: sim, width: max(width, 0), setters: setterFor(sim), title: hudTitle(sim)}
	if h.width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		h.controls = newControls(provider.ParameterControls())
		h.rows = layoutRows(len(h.controls), h.width)
	}
	return h
}

func hudTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return fmt.Sprintf("%s%s controls", strings.ToUpper(name[:1]), name[1:])
}

func layoutRows(n, width int) []controlRow {
	if n == 0 || width <= 0 {
		return nil
	}
	rows := make([]controlRow, n)
	for i := range rows {
		top := controlsTop + i*lineHeight
		y := top + (lineHeight-buttonSize)/2
		plus := image.Rect(width-panelPadding-buttonSize, y, width-panelPadding, y+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, y, plus.Min.X-buttonGap, y+buttonSize)
		rows[i] = controlRow{top: top, minus: minus, plus: plus}
	}
	return rows
}

// SetInfo replaces the read-only lines shown below the controls.
func (h *HUD) SetInfo(lines []string) {
	if h == nil {
		return
	}
	h.info = append(h.info[:0], lines...)
}

// Update re-reads parameter values and handles input. panelOffsetX is the
// screen x of the panel's left edge.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil || len(h.controls) == 0 {
		return
	}
	h.offsetX = panelOffsetX
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		syncControls(h.controls, provider.Parameters())
	}
	h.handleKeys()
	h.handleMouse()
}

func (h *HUD) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		h.selected = wrapIndex(h.selected, -1, len(h.controls))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		h.selected = wrapIndex(h.selected, 1, len(h.controls))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		h.setters.adjust(&h.controls[h.selected], -1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		h.setters.adjust(&h.controls[h.selected], 1)
	}
}

func (h *HUD) handleMouse() {
	if len(h.rows) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	pt := image.Pt(mx-h.offsetX, my)
	if pt.X < 0 {
		return
	}
	for i, row := range h.rows {
		dir := 0
		switch {
		case pt.In(row.minus):
			dir = -1
		case pt.In(row.plus):
			dir = 1
		default:
			continue
		}
		h.selected = i
		h.setters.adjust(&h.controls[i], dir)
		return
	}
}

// Draw paints the HUD panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.height != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.height = height
	}
	h.panel.Fill(panelBG)
	h.drawControls()
	h.drawInfo()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, headerY, titleColor)
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, dimColor)
		return
	}
	for i, row := range h.rows {
		c := &h.controls[i]
		if i == h.selected {
			h.fillRect(image.Rect(0, row.top, h.width, row.top+lineHeight), selectedBG)
			h.fillRect(image.Rect(0, row.top, 3, row.top+lineHeight), selectMarker)
		}
		baseline := row.top + labelBaseline
		text.Draw(h.panel, c.spec.Label, face, panelPadding, baseline, labelColor)
		valueColor := labelColor
		if !c.known {
			valueColor = dimColor
		}
		valueX := row.minus.Min.X - buttonGap - text.BoundString(face, c.label).Dx()
		text.Draw(h.panel, c.label, face, valueX, baseline, valueColor)
		h.drawButton(row.minus, "-", h.setters.canAdjust(c, -1))
		h.drawButton(row.plus, "+", h.setters.canAdjust(c, 1))
	}
}

func (h *HUD) fillRect(r image.Rectangle, clr color.RGBA) {
	if h.pixel == nil || r.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleWithColor(clr)
	h.panel.DrawImage(h.pixel, op)
}

func (h *HUD) drawButton(r image.Rectangle, label string, enabled bool) {
	bg, fg := buttonBG, buttonFG
	if !enabled {
		bg, fg = buttonOffBG, buttonOffFG
	}
	h.fillRect(r, bg)
	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	x := r.Min.X + (r.Dx()-b.Dx())/2
	y := r.Min.Y + (r.Dy()-b.Dy())/2 + b.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) drawInfo() {
	face := basicfont.Face7x13
	top := controlsTop + len(h.controls)*lineHeight + infoSpacing/2
	for i, line := range h.info {
		y := top + i*infoLineHeight
		if y > h.height-panelPadding {
			return
		}
		text.Draw(h.panel, line, face, panelPadding, y, infoColor)
	}
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 36
	infoLineHeight = 15
	controlsTop    = panelPadding + headerBaseline + 14
)
