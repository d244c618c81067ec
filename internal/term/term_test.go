package term

import (
	"bytes"
	"context"
	"image/color"
	"log"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"emergence/internal/core"
	"emergence/internal/monitor"
	"emergence/internal/particle"
	"emergence/internal/sims/universe"
)

type cell struct {
	r     rune
	style tcell.Style
}

type fakeCanvas struct {
	w, h  int
	cells map[[2]int]cell
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{w: w, h: h, cells: make(map[[2]int]cell)}
}

func (f *fakeCanvas) SetContent(x, y int, r rune, _ []rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		panic("write outside canvas")
	}
	f.cells[[2]int{x, y}] = cell{r: r, style: style}
}

func (f *fakeCanvas) Size() (int, int) { return f.w, f.h }

func (f *fakeCanvas) row(y int) string {
	var b strings.Builder
	for x := 0; x < f.w; x++ {
		c, ok := f.cells[[2]int{x, y}]
		if !ok {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.r)
	}
	return b.String()
}

func testView() universe.View {
	return universe.View{
		Cells:   []uint8{0, 1, 1, 0},
		Size:    core.Size{W: 2, H: 2},
		Palette: []color.RGBA{{0, 0, 0, 255}, {255, 0, 0, 255}},
		Bounds:  particle.Bounds{Width: 100, Height: 100, Depth: 10},
		Particles: []particle.Particle{
			{X: 0, Y: 0, Kind: particle.Quantum},
			{X: 99, Y: 99, Kind: particle.Adaptive, Expired: true},
		},
	}
}

func TestDrawHalfBlocks(t *testing.T) {
	c := newFakeCanvas(PanelWidth+4, 2)
	Draw(c, Frame{View: testView()})

	got := c.cells[[2]int{3, 0}]
	if got.r != halfBlock {
		t.Fatalf("rune = %q, want half block", got.r)
	}
	want := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(255, 0, 0)).
		Background(tcell.NewRGBColor(0, 0, 0))
	if got.style != want {
		t.Fatalf("style = %v, want red over black", got.style)
	}
}

func TestDrawParticlesSkipsExpired(t *testing.T) {
	c := newFakeCanvas(PanelWidth+4, 2)
	Draw(c, Frame{View: testView()})

	if r := c.cells[[2]int{0, 0}].r; r != '~' {
		t.Fatalf("glyph at origin = %q, want ~", r)
	}
	if r := c.cells[[2]int{3, 0}].r; r != halfBlock {
		t.Fatalf("expired particle drawn: %q", r)
	}
}

func TestDrawPanelAndNotice(t *testing.T) {
	c := newFakeCanvas(PanelWidth+10, 4)
	Draw(c, Frame{View: testView(), Lines: []string{"tick 5", "particles 2"}, Notice: "hello"})

	if row := c.row(0); !strings.Contains(row, "tick 5") {
		t.Fatalf("row 0 = %q", row)
	}
	if row := c.row(1); !strings.Contains(row, "particles 2") {
		t.Fatalf("row 1 = %q", row)
	}
	if row := c.row(3); !strings.HasPrefix(row, "hello") {
		t.Fatalf("notice row = %q", row)
	}
}

func TestDrawTinyCanvas(t *testing.T) {
	c := newFakeCanvas(3, 1)
	Draw(c, Frame{View: testView(), Lines: []string{"long line that does not fit"}, Notice: "x"})
	Draw(newFakeCanvas(0, 0), Frame{View: testView()})
}

func TestCellFor(t *testing.T) {
	b := particle.Bounds{Width: 200, Height: 100}
	cases := []struct {
		x, y   float64
		tx, ty int
	}{
		{0, 0, 0, 0},
		{199.9, 99.9, 19, 9},
		{200, 100, 19, 9},
		{-5, 50, 0, 5},
	}
	for _, tc := range cases {
		tx, ty := CellFor(tc.x, tc.y, b, 20, 10)
		if tx != tc.tx || ty != tc.ty {
			t.Fatalf("CellFor(%v,%v) = %d,%d want %d,%d", tc.x, tc.y, tx, ty, tc.tx, tc.ty)
		}
	}
}

func TestGlyphs(t *testing.T) {
	seen := map[rune]bool{}
	for k := particle.Kind(0); k < particle.KindCount; k++ {
		seen[Glyph(k)] = true
	}
	if len(seen) != particle.KindCount {
		t.Fatalf("glyphs not distinct: %v", seen)
	}
}

func newSessionRunner() *universe.Runner {
	cfg := universe.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Depth, cfg.Resolution = 60, 40, 1, 10
	return universe.NewRunner(universe.New(cfg, log.New(&bytes.Buffer{}, "", 0)), universe.Hooks{})
}

func TestSessionNotices(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 24)

	r := newSessionRunner()
	defer r.Close()
	s := NewSession(screen, r, log.New(&bytes.Buffer{}, "", 0))

	s.onAnomaly(monitor.Anomaly{Tick: 12, Description: "entropy spike", Severity: 0.5})
	if n := s.Notice(); !strings.Contains(n, "entropy spike") || !strings.Contains(n, "12") {
		t.Fatalf("notice = %q", n)
	}
	s.onInflation(monitor.InflationEvent{ID: 3, Tick: 40, Trigger: "energy"})
	if n := s.Notice(); !strings.Contains(n, "#3 started") {
		t.Fatalf("notice = %q", n)
	}
	s.onInflation(monitor.InflationEvent{ID: 3, Tick: 40, EndTick: 90, ParticlesBefore: 10, ParticlesAfter: 25})
	if n := s.Notice(); !strings.Contains(n, "10 -> 25") {
		t.Fatalf("notice = %q", n)
	}
	s.Render()
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 24)

	r := newSessionRunner()
	s := NewSession(screen, r, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if r.Start(context.Background()) {
		t.Fatalf("runner should be closed after Run")
	}
}
