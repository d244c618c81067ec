//go:build ebiten

package app

import (
	"context"
	"log"
	"sync"
	"time"

	"emergence/internal/monitor"
	"emergence/internal/particle"
	"emergence/internal/render"
	"emergence/internal/sims/universe"
	"emergence/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a universe runner to the ebiten.Game interface. The runner's
// own frame loop steps the simulation; the game only renders copies and
// forwards input.
type Game struct {
	ctx     context.Context
	runner  *universe.Runner
	logger  *log.Logger
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	style   render.ParticleStyle

	scale     float64
	hudWidth  int
	resizable bool
	outerW    int
	outerH    int

	mu        sync.Mutex
	stats     universe.Stats
	anomalies []monitor.Anomaly
}

// New constructs a Game for the provided runner.
func New(ctx context.Context, runner *universe.Runner, cfg *Config, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	size := runner.Size()
	caps := particle.DefaultParams()
	g := &Game{
		ctx:       ctx,
		runner:    runner,
		logger:    logger,
		painter:   render.NewGridPainter(size.W, size.H),
		hud:       ui.NewHUD(runner, cfg.HUDWidth),
		overlay:   ui.NewOverlay(runner, runner.Config().Resolution*scale),
		scale:     scale,
		hudWidth:  cfg.HUDWidth,
		resizable: cfg.Resizable,
		style: render.ParticleStyle{
			KnowledgeCap:  caps.KnowledgeCap,
			ComplexityCap: caps.ComplexityCap,
			ChargeColor:   universe.ChargeColor,
		},
	}
	g.stats = runner.Stats()
	runner.SetHooks(universe.Hooks{
		OnStats:   g.onStats,
		OnAnomaly: g.onAnomaly,
		OnError:   func(err error) { g.logger.Printf("runner: %v", err) },
	})
	return g
}

func (g *Game) onStats(s universe.Stats) {
	g.mu.Lock()
	g.stats = s
	g.mu.Unlock()
}

func (g *Game) onAnomaly(a monitor.Anomaly) {
	g.mu.Lock()
	g.anomalies = append(g.anomalies, a)
	g.mu.Unlock()
}

// Update handles per-frame input and pulls hook output into the UI.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.runner.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if !g.runner.Stop() {
			g.runner.Start(g.ctx)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && !g.runner.Running() {
		g.runner.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.runner.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.runner.Reinitialize(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.runner.CycleRenderMode()
	}
	g.applyCanvas()

	g.mu.Lock()
	pending := g.anomalies
	g.anomalies = nil
	stats := g.stats
	g.mu.Unlock()
	for _, a := range pending {
		g.overlay.Notify(a)
	}
	stats.Running = g.runner.Running()
	g.hud.SetInfo(stats.Lines())
	g.overlay.SetStatus(string(stats.RenderMode), stats.InflationActive)
	g.overlay.Update()
	g.hud.Update(g.worldWidth())
	return nil
}

// applyCanvas reshapes the world to the window once the user resizes it.
func (g *Game) applyCanvas() {
	if !g.resizable || g.outerW <= 0 || g.outerH <= 0 {
		return
	}
	w := int(float64(g.outerW-g.hudWidth) / g.scale)
	h := int(float64(g.outerH) / g.scale)
	if g.runner.CanvasReady(w, h) {
		size := g.runner.Size()
		g.painter.Resize(size.W, size.H)
	}
}

func (g *Game) worldWidth() int {
	return int(g.runner.Config().Width * g.scale)
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	view := g.runner.View()
	if w, h := g.painter.Size(); w != view.Size.W || h != view.Size.H {
		g.painter.Resize(view.Size.W, view.Size.H)
	}
	cellPixels := g.runner.Config().Resolution * g.scale
	g.painter.Blit(screen, view.Cells, view.Palette, cellPixels)
	if len(view.Particles) > 0 {
		render.DrawParticles(screen, view.Particles, g.scale, g.style)
	}
	g.overlay.SetCellPixels(cellPixels)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.worldWidth(), int(view.Bounds.Height*g.scale))
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.resizable {
		g.outerW, g.outerH = outsideWidth, outsideHeight
		return outsideWidth, outsideHeight
	}
	cfg := g.runner.Config()
	return int(cfg.Width*g.scale) + g.hudWidth, int(cfg.Height * g.scale)
}
