//go:build !ebiten

package ui

import (
	"emergence/internal/core"
	"emergence/internal/monitor"
)

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{ flash Flash }

// NewOverlay constructs a stub overlay.
func NewOverlay(core.Sim, float64) *Overlay { return &Overlay{} }

// SetCellPixels is a no-op in headless builds.
func (o *Overlay) SetCellPixels(float64) {}

// Notify records the anomaly without drawing it.
func (o *Overlay) Notify(a monitor.Anomaly) { o.flash.Trigger(a, FlashFrames) }

// SetStatus is a no-op in headless builds.
func (o *Overlay) SetStatus(string, bool) {}

// Update advances the fade.
func (o *Overlay) Update() { o.flash.Tick() }

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}
