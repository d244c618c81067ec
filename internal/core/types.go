package core

// Size describes the dimensions of a simulation display grid.
type Size struct {
	W int
	H int
}

// Sim defines the minimal contract the presentation layer needs from a
// simulation: a display buffer it can paint and a way to advance it.
type Sim interface {
	Name() string
	Size() Size
	Step()
	Cells() []uint8
}
