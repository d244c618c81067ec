package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// Clamp limits coordinates to the grid bounds.
func (g *ByteGrid) Clamp(x, y int) (int, int) {
	if x < 0 {
		x = 0
	} else if x >= g.W {
		x = g.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.H {
		y = g.H - 1
	}
	return x, y
}

// Set writes v at (x, y) after clamping the coordinates.
func (g *ByteGrid) Set(x, y int, v uint8) {
	x, y = g.Clamp(x, y)
	g.data[g.Index(x, y)] = v
}

// Saturate increments the cell at (x, y) without wrapping past limit.
func (g *ByteGrid) Saturate(x, y int, limit uint8) {
	x, y = g.Clamp(x, y)
	idx := g.Index(x, y)
	if g.data[idx] < limit {
		g.data[idx]++
	}
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
