// Package field owns the 3D scalar intent field: generation, fluctuation,
// sampling and whole-field analysis.
package field

import (
	"errors"
	"math"

	perlin "github.com/aquilax/go-perlin"

	"emergence/pkg/core"
)

const (
	// HeavyTailChance is the per-cell probability of an amplified fluctuation
	// when probabilistic intent is enabled.
	HeavyTailChance = 0.05
	// HeavyTailGain multiplies the perturbation of an amplified cell.
	HeavyTailGain = 3.0
	// NeutralBand is the half-width around zero counted as neutral by Analyze.
	NeutralBand = 0.1
)

var (
	// ErrDimensionMismatch reports a cell buffer that does not match the declared shape.
	ErrDimensionMismatch = errors.New("field dimensions do not match cell count")
	// ErrInvalidState reports a serialized field that cannot be trusted.
	ErrInvalidState = errors.New("invalid field state")
)

// Dimensions describes the continuous world the field covers.
type Dimensions struct {
	Width  float64
	Height float64
	Depth  int
}

// Field is a dense (depth, rows, cols) array of values clamped to [-1, 1].
type Field struct {
	Depth      int
	Rows       int
	Cols       int
	Resolution float64

	cells []float64
}

// New allocates a zero-valued field. Zero-sized dimensions produce a
// degenerate field that every operation tolerates.
func New(depth, rows, cols int, resolution float64) *Field {
	if depth < 0 {
		depth = 0
	}
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	if resolution <= 0 || math.IsNaN(resolution) {
		resolution = 1
	}
	return &Field{
		Depth:      depth,
		Rows:       rows,
		Cols:       cols,
		Resolution: resolution,
		cells:      make([]float64, depth*rows*cols),
	}
}

// Shape returns the grid shape for the given world dimensions.
func Shape(dims Dimensions, resolution float64) (depth, rows, cols int) {
	if resolution <= 0 {
		resolution = 1
	}
	depth = dims.Depth
	rows = int(math.Ceil(dims.Height / resolution))
	cols = int(math.Ceil(dims.Width / resolution))
	if depth < 0 {
		depth = 0
	}
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return depth, rows, cols
}

// Initialize allocates a field covering dims and fills every cell with an
// independent uniform sample in [-1, 1].
func Initialize(dims Dimensions, resolution float64, rng *core.RNG) *Field {
	depth, rows, cols := Shape(dims, resolution)
	f := New(depth, rows, cols, resolution)
	for i := range f.cells {
		f.cells[i] = rng.Uniform(1)
	}
	return f
}

// InitializeCoherent fills the field from 3D Perlin noise instead of white
// noise, producing spatially correlated intent regions. scale is the number of
// cells per noise period.
func InitializeCoherent(dims Dimensions, resolution float64, seed int64, scale float64) *Field {
	depth, rows, cols := Shape(dims, resolution)
	f := New(depth, rows, cols, resolution)
	if scale <= 0 {
		scale = 16
	}
	noise := perlin.NewPerlin(2, 2, 3, seed)
	for z := 0; z < depth; z++ {
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				// Perlin output sits roughly in [-0.7, 0.7]; stretch it to use the full range.
				v := noise.Noise3D(float64(x)/scale, float64(y)/scale, float64(z)/2) * 1.5
				f.cells[f.index(x, y, z)] = clamp(v)
			}
		}
	}
	return f
}

// Len returns the number of cells.
func (f *Field) Len() int { return len(f.cells) }

// Empty reports whether any dimension is zero.
func (f *Field) Empty() bool { return len(f.cells) == 0 }

// Dimensions reports the world extent covered by the grid.
func (f *Field) Dimensions() Dimensions {
	return Dimensions{
		Width:  float64(f.Cols) * f.Resolution,
		Height: float64(f.Rows) * f.Resolution,
		Depth:  f.Depth,
	}
}

// At returns the cell at grid coordinates, or 0 when out of range.
func (f *Field) At(x, y, z int) float64 {
	if x < 0 || y < 0 || z < 0 || x >= f.Cols || y >= f.Rows || z >= f.Depth {
		return 0
	}
	return f.cells[f.index(x, y, z)]
}

// Set writes a clamped value at grid coordinates. Out-of-range writes are ignored.
func (f *Field) Set(x, y, z int, v float64) {
	if x < 0 || y < 0 || z < 0 || x >= f.Cols || y >= f.Rows || z >= f.Depth {
		return
	}
	f.cells[f.index(x, y, z)] = clamp(v)
}

// Fill sets every cell to v (clamped).
func (f *Field) Fill(v float64) {
	v = clamp(v)
	for i := range f.cells {
		f.cells[i] = v
	}
}

// Cells returns a copy of the backing buffer.
func (f *Field) Cells() []float64 {
	return append([]float64(nil), f.cells...)
}

// Layer returns a copy of the z-th (rows x cols) slice.
func (f *Field) Layer(z int) []float64 {
	if z < 0 || z >= f.Depth {
		return nil
	}
	size := f.Rows * f.Cols
	start := z * size
	return append([]float64(nil), f.cells[start:start+size]...)
}

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	c.cells = append([]float64(nil), f.cells...)
	return &c
}

// Fluctuate perturbs every cell by a uniform draw in [-rate, rate]. With
// probabilistic enabled each cell independently has a HeavyTailChance of its
// perturbation being multiplied by HeavyTailGain. Results are clamped.
func (f *Field) Fluctuate(rate float64, probabilistic bool, rng *core.RNG) {
	if rate <= 0 || math.IsNaN(rate) {
		return
	}
	for i, v := range f.cells {
		delta := rng.Uniform(rate)
		if probabilistic && rng.Chance(HeavyTailChance) {
			delta *= HeavyTailGain
		}
		f.cells[i] = clamp(v + delta)
	}
}

// Amplify multiplies every cell by factor and clamps.
func (f *Field) Amplify(factor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	for i, v := range f.cells {
		f.cells[i] = clamp(v * factor)
	}
}

// Sample returns the nearest cell to continuous world coordinates. x and y are
// scaled by the resolution, z is a layer coordinate. Indices are clamped into
// range, never wrapped.
func (f *Field) Sample(x, y, z float64) float64 {
	if f.Empty() {
		return 0
	}
	ix := clampIndex(x/f.Resolution, f.Cols)
	iy := clampIndex(y/f.Resolution, f.Rows)
	iz := clampIndex(z, f.Depth)
	return f.cells[f.index(ix, iy, iz)]
}

// Gradient estimates the in-layer field gradient at world coordinates using
// central differences one cell apart.
func (f *Field) Gradient(x, y, z float64) (gx, gy float64) {
	if f.Empty() {
		return 0, 0
	}
	r := f.Resolution
	gx = (f.Sample(x+r, y, z) - f.Sample(x-r, y, z)) / 2
	gy = (f.Sample(x, y+r, z) - f.Sample(x, y-r, z)) / 2
	return gx, gy
}

func (f *Field) index(x, y, z int) int {
	return (z*f.Rows+y)*f.Cols + x
}

func clampIndex(v float64, n int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	i := int(v)
	if i >= n {
		return n - 1
	}
	return i
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
