package particle

import "math"

// Grid buckets particles into square cells the size of the query radius so a
// pair search only inspects the 3x3 neighbourhood of each particle.
type Grid struct {
	cell    float64
	cols    int
	rows    int
	buckets [][]int
	cellOf  []int
}

// MaxGridSpan bounds the number of cells along either axis. Radii smaller
// than the span allows get a coarser cell; pair tests still use the radius.
const MaxGridSpan = 1024

// NewGrid allocates a grid covering bounds with the given cell size.
func NewGrid(bounds Bounds, cell float64) *Grid {
	if cell <= 0 || math.IsNaN(cell) {
		cell = 1
	}
	if floor := math.Max(bounds.Width, bounds.Height) / MaxGridSpan; cell < floor {
		cell = floor
	}
	cols := int(math.Ceil(bounds.Width/cell)) + 1
	rows := int(math.Ceil(bounds.Height/cell)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{cell: cell, cols: cols, rows: rows, buckets: make([][]int, cols*rows)}
}

func (g *Grid) coords(x, y float64) (int, int) {
	cx := int(x / g.cell)
	cy := int(y / g.cell)
	if cx < 0 || x != x {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 || y != y {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

// Build indexes the population. Expired particles are left out.
func (g *Grid) Build(ps []Particle) {
	for i := range g.buckets {
		g.buckets[i] = g.buckets[i][:0]
	}
	if cap(g.cellOf) < len(ps) {
		g.cellOf = make([]int, len(ps))
	}
	g.cellOf = g.cellOf[:len(ps)]
	for i, p := range ps {
		if p.Expired {
			g.cellOf[i] = -1
			continue
		}
		cx, cy := g.coords(p.X, p.Y)
		idx := cy*g.cols + cx
		g.cellOf[i] = idx
		g.buckets[idx] = append(g.buckets[idx], i)
	}
}

// ForEachPair calls fn once for every unordered pair (i < j) of indexed
// particles whose planar distance is at most radius. The visiting order only
// depends on particle order, so seeded runs stay reproducible.
func (g *Grid) ForEachPair(ps []Particle, radius float64, fn func(i, j int, dist2 float64)) {
	r2 := radius * radius
	for i := range ps {
		if i >= len(g.cellOf) || g.cellOf[i] < 0 {
			continue
		}
		cx := g.cellOf[i] % g.cols
		cy := g.cellOf[i] / g.cols
		for dy := -1; dy <= 1; dy++ {
			ny := cy + dy
			if ny < 0 || ny >= g.rows {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				nx := cx + dx
				if nx < 0 || nx >= g.cols {
					continue
				}
				for _, j := range g.buckets[ny*g.cols+nx] {
					if j <= i {
						continue
					}
					ddx := ps[i].X - ps[j].X
					ddy := ps[i].Y - ps[j].Y
					d2 := ddx*ddx + ddy*ddy
					if d2 <= r2 {
						fn(i, j, d2)
					}
				}
			}
		}
	}
}
