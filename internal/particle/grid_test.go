package particle

import "testing"

func TestForEachPairMatchesBruteForce(t *testing.T) {
	ps := []Particle{
		{ID: 1, X: 1, Y: 1},
		{ID: 2, X: 4, Y: 1},
		{ID: 3, X: 9, Y: 9},
		{ID: 4, X: 10, Y: 10},
		{ID: 5, X: 30, Y: 30},
		{ID: 6, X: 2, Y: 2, Expired: true},
	}
	const radius = 5.0
	g := NewGrid(Bounds{Width: 40, Height: 40}, radius)
	g.Build(ps)

	got := map[[2]int]bool{}
	g.ForEachPair(ps, radius, func(i, j int, _ float64) {
		key := [2]int{i, j}
		if got[key] {
			t.Fatalf("pair %v visited twice", key)
		}
		got[key] = true
	})

	want := map[[2]int]bool{}
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if ps[i].Expired || ps[j].Expired {
				continue
			}
			dx, dy := ps[i].X-ps[j].X, ps[i].Y-ps[j].Y
			if dx*dx+dy*dy <= radius*radius {
				want[[2]int{i, j}] = true
			}
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(got), len(want))
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("missing pair %v", k)
		}
	}
}

func TestTinyRadiusGridStaysBounded(t *testing.T) {
	const radius = 1e-6
	b := Bounds{Width: 800, Height: 600}
	g := NewGrid(b, radius)
	if g.cols > MaxGridSpan+1 || g.rows > MaxGridSpan+1 {
		t.Fatalf("grid %dx%d exceeds span %d", g.cols, g.rows, MaxGridSpan)
	}
	ps := []Particle{
		{ID: 1, X: 10, Y: 10},
		{ID: 2, X: 10 + radius/2, Y: 10},
		{ID: 3, X: 10.5, Y: 10},
		{ID: 4, X: 799, Y: 599},
	}
	g.Build(ps)
	var pairs [][2]int
	g.ForEachPair(ps, radius, func(i, j int, _ float64) {
		pairs = append(pairs, [2]int{i, j})
	})
	if len(pairs) != 1 || pairs[0] != [2]int{0, 1} {
		t.Fatalf("pairs %v, want only [0 1]", pairs)
	}
}
