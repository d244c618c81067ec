package core

import "testing"

func TestByteGridSaturateClamps(t *testing.T) {
	g := NewByteGrid(3, 2)
	for i := 0; i < 5; i++ {
		g.Saturate(10, -4, 3)
	}
	if got := g.Cells()[g.Index(2, 0)]; got != 3 {
		t.Fatalf("corner cell = %d, want saturated at 3", got)
	}
	g.Set(-1, 9, 7)
	if got := g.Cells()[g.Index(0, 1)]; got != 7 {
		t.Fatalf("clamped set = %d, want 7", got)
	}
	g.Clear()
	for i, v := range g.Cells() {
		if v != 0 {
			t.Fatalf("cell %d = %d after Clear", i, v)
		}
	}
}

func TestNewByteGridMinimumSize(t *testing.T) {
	g := NewByteGrid(0, -3)
	if g.W != 1 || g.H != 1 || len(g.Cells()) != 1 {
		t.Fatalf("grid = %dx%d (%d cells), want 1x1", g.W, g.H, len(g.Cells()))
	}
}
