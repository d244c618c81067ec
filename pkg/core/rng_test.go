package core

import "testing"

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d differs for equal seeds", i)
		}
	}
}

func TestUniformBounds(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 10000; i++ {
		v := r.Uniform(0.3)
		if v < -0.3 || v > 0.3 {
			t.Fatalf("uniform draw %f escaped [-0.3, 0.3]", v)
		}
	}
}

func TestChanceEdges(t *testing.T) {
	r := NewRNG(1)
	if r.Chance(0) {
		t.Fatal("zero probability must never fire")
	}
	if !r.Chance(1) {
		t.Fatal("unit probability must always fire")
	}
	if r.IntN(0) != 0 {
		t.Fatal("IntN(0) should return 0")
	}
}
