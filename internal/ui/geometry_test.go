package ui

import (
	"testing"

	"emergence/internal/core"
)

func TestSampleSpacing(t *testing.T) {
	cases := []struct {
		size core.Size
		want int
	}{
		{core.Size{W: 10, H: 10}, 2},
		{core.Size{W: 80, H: 60}, 3},
		{core.Size{W: 2000, H: 2000}, 12},
	}
	for _, tc := range cases {
		if got := sampleSpacing(tc.size); got != tc.want {
			t.Fatalf("spacing(%+v) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestInterpolateColorClamps(t *testing.T) {
	if interpolateColor(-1) != interpolateColor(0) || interpolateColor(3) != interpolateColor(1) {
		t.Fatal("interpolation must clamp to [0, 1]")
	}
}
