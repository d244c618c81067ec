package field

import "math"

// Analysis summarises the field in a single pass.
type Analysis struct {
	Mean             float64 `json:"mean"`
	PositiveFraction float64 `json:"positiveFraction"`
	NegativeFraction float64 `json:"negativeFraction"`
	NeutralFraction  float64 `json:"neutralFraction"`
	// Energy is the mean squared cell value.
	Energy float64 `json:"energy"`
	// GradientStrength is the mean absolute difference across +x, +y and +z
	// neighbour pairs.
	GradientStrength float64 `json:"gradientStrength"`
}

// Analyze computes the field summary. A degenerate field yields the zero
// Analysis.
func (f *Field) Analyze() Analysis {
	if f.Empty() {
		return Analysis{}
	}
	var (
		sum, sumSq float64
		pos, neg   int
		gradSum    float64
		gradPairs  int
		rows, cols = f.Rows, f.Cols
		depth      = f.Depth
		layerSize  = rows * cols
	)
	for z := 0; z < depth; z++ {
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				idx := z*layerSize + y*cols + x
				v := f.cells[idx]
				sum += v
				sumSq += v * v
				switch {
				case v > NeutralBand:
					pos++
				case v < -NeutralBand:
					neg++
				}
				if x+1 < cols {
					gradSum += math.Abs(v - f.cells[idx+1])
					gradPairs++
				}
				if y+1 < rows {
					gradSum += math.Abs(v - f.cells[idx+cols])
					gradPairs++
				}
				if z+1 < depth {
					gradSum += math.Abs(v - f.cells[idx+layerSize])
					gradPairs++
				}
			}
		}
	}
	n := float64(len(f.cells))
	a := Analysis{
		Mean:             sum / n,
		PositiveFraction: float64(pos) / n,
		NegativeFraction: float64(neg) / n,
		NeutralFraction:  float64(len(f.cells)-pos-neg) / n,
		Energy:           sumSq / n,
	}
	if gradPairs > 0 {
		a.GradientStrength = gradSum / float64(gradPairs)
	}
	return a
}
