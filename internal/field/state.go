package field

import (
	"fmt"
	"math"
)

// State is the serializable form of a field.
type State struct {
	Depth      int       `json:"depth"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	Resolution float64   `json:"resolution"`
	Cells      []float64 `json:"cells"`
}

// State returns a serializable copy of the field.
func (f *Field) State() State {
	return State{
		Depth:      f.Depth,
		Rows:       f.Rows,
		Cols:       f.Cols,
		Resolution: f.Resolution,
		Cells:      f.Cells(),
	}
}

// FromState rebuilds a field, rejecting shapes that disagree with the cell
// buffer and values outside [-1, 1].
func FromState(s State) (*Field, error) {
	if s.Depth < 0 || s.Rows < 0 || s.Cols < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%dx%d", ErrInvalidState, s.Depth, s.Rows, s.Cols)
	}
	if s.Resolution <= 0 || math.IsNaN(s.Resolution) || math.IsInf(s.Resolution, 0) {
		return nil, fmt.Errorf("%w: resolution %v", ErrInvalidState, s.Resolution)
	}
	if want := s.Depth * s.Rows * s.Cols; len(s.Cells) != want {
		return nil, fmt.Errorf("%w: %d cells for shape %dx%dx%d", ErrDimensionMismatch, len(s.Cells), s.Depth, s.Rows, s.Cols)
	}
	for i, v := range s.Cells {
		if math.IsNaN(v) || v < -1 || v > 1 {
			return nil, fmt.Errorf("%w: cell %d = %v", ErrInvalidState, i, v)
		}
	}
	f := New(s.Depth, s.Rows, s.Cols, s.Resolution)
	copy(f.cells, s.Cells)
	return f, nil
}
