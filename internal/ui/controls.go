package ui

import (
	"math"
	"strconv"

	"emergence/internal/core"
)

const unknownValue = "--"

// control tracks one adjustable parameter as last read from the snapshot.
type control struct {
	spec  core.ParameterControl
	label string
	known bool

	i int
	f float64
	b bool
}

// adjustment is the value a control would move to.
type adjustment struct {
	i int
	f float64
	b bool
}

func newControls(specs []core.ParameterControl) []control {
	out := make([]control, len(specs))
	for i, spec := range specs {
		out[i] = control{spec: spec, label: unknownValue}
	}
	return out
}

// sync copies current values out of snapshot. Controls missing from the
// snapshot or with unparsable values become unknown.
func syncControls(cs []control, snapshot core.ParameterSnapshot) {
	for i := range cs {
		c := &cs[i]
		p, ok := snapshot.Lookup(c.spec.Key)
		if !ok || !c.parse(p.Value) {
			c.known = false
			c.label = unknownValue
		}
	}
}

func (c *control) parse(raw string) bool {
	switch c.spec.Type {
	case core.ParamTypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return false
		}
		c.i, c.f = v, float64(v)
	case core.ParamTypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		c.f = v
	case core.ParamTypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		c.b = v
	default:
		return false
	}
	c.known = true
	c.relabel()
	return true
}

func (c *control) relabel() {
	switch c.spec.Type {
	case core.ParamTypeInt:
		c.label = strconv.Itoa(c.i)
	case core.ParamTypeFloat:
		c.label = strconv.FormatFloat(c.f, 'f', floatPrecision(c.spec.Step), 64)
	case core.ParamTypeBool:
		c.label = onOff(c.b)
	}
}

// next reports where one press in direction dir would move the control.
// ok is false when the value is unknown or already at the bound.
func (c *control) next(dir int) (adjustment, bool) {
	if !c.known || dir == 0 {
		return adjustment{}, false
	}
	switch c.spec.Type {
	case core.ParamTypeInt:
		step := int(math.Round(c.spec.Step))
		if step <= 0 {
			step = 1
		}
		target := c.i + dir*step
		if c.spec.HasMin {
			target = max(target, int(math.Round(c.spec.Min)))
		}
		if c.spec.HasMax {
			target = min(target, int(math.Round(c.spec.Max)))
		}
		return adjustment{i: target}, target != c.i
	case core.ParamTypeFloat:
		step := c.spec.Step
		if step <= 0 {
			step = 0.05
		}
		target := c.f + float64(dir)*step
		if c.spec.HasMin {
			target = math.Max(target, c.spec.Min)
		}
		if c.spec.HasMax {
			target = math.Min(target, c.spec.Max)
		}
		return adjustment{f: target}, math.Abs(target-c.f) > 1e-9
	case core.ParamTypeBool:
		target := dir > 0
		return adjustment{b: target}, target != c.b
	}
	return adjustment{}, false
}

// setters groups the optional setter interfaces a simulation may implement.
type setters struct {
	ints   core.IntParameterSetter
	floats core.FloatParameterSetter
	bools  core.BoolParameterSetter
}

func setterFor(sim any) setters {
	var s setters
	s.ints, _ = sim.(core.IntParameterSetter)
	s.floats, _ = sim.(core.FloatParameterSetter)
	s.bools, _ = sim.(core.BoolParameterSetter)
	return s
}

func (s setters) supports(t core.ParamType) bool {
	switch t {
	case core.ParamTypeInt:
		return s.ints != nil
	case core.ParamTypeFloat:
		return s.floats != nil
	case core.ParamTypeBool:
		return s.bools != nil
	}
	return false
}

// adjust applies one press to c through the matching setter and reports
// whether the simulation accepted it.
func (s setters) adjust(c *control, dir int) bool {
	if !s.supports(c.spec.Type) {
		return false
	}
	a, ok := c.next(dir)
	if !ok {
		return false
	}
	key := c.spec.Key
	switch c.spec.Type {
	case core.ParamTypeInt:
		if !s.ints.SetIntParameter(key, a.i) {
			return false
		}
		c.i, c.f = a.i, float64(a.i)
	case core.ParamTypeFloat:
		if !s.floats.SetFloatParameter(key, a.f) {
			return false
		}
		c.f = a.f
	case core.ParamTypeBool:
		if !s.bools.SetBoolParameter(key, a.b) {
			return false
		}
		c.b = a.b
	}
	c.relabel()
	return true
}

func (s setters) canAdjust(c *control, dir int) bool {
	if !s.supports(c.spec.Type) {
		return false
	}
	_, ok := c.next(dir)
	return ok
}

func floatPrecision(step float64) int {
	switch {
	case step <= 0:
		return 2
	case step < 0.001:
		return 4
	case step < 0.01:
		return 3
	case step < 0.1:
		return 2
	}
	return 1
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// wrapIndex moves i by delta inside [0, n).
func wrapIndex(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}
