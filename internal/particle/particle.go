// Package particle owns the particle population: creation from field samples,
// aging, motion, compaction and derived type projection.
package particle

import (
	"fmt"
	"strings"
)

// Charge is fixed when a particle is created.
type Charge uint8

const (
	Neutral Charge = iota
	Positive
	Negative
)

// ChargeCount is the number of distinct charges.
const ChargeCount = 3

var chargeNames = [ChargeCount]string{"neutral", "positive", "negative"}

func (c Charge) String() string {
	if int(c) < len(chargeNames) {
		return chargeNames[c]
	}
	return fmt.Sprintf("charge(%d)", uint8(c))
}

// Sign returns +1, -1 or 0.
func (c Charge) Sign() float64 {
	switch c {
	case Positive:
		return 1
	case Negative:
		return -1
	}
	return 0
}

// MarshalText encodes the charge by name.
func (c Charge) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a charge name.
func (c *Charge) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range chargeNames {
		if n == name {
			*c = Charge(i)
			return nil
		}
	}
	return fmt.Errorf("unknown charge %q", name)
}

// Kind is derived from a particle's scalars by Project; it is never set by callers.
type Kind uint8

const (
	Standard Kind = iota
	HighEnergy
	Quantum
	Composite
	Adaptive
)

// KindCount is the number of distinct kinds.
const KindCount = 5

var kindNames = [KindCount]string{"standard", "high-energy", "quantum", "composite", "adaptive"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", name)
}

// Particle is a fully populated value; every field has a defined default.
type Particle struct {
	ID uint64 `json:"id"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	VZ float64 `json:"vz"`

	Charge Charge `json:"charge"`

	Intent       float64 `json:"intent"`
	Energy       float64 `json:"energy"`
	Knowledge    float64 `json:"knowledge"`
	Complexity   float64 `json:"complexity"`
	Interactions int     `json:"interactionCount"`
	Age          float64 `json:"age"`

	Kind          Kind `json:"type"`
	PostInflation bool `json:"isPostInflation"`
	Expired       bool `json:"expired"`
}

// Bounds is the continuous world a particle may occupy.
type Bounds struct {
	Width  float64
	Height float64
	Depth  float64
}

// Contains reports whether the position lies inside the bounds.
func (b Bounds) Contains(x, y, z float64) bool {
	return x >= 0 && y >= 0 && z >= 0 && x <= b.Width && y <= b.Height && z <= b.Depth
}

// Clamp moves a position onto the nearest in-bounds point.
func (b Bounds) Clamp(p *Particle) {
	p.X = clampRange(p.X, 0, b.Width)
	p.Y = clampRange(p.Y, 0, b.Height)
	p.Z = clampRange(p.Z, 0, b.Depth)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
