// Package units provides a small dimensional-analysis engine for the
// property graph. Units are modeled as a vector of base-dimension
// exponents plus a scale factor relative to SI base units, which is
// enough to parse compound expressions, convert magnitudes between
// compatible units, and pick "compact" units for tolerant comparison.
package units

import (
	"errors"
	"fmt"
	"math"
)

// ErrIncompatibleUnits indicates a conversion between unit families
// with different dimensions.
var ErrIncompatibleUnits = errors.New("incompatible units")

// Dimension holds exponents for the seven SI base dimensions:
// length, mass, time, current, temperature, amount, luminosity.
type Dimension [7]int8

func (d Dimension) add(other Dimension) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] + other[i]
	}
	return out
}

func (d Dimension) scaleExp(n int8) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] * n
	}
	return out
}

// IsDimensionless reports whether all exponents are zero.
func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Unit is an immutable unit of measure.
type Unit struct {
	expr  string
	dim   Dimension
	scale float64
}

// Dimensionless is the unit of pure numbers.
var Dimensionless = Unit{expr: "dimensionless", scale: 1}

// String returns the textual form the unit was parsed from.
func (u Unit) String() string {
	if u.expr == "" {
		return "dimensionless"
	}
	return u.expr
}

// Dimension returns the unit's base-dimension exponents.
func (u Unit) Dimension() Dimension { return u.dim }

// Scale returns the factor converting one of this unit into SI base units.
func (u Unit) Scale() float64 {
	if u.scale == 0 {
		return 1
	}
	return u.scale
}

// Compatible reports whether two units share a dimension and can be
// converted into one another.
func (u Unit) Compatible(other Unit) bool {
	return u.dim == other.dim
}

// Equal reports whether two units have the same dimension and scale.
// Textual form is ignored, so "J" equals "N*m".
func (u Unit) Equal(other Unit) bool {
	return u.dim == other.dim && u.Scale() == other.Scale()
}

// Factor returns the multiplier that converts a magnitude in u into a
// magnitude in to. Fails with ErrIncompatibleUnits on dimension mismatch.
func (u Unit) Factor(to Unit) (float64, error) {
	if !u.Compatible(to) {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrIncompatibleUnits, u, to)
	}
	return u.Scale() / to.Scale(), nil
}

// Convert expresses a magnitude given in u in the unit to.
func Convert(magnitude float64, from, to Unit) (float64, error) {
	factor, err := from.Factor(to)
	if err != nil {
		return 0, err
	}
	return magnitude * factor, nil
}

// Compact returns the unit of the same dimension, rescaled by a power of
// 1000, in which magnitude lands closest to 1. A +1 nudge is applied so
// that values like 999.9999 roll over to the next prefix instead of
// staying just under it.
func (u Unit) Compact(magnitude float64) Unit {
	c := u.compactOnce(magnitude)
	scaled := magnitude * u.Scale() / c.Scale()
	return c.compactOnce(scaled + 1)
}

func (u Unit) compactOnce(magnitude float64) Unit {
	abs := math.Abs(magnitude)
	if abs == 0 || math.IsInf(abs, 0) || math.IsNaN(abs) {
		return u
	}
	// Engineering-notation exponent of the magnitude in this unit.
	exp := 3 * math.Floor(math.Log10(abs)/3)
	if exp == 0 {
		return u
	}
	factor := math.Pow(10, exp)
	out := Unit{
		expr:  fmt.Sprintf("%s*1e%d", u.String(), int(exp)),
		dim:   u.dim,
		scale: u.Scale() * factor,
	}
	return out
}

// Smaller returns the unit with the lesser scale, i.e. the one in which
// a fixed physical magnitude has the larger numeric value.
func Smaller(a, b Unit) Unit {
	if b.Scale() < a.Scale() {
		return b
	}
	return a
}
