package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Base-dimension indices.
const (
	dimLength = iota
	dimMass
	dimTime
	dimCurrent
	dimTemperature
	dimAmount
	dimLuminosity
)

func dim(exps ...int8) Dimension {
	var d Dimension
	copy(d[:], exps)
	return d
}

// namedUnits maps unit symbols to their dimension and SI scale.
// Masses are scaled to kilograms, lengths to meters, times to seconds.
var namedUnits = map[string]Unit{
	"dimensionless": {dim: Dimension{}, scale: 1},

	// Length
	"m":        {dim: dim(1), scale: 1},
	"km":       {dim: dim(1), scale: 1e3},
	"cm":       {dim: dim(1), scale: 1e-2},
	"mm":       {dim: dim(1), scale: 1e-3},
	"um":       {dim: dim(1), scale: 1e-6},
	"nm":       {dim: dim(1), scale: 1e-9},
	"angstrom": {dim: dim(1), scale: 1e-10},

	// Mass
	"kg": {dim: dim(0, 1), scale: 1},
	"g":  {dim: dim(0, 1), scale: 1e-3},
	"mg": {dim: dim(0, 1), scale: 1e-6},
	"ug": {dim: dim(0, 1), scale: 1e-9},
	"amu": {dim: dim(0, 1), scale: 1.66053906660e-27},

	// Time
	"s":   {dim: dim(0, 0, 1), scale: 1},
	"ms":  {dim: dim(0, 0, 1), scale: 1e-3},
	"us":  {dim: dim(0, 0, 1), scale: 1e-6},
	"ns":  {dim: dim(0, 0, 1), scale: 1e-9},
	"min": {dim: dim(0, 0, 1), scale: 60},
	"h":   {dim: dim(0, 0, 1), scale: 3600},

	// Current, temperature, amount, luminosity
	"A":   {dim: dim(0, 0, 0, 1), scale: 1},
	"K":   {dim: dim(0, 0, 0, 0, 1), scale: 1},
	"mol": {dim: dim(0, 0, 0, 0, 0, 1), scale: 1},
	"cd":  {dim: dim(0, 0, 0, 0, 0, 0, 1), scale: 1},

	// Derived
	"Hz":  {dim: dim(0, 0, -1), scale: 1},
	"N":   {dim: dim(1, 1, -2), scale: 1},
	"Pa":  {dim: dim(-1, 1, -2), scale: 1},
	"kPa": {dim: dim(-1, 1, -2), scale: 1e3},
	"MPa": {dim: dim(-1, 1, -2), scale: 1e6},
	"GPa": {dim: dim(-1, 1, -2), scale: 1e9},
	"J":   {dim: dim(2, 1, -2), scale: 1},
	"kJ":  {dim: dim(2, 1, -2), scale: 1e3},
	"eV":  {dim: dim(2, 1, -2), scale: 1.602176634e-19},
	"meV": {dim: dim(2, 1, -2), scale: 1.602176634e-22},
	"W":   {dim: dim(2, 1, -3), scale: 1},
	"C":   {dim: dim(0, 0, 1, 1), scale: 1},
	"V":   {dim: dim(2, 1, -3, -1), scale: 1},
	"ohm": {dim: dim(2, 1, -3, -2), scale: 1},
	"S":   {dim: dim(-2, -1, 3, 2), scale: 1},
}

// Parse interprets a unit expression such as "GPa", "g/cm^3", "W/m/K" or
// "1/angstrom^3". Terms are separated by '*' or '/' and may carry an
// integer exponent after '^'. The empty string and "dimensionless" both
// yield the dimensionless unit.
func Parse(expr string) (Unit, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || trimmed == "dimensionless" {
		return Dimensionless, nil
	}

	out := Unit{expr: trimmed, scale: 1}
	rest := trimmed
	divide := false
	for rest != "" {
		term := rest
		nextDivide := false
		if idx := strings.IndexAny(rest, "*/"); idx != -1 {
			if idx == 0 || idx == len(rest)-1 {
				return Unit{}, fmt.Errorf("malformed unit expression %q", expr)
			}
			term = rest[:idx]
			nextDivide = rest[idx] == '/'
			rest = rest[idx+1:]
		} else {
			rest = ""
		}
		u, err := parseTerm(term, divide)
		if err != nil {
			return Unit{}, err
		}
		out.dim = out.dim.add(u.dim)
		out.scale *= u.scale
		divide = nextDivide
	}
	return out, nil
}

// parseTerm handles a single "name" or "name^exp" term, inverting it
// when it follows a '/'.
func parseTerm(term string, invert bool) (Unit, error) {
	name := strings.TrimSpace(term)
	exp := int8(1)
	if caret := strings.Index(name, "^"); caret != -1 {
		n, err := strconv.Atoi(strings.TrimSpace(name[caret+1:]))
		if err != nil {
			return Unit{}, fmt.Errorf("malformed unit exponent in %q", term)
		}
		exp = int8(n)
		name = strings.TrimSpace(name[:caret])
	}
	if name == "1" {
		// Numeric placeholder, e.g. "1/K".
		return Unit{scale: 1}, nil
	}
	base, ok := namedUnits[name]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q", name)
	}
	if invert {
		exp = -exp
	}
	return Unit{
		dim:   base.dim.scaleExp(exp),
		scale: ipow(base.scale, exp),
	}, nil
}

func ipow(scale float64, exp int8) float64 {
	out := 1.0
	n := int(exp)
	if n < 0 {
		scale = 1 / scale
		n = -n
	}
	for i := 0; i < n; i++ {
		out *= scale
	}
	return out
}

// MustParse is Parse for trusted, compile-time-known expressions.
func MustParse(expr string) Unit {
	u, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}
