// Package symbols defines the property registry: metadata describing
// every property the graph can hold, including canonical units,
// value-range constraints, and object-type coercion for non-numeric
// payloads. The registry is consumed read-only by the quantity factory
// and the evaluation engine.
package symbols

import (
	"fmt"
	"strconv"
	"strings"

	"propgraph/internal/units"
)

// Category distinguishes numeric symbols from opaque-object symbols.
type Category string

const (
	CategoryNumeric Category = "numeric"
	CategoryObject  Category = "object"
)

// Constraint is a predicate over a scalar magnitude, checked at
// quantity construction time.
type Constraint func(magnitude float64) bool

// Symbol describes a single property type.
type Symbol struct {
	// Name is the unique registry key, e.g. "bulk_modulus".
	Name string `yaml:"name" json:"name"`
	// Category selects the quantity variant created for this symbol.
	Category Category `yaml:"category,omitempty" json:"category,omitempty"`
	// Units is the canonical unit expression for numeric symbols.
	Units string `yaml:"units,omitempty" json:"units,omitempty"`
	// ConstraintExpr is a simple comparison such as "> 0" or ">= 0",
	// applied to scalar magnitudes at construction.
	ConstraintExpr string `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	// ObjectType names the payload type for object symbols. Coercion
	// is resolved through the registry's object factories, never by
	// runtime type lookup.
	ObjectType string `yaml:"object_type,omitempty" json:"object_type,omitempty"`

	constraint Constraint
}

// IsObject reports whether the symbol holds opaque object payloads.
func (s Symbol) IsObject() bool {
	return s.Category == CategoryObject
}

// Constraint returns the compiled constraint predicate, or nil.
func (s Symbol) Constraint() Constraint {
	return s.constraint
}

// CanonicalUnit parses the symbol's canonical units.
func (s Symbol) CanonicalUnit() (units.Unit, error) {
	return units.Parse(s.Units)
}

// Equal compares symbols by their declared metadata.
func (s Symbol) Equal(other Symbol) bool {
	return s.Name == other.Name &&
		s.Category == other.Category &&
		s.Units == other.Units &&
		s.ConstraintExpr == other.ConstraintExpr &&
		s.ObjectType == other.ObjectType
}

// Normalized returns a copy of the symbol with defaults filled and the
// constraint compiled, for symbols constructed outside a registry.
func (s Symbol) Normalized() (Symbol, error) {
	if err := s.normalize(); err != nil {
		return Symbol{}, err
	}
	return s, nil
}

// normalize fills defaults and compiles the constraint expression.
func (s *Symbol) normalize() error {
	if s.Name == "" {
		return fmt.Errorf("symbol requires a name")
	}
	if s.Category == "" {
		s.Category = CategoryNumeric
	}
	switch s.Category {
	case CategoryNumeric:
		if _, err := units.Parse(s.Units); err != nil {
			return fmt.Errorf("symbol %s: %w", s.Name, err)
		}
	case CategoryObject:
		if s.Units != "" {
			return fmt.Errorf("symbol %s: object symbols cannot declare units", s.Name)
		}
		if s.ConstraintExpr != "" {
			return fmt.Errorf("symbol %s: object symbols cannot declare constraints", s.Name)
		}
	default:
		return fmt.Errorf("symbol %s: unknown category %q", s.Name, s.Category)
	}
	if s.ConstraintExpr != "" {
		c, err := parseConstraint(s.ConstraintExpr)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", s.Name, err)
		}
		s.constraint = c
	}
	return nil
}

// parseConstraint compiles expressions of the form "<op> <number>",
// with op one of >, >=, <, <=, !=.
func parseConstraint(expr string) (Constraint, error) {
	fields := strings.Fields(expr)
	if len(fields) != 2 {
		return nil, fmt.Errorf("malformed constraint %q (want \"<op> <number>\")", expr)
	}
	bound, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, fmt.Errorf("malformed constraint bound %q", fields[1])
	}
	switch fields[0] {
	case ">":
		return func(v float64) bool { return v > bound }, nil
	case ">=":
		return func(v float64) bool { return v >= bound }, nil
	case "<":
		return func(v float64) bool { return v < bound }, nil
	case "<=":
		return func(v float64) bool { return v <= bound }, nil
	case "!=":
		return func(v float64) bool { return v != bound }, nil
	}
	return nil, fmt.Errorf("unknown constraint operator %q", fields[0])
}
