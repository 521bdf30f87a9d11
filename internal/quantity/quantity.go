// Package quantity implements property values: unit-aware numeric
// quantities and opaque object quantities, each carrying tags, an
// uncertainty, and a provenance tree describing how the value was
// derived. Construction goes through Factory so symbol constraints and
// unit handling are applied uniformly.
package quantity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"propgraph/internal/symbols"
	"propgraph/internal/units"
)

// Class distinguishes the two quantity variants.
type Class string

const (
	ClassNumeric Class = "numeric"
	ClassObject  Class = "object"
)

// Quantity is an immutable property value bound to a symbol. Numeric
// quantities hold a canonical magnitude (int, float64, complex128, or
// nested []any of those) expressed in unit; object quantities hold an
// opaque payload instead.
type Quantity struct {
	symbol      symbols.Symbol
	class       Class
	value       any
	unit        units.Unit
	uncertainty any
	object      any
	tags        []string
	provenance  *Provenance
	internalID  string
}

// Symbol returns the symbol the quantity is bound to.
func (q *Quantity) Symbol() symbols.Symbol { return q.symbol }

// SymbolName returns the bound symbol's registry name.
func (q *Quantity) SymbolName() string { return q.symbol.Name }

// Class returns the quantity variant.
func (q *Quantity) Class() Class { return q.class }

// IsNumeric reports whether the quantity holds a unit-aware magnitude.
func (q *Quantity) IsNumeric() bool { return q.class == ClassNumeric }

// IsObject reports whether the quantity holds an opaque payload.
func (q *Quantity) IsObject() bool { return q.class == ClassObject }

// Magnitude returns a copy of the numeric value, expressed in Unit.
// Object quantities return nil.
func (q *Quantity) Magnitude() any { return copyValue(q.value) }

// Value returns the payload: the magnitude for numeric quantities, the
// object for object quantities.
func (q *Quantity) Value() any {
	if q.class == ClassObject {
		return q.object
	}
	return copyValue(q.value)
}

// Unit returns the unit the magnitude is expressed in.
func (q *Quantity) Unit() units.Unit { return q.unit }

// Uncertainty returns the uncertainty magnitude in the same unit as the
// value, or nil when none was recorded.
func (q *Quantity) Uncertainty() any { return copyValue(q.uncertainty) }

// HasUncertainty reports whether an uncertainty was recorded.
func (q *Quantity) HasUncertainty() bool { return q.uncertainty != nil }

// Tags returns a copy of the quantity's tags.
func (q *Quantity) Tags() []string {
	if len(q.tags) == 0 {
		return nil
	}
	out := make([]string, len(q.tags))
	copy(out, q.tags)
	return out
}

// HasTag reports whether the quantity carries the given tag.
func (q *Quantity) HasTag(tag string) bool {
	for _, t := range q.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Provenance returns the provenance tree. Callers must treat it as
// read-only.
func (q *Quantity) Provenance() *Provenance { return q.provenance }

// InternalID returns the quantity's storage identity.
func (q *Quantity) InternalID() string { return q.internalID }

// To re-expresses a numeric quantity in another unit. The converted
// quantity keeps the internal id, tags, and provenance of the original:
// it is the same measurement, not a new derivation.
func (q *Quantity) To(expr string) (*Quantity, error) {
	if q.class != ClassNumeric {
		return nil, fmt.Errorf("cannot convert object quantity %s", q.symbol.Name)
	}
	target, err := units.Parse(expr)
	if err != nil {
		return nil, err
	}
	value, err := convertValue(q.value, q.unit, target)
	if err != nil {
		return nil, err
	}
	out := *q
	out.value = value
	out.unit = target
	if q.uncertainty != nil {
		u, err := convertValue(q.uncertainty, q.unit, target)
		if err != nil {
			return nil, err
		}
		out.uncertainty = u
	}
	return &out, nil
}

// Fingerprint digests the quantity's identity: symbol, tags, and the
// provenance tree. Values are deliberately excluded so that storage
// records with stripped input values keep the same identity.
func (q *Quantity) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(q.symbol.Name))
	h.Write([]byte{0})
	h.Write([]byte(q.class))
	h.Write([]byte{0})
	for _, tag := range q.tags {
		h.Write([]byte(tag))
		h.Write([]byte{0})
	}
	h.Write([]byte(q.provenance.fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}

// Equal compares two quantities by symbol, value and uncertainty
// (tolerantly, for numeric magnitudes), tags, and provenance tree.
func (q *Quantity) Equal(other *Quantity) bool {
	if q == nil || other == nil {
		return q == other
	}
	if !q.symbol.Equal(other.symbol) || q.class != other.class {
		return false
	}
	if !equalTags(q.tags, other.tags) {
		return false
	}
	switch q.class {
	case ClassObject:
		if !objectsEqual(q.object, other.object) {
			return false
		}
	default:
		if !ValuesClose(q, other) {
			return false
		}
		if !uncertaintiesClose(q, other) {
			return false
		}
	}
	return q.provenance.Equal(other.provenance)
}

// HasEqValueTo reports whether two quantities hold equivalent values,
// ignoring tags and provenance.
func (q *Quantity) HasEqValueTo(other *Quantity) bool {
	if q == nil || other == nil || q.class != other.class {
		return false
	}
	if q.class == ClassObject {
		return objectsEqual(q.object, other.object)
	}
	return ValuesClose(q, other)
}

// IsCyclic reports whether the quantity's own symbol, or a model that
// produced it, reappears anywhere along a path of its derivation tree.
// Each branch is walked with its own copy of the visited set, so the
// same symbol on two independent branches is not a cycle.
func (q *Quantity) IsCyclic() bool {
	return q.cyclic(map[string]bool{})
}

func (q *Quantity) cyclic(visited map[string]bool) bool {
	if visited[q.symbol.Name] {
		return true
	}
	p := q.provenance
	if p == nil || len(p.Inputs) == 0 {
		return false
	}
	modelToken := "model:" + p.Model
	if p.Model != "" && visited[modelToken] {
		return true
	}
	for _, in := range p.Inputs {
		branch := make(map[string]bool, len(visited)+2)
		for k := range visited {
			branch[k] = true
		}
		branch[q.symbol.Name] = true
		if p.Model != "" {
			branch[modelToken] = true
		}
		if in.cyclic(branch) {
			return true
		}
	}
	return false
}

// ContainsNaN reports whether any scalar in a numeric value is NaN.
func (q *Quantity) ContainsNaN() bool {
	return q.class == ClassNumeric && containsNaN(q.value)
}

// ContainsComplexType reports whether any scalar is complex-typed.
func (q *Quantity) ContainsComplexType() bool {
	return q.class == ClassNumeric && containsComplex(q.value)
}

// ContainsImaginary reports whether any scalar carries a meaningful
// imaginary part.
func (q *Quantity) ContainsImaginary() bool {
	return q.class == ClassNumeric && containsImaginary(q.value)
}

// PrettyString renders the quantity for humans, e.g. "3.0000 eV ± 0.1".
func (q *Quantity) PrettyString(sigfigs int) string {
	if q.class == ClassObject {
		return fmt.Sprintf("%s: %v", q.symbol.Name, q.object)
	}
	var b strings.Builder
	b.WriteString(formatValue(q.value, sigfigs))
	if !q.unit.Dimension().IsDimensionless() || q.unit.Scale() != 1 {
		fmt.Fprintf(&b, " %s", q.unit)
	}
	if q.uncertainty != nil {
		fmt.Fprintf(&b, " ± %s", formatValue(q.uncertainty, sigfigs))
	}
	return b.String()
}

func formatValue(v any, sigfigs int) string {
	switch x := v.(type) {
	case int:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%.*g", sigfigs, x)
	case complex128:
		return fmt.Sprintf("%.*g", sigfigs, x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e, sigfigs)
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
