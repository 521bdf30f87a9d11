package quantity

import (
	"reflect"

	"propgraph/internal/units"
)

// ValuesClose reports whether two numeric quantities hold equivalent
// magnitudes, tolerantly and unit-aware. The comparison unit is chosen
// so that tolerance behaves sensibly across magnitudes:
//
//   - both values zero: close, whatever the units;
//   - one value zero: compare in the nonzero side's unit;
//   - otherwise: compact each side's unit to bring its magnitude near 1
//     and compare in the smaller of the two compacted units.
//
// Array-valued quantities are compared element-wise in the left side's
// unit. Incompatible units are never close.
func ValuesClose(a, b *Quantity) bool {
	if a == nil || b == nil || a.class != ClassNumeric || b.class != ClassNumeric {
		return false
	}
	if !a.unit.Compatible(b.unit) {
		return false
	}

	if !isScalar(a.value) || !isScalar(b.value) {
		bv, err := convertValue(b.value, b.unit, a.unit)
		if err != nil {
			return false
		}
		return valueAllClose(a.value, bv)
	}

	az, bz := scalarIsZero(a.value), scalarIsZero(b.value)
	var target units.Unit
	switch {
	case az && bz:
		return true
	case az:
		target = b.unit
	case bz:
		target = a.unit
	default:
		ac := a.unit.Compact(scalarFloat(a.value))
		bc := b.unit.Compact(scalarFloat(b.value))
		target = units.Smaller(ac, bc)
	}

	av, err := convertValue(a.value, a.unit, target)
	if err != nil {
		return false
	}
	bv, err := convertValue(b.value, b.unit, target)
	if err != nil {
		return false
	}
	return valueAllClose(av, bv)
}

// uncertaintiesClose compares recorded uncertainties tolerantly in the
// left side's unit. Both absent counts as close; one absent does not.
func uncertaintiesClose(a, b *Quantity) bool {
	if (a.uncertainty == nil) != (b.uncertainty == nil) {
		return false
	}
	if a.uncertainty == nil {
		return true
	}
	bu, err := convertValue(b.uncertainty, b.unit, a.unit)
	if err != nil {
		return false
	}
	return valueAllClose(a.uncertainty, bu)
}

// objectsEqual compares opaque payloads structurally.
func objectsEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
