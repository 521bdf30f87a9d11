package quantity

import (
	"fmt"
	"math"
	"math/cmplx"
	"reflect"

	"propgraph/internal/units"
)

// Tolerances for value closeness checks.
const (
	closeRtol = 1e-5
	closeAtol = 1e-8
)

// normalizeValue coerces a payload into the canonical numeric shapes:
// int, float64, complex128, or arbitrarily nested []any of those.
// Booleans are rejected so truth values cannot masquerade as magnitudes.
func normalizeValue(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidValue)
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case float64:
		return x, nil
	case complex128:
		return x, nil
	case bool:
		return nil, fmt.Errorf("%w: booleans are not magnitudes", ErrInvalidValue)
	case complex64:
		return complex128(x), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
}

// isScalar reports whether a canonical value is a single number.
func isScalar(v any) bool {
	switch v.(type) {
	case int, float64, complex128:
		return true
	}
	return false
}

// copyValue deep-copies a canonical value so callers cannot mutate
// quantity internals through returned slices.
func copyValue(v any) any {
	elems, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = copyValue(e)
	}
	return out
}

// scaleValue multiplies every scalar in a canonical value by factor.
// Integer payloads become floats unless the factor is exactly 1.
func scaleValue(v any, factor float64) any {
	switch x := v.(type) {
	case int:
		if factor == 1 {
			return x
		}
		return float64(x) * factor
	case float64:
		return x * factor
	case complex128:
		return x * complex(factor, 0)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = scaleValue(e, factor)
		}
		return out
	}
	return v
}

// convertValue re-expresses a canonical value given in from in the unit to.
func convertValue(v any, from, to units.Unit) (any, error) {
	factor, err := from.Factor(to)
	if err != nil {
		return nil, err
	}
	return scaleValue(v, factor), nil
}

// forEachScalar walks a canonical value calling fn on every real scalar,
// stopping early when fn returns false. Complex scalars are skipped.
func forEachScalar(v any, fn func(float64) bool) bool {
	switch x := v.(type) {
	case int:
		return fn(float64(x))
	case float64:
		return fn(x)
	case []any:
		for _, e := range x {
			if !forEachScalar(e, fn) {
				return false
			}
		}
	}
	return true
}

// scalarFloat reduces a canonical scalar to a real magnitude; complex
// scalars map to their modulus.
func scalarFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case float64:
		return x
	case complex128:
		return cmplx.Abs(x)
	}
	return math.NaN()
}

// scalarIsZero reports whether a canonical scalar is exactly zero.
func scalarIsZero(v any) bool {
	switch x := v.(type) {
	case int:
		return x == 0
	case float64:
		return x == 0
	case complex128:
		return x == 0
	}
	return false
}

// valueAllClose compares two canonical values element-wise with relative
// tolerance closeRtol and absolute tolerance closeAtol, mirroring the
// usual |a-b| <= atol + rtol*|b| rule.
func valueAllClose(a, b any) bool {
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok != bok {
		return false
	}
	if aok {
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valueAllClose(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	ac, aComplex := a.(complex128)
	bc, bComplex := b.(complex128)
	if aComplex || bComplex {
		if !aComplex {
			ac = complex(scalarFloat(a), 0)
		}
		if !bComplex {
			bc = complex(scalarFloat(b), 0)
		}
		return cmplx.Abs(ac-bc) <= closeAtol+closeRtol*cmplx.Abs(bc)
	}
	af, bf := scalarFloat(a), scalarFloat(b)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return false
	}
	return math.Abs(af-bf) <= closeAtol+closeRtol*math.Abs(bf)
}

// containsNaN reports whether any scalar in the value is NaN.
func containsNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case complex128:
		return math.IsNaN(real(x)) || math.IsNaN(imag(x))
	case []any:
		for _, e := range x {
			if containsNaN(e) {
				return true
			}
		}
	}
	return false
}

// containsComplex reports whether any scalar in the value is complex-typed,
// regardless of its imaginary part.
func containsComplex(v any) bool {
	switch x := v.(type) {
	case complex128:
		return true
	case []any:
		for _, e := range x {
			if containsComplex(e) {
				return true
			}
		}
	}
	return false
}

// containsImaginary reports whether any scalar carries a non-negligible
// imaginary part.
func containsImaginary(v any) bool {
	switch x := v.(type) {
	case complex128:
		return math.Abs(imag(x)) > closeAtol
	case []any:
		for _, e := range x {
			if containsImaginary(e) {
				return true
			}
		}
	}
	return false
}
