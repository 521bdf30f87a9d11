package storage

// complexKey tags the JSON encoding of a complex scalar, which has no
// native JSON representation.
const complexKey = "@complex"

// encodeValue rewrites canonical magnitudes into JSON-safe shapes:
// complex scalars become {"@complex": [re, im]} maps.
func encodeValue(v any) any {
	switch x := v.(type) {
	case complex128:
		return map[string]any{complexKey: []any{real(x), imag(x)}}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodeValue(e)
		}
		return out
	}
	return v
}

// decodeValue reverses encodeValue. Plain JSON numbers stay float64.
func decodeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if parts, ok := x[complexKey].([]any); ok && len(parts) == 2 {
			return complex(asFloat(parts[0]), asFloat(parts[1]))
		}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = decodeValue(e)
		}
		return out
	}
	return v
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}
