package storage

// LookupEntry carries the stripped fields of a deduplicated provenance
// input: its value, the units it is stated in, and its uncertainty.
type LookupEntry struct {
	Value       any
	Units       string
	Uncertainty *Uncertainty
}

// Lookup resolves internal ids to the values stripped from stored
// provenance trees.
type Lookup interface {
	Resolve(internalID string) (LookupEntry, bool)
}

// LookupMap is an in-memory Lookup.
type LookupMap map[string]LookupEntry

func (m LookupMap) Resolve(internalID string) (LookupEntry, bool) {
	entry, ok := m[internalID]
	return entry, ok
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(internalID string) (LookupEntry, bool)

func (f LookupFunc) Resolve(internalID string) (LookupEntry, bool) {
	return f(internalID)
}
