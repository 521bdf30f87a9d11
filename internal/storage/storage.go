// Package storage provides the serializable mirror of quantities. The
// mirror deduplicates provenance: input quantities inside a provenance
// tree serialize as identity-only references (symbol, tags, provenance,
// internal id) with their values stripped, to be resolved against a
// Lookup when the record is rehydrated.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"propgraph/internal/quantity"
	"propgraph/internal/symbols"
)

// ErrMissingLookup indicates a record whose provenance inputs were
// value-stripped and no lookup was supplied to resolve them.
var ErrMissingLookup = errors.New("unresolved provenance inputs require a lookup")

// SymbolRef names a symbol, carrying the full definition only when the
// symbol is not registered and the record must be self-describing.
type SymbolRef struct {
	Name string
	Spec *symbols.Symbol
}

// MarshalJSON emits a bare name for registered symbols and the inline
// definition otherwise.
func (r SymbolRef) MarshalJSON() ([]byte, error) {
	if r.Spec == nil {
		return json.Marshal(r.Name)
	}
	return json.Marshal(r.Spec)
}

// UnmarshalJSON accepts either form.
func (r *SymbolRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		r.Spec = nil
		return nil
	}
	var spec symbols.Symbol
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parse symbol reference: %w", err)
	}
	r.Name = spec.Name
	r.Spec = &spec
	return nil
}

// Uncertainty is a stored uncertainty magnitude with its units.
type Uncertainty struct {
	Value any    `json:"value"`
	Units string `json:"units,omitempty"`
}

// StorageQuantity is the flat, serializable form of a quantity.
type StorageQuantity struct {
	Class       string           `json:"class"`
	SymbolType  SymbolRef        `json:"symbol_type"`
	Value       any              `json:"value,omitempty"`
	Units       string           `json:"units,omitempty"`
	Uncertainty *Uncertainty     `json:"uncertainty,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Provenance  *ProvenanceStore `json:"provenance,omitempty"`
	InternalID  string           `json:"internal_id"`
}

// ProvenanceStore is the serializable provenance tree.
type ProvenanceStore struct {
	Model  string                     `json:"model,omitempty"`
	Source map[string]any             `json:"source,omitempty"`
	Inputs []*ProvenanceStoreQuantity `json:"inputs,omitempty"`
}

// ProvenanceStoreQuantity is a quantity appearing as a provenance
// input. In memory it may still hold its value (Resolved); on the wire
// it is identity-only.
type ProvenanceStoreQuantity struct {
	StorageQuantity
	Resolved bool `json:"-"`
}

// provenanceRef is the identity-only wire form of a provenance input.
type provenanceRef struct {
	Class      string           `json:"class"`
	SymbolType SymbolRef        `json:"symbol_type"`
	Tags       []string         `json:"tags,omitempty"`
	Provenance *ProvenanceStore `json:"provenance,omitempty"`
	InternalID string           `json:"internal_id"`
}

// MarshalJSON strips value, units, and uncertainty: the stored tree
// carries identity only, and values are deduplicated into the arena.
func (p *ProvenanceStoreQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(provenanceRef{
		Class:      p.Class,
		SymbolType: p.SymbolType,
		Tags:       p.Tags,
		Provenance: p.Provenance,
		InternalID: p.InternalID,
	})
}

// UnmarshalJSON reads either form; records without a value come back
// unresolved.
func (p *ProvenanceStoreQuantity) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.StorageQuantity); err != nil {
		return err
	}
	p.Resolved = p.Value != nil
	return nil
}

// FromQuantity converts a quantity into its storage form. Registered
// symbols are referenced by name; unregistered ones are inlined.
// Provenance inputs keep their values in memory (resolved) and lose
// them at serialization time.
func FromQuantity(q *quantity.Quantity, reg *symbols.Registry) *StorageQuantity {
	sq := &StorageQuantity{
		Class:      string(q.Class()),
		SymbolType: symbolRef(q.Symbol(), reg),
		Tags:       q.Tags(),
		InternalID: q.InternalID(),
	}
	if q.IsNumeric() {
		sq.Value = encodeValue(q.Magnitude())
		sq.Units = q.Unit().String()
		if q.HasUncertainty() {
			sq.Uncertainty = &Uncertainty{
				Value: encodeValue(q.Uncertainty()),
				Units: q.Unit().String(),
			}
		}
	} else {
		sq.Value = q.Value()
	}
	sq.Provenance = fromProvenance(q.Provenance(), reg)
	return sq
}

func symbolRef(sym symbols.Symbol, reg *symbols.Registry) SymbolRef {
	if reg != nil && reg.Registered(sym) {
		return SymbolRef{Name: sym.Name}
	}
	spec := sym
	return SymbolRef{Name: sym.Name, Spec: &spec}
}

func fromProvenance(p *quantity.Provenance, reg *symbols.Registry) *ProvenanceStore {
	if p == nil {
		return nil
	}
	out := &ProvenanceStore{Model: p.Model, Source: p.Source}
	for _, in := range p.Inputs {
		out.Inputs = append(out.Inputs, &ProvenanceStoreQuantity{
			StorageQuantity: *FromQuantity(in, reg),
			Resolved:        true,
		})
	}
	return out
}

// MissingIDs returns the internal ids of provenance inputs whose values
// are absent and must be resolved externally, sorted and deduplicated.
func (sq *StorageQuantity) MissingIDs() []string {
	seen := map[string]bool{}
	sq.collectMissing(seen)
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (sq *StorageQuantity) collectMissing(seen map[string]bool) {
	if sq.Provenance == nil {
		return
	}
	for _, in := range sq.Provenance.Inputs {
		if !in.Resolved {
			seen[in.InternalID] = true
		}
		in.collectMissing(seen)
	}
}

// Equal compares storage records by identity: internal id plus the
// provenance tree's model names and input ids. Values do not
// participate, matching the deduplicated wire form.
func (sq *StorageQuantity) Equal(other *StorageQuantity) bool {
	if sq == nil || other == nil {
		return sq == other
	}
	if sq.InternalID != other.InternalID {
		return false
	}
	return provenanceIDsEqual(sq.Provenance, other.Provenance)
}

func provenanceIDsEqual(a, b *ProvenanceStore) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	if a.Model != b.Model || len(a.Inputs) != len(b.Inputs) {
		return false
	}
	// Order-insensitive multiset match; each b input pairs at most once.
	used := make([]bool, len(b.Inputs))
	for _, in := range a.Inputs {
		match := false
		for i, other := range b.Inputs {
			if used[i] {
				continue
			}
			if in.InternalID == other.InternalID &&
				provenanceIDsEqual(in.Provenance, other.Provenance) {
				used[i] = true
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
