package storage

import (
	"fmt"

	"propgraph/internal/quantity"
)

// ToQuantity rebuilds the live quantity a record mirrors. Provenance
// inputs that lost their values during serialization are resolved
// through lookup; if any remain unresolved the conversion fails with
// ErrMissingLookup.
func (sq *StorageQuantity) ToQuantity(f *quantity.Factory, lookup Lookup) (*quantity.Quantity, error) {
	prov, err := sq.Provenance.toProvenance(f, lookup)
	if err != nil {
		return nil, err
	}

	opts := []quantity.Option{
		quantity.WithInternalID(sq.InternalID),
	}
	if len(sq.Tags) > 0 {
		opts = append(opts, quantity.WithTags(sq.Tags...))
	}
	if prov != nil {
		opts = append(opts, quantity.WithProvenance(prov))
	}
	if sq.Units != "" {
		opts = append(opts, quantity.WithUnits(sq.Units))
	}
	if sq.Uncertainty != nil {
		opts = append(opts, quantity.WithUncertainty(quantity.ValueWithUnits{
			Value: decodeValue(sq.Uncertainty.Value),
			Units: sq.Uncertainty.Units,
		}))
	}

	var symbol any = sq.SymbolType.Name
	if sq.SymbolType.Spec != nil {
		symbol = *sq.SymbolType.Spec
	}
	return f.Create(symbol, decodeValue(sq.Value), opts...)
}

func (p *ProvenanceStore) toProvenance(f *quantity.Factory, lookup Lookup) (*quantity.Provenance, error) {
	if p == nil {
		return nil, nil
	}
	out := &quantity.Provenance{Model: p.Model, Source: p.Source}
	for _, in := range p.Inputs {
		q, err := in.resolve(f, lookup)
		if err != nil {
			return nil, err
		}
		out.Inputs = append(out.Inputs, q)
	}
	return out, nil
}

// resolve rebuilds a provenance input, pulling its stripped value from
// the lookup first when needed.
func (p *ProvenanceStoreQuantity) resolve(f *quantity.Factory, lookup Lookup) (*quantity.Quantity, error) {
	sq := p.StorageQuantity
	if !p.Resolved && sq.Value == nil {
		if lookup == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLookup, sq.InternalID)
		}
		entry, ok := lookup.Resolve(sq.InternalID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingLookup, sq.InternalID)
		}
		sq.Value = entry.Value
		sq.Units = entry.Units
		sq.Uncertainty = entry.Uncertainty
	}
	return sq.ToQuantity(f, lookup)
}
