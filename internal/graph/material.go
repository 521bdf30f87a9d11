// Package graph implements the evaluation engine: materials holding
// property quantities, and the fixed-point expansion that applies the
// model catalog until no new properties can be derived.
package graph

import (
	"sort"

	"github.com/google/uuid"

	"propgraph/internal/quantity"
)

// Material is a mutable collection of property quantities grouped by
// symbol. A material can be bound to at most one graph; while bound,
// every add and remove is mirrored into the graph's shared pool.
// Materials are not safe for concurrent mutation.
type Material struct {
	id         string
	quantities map[string][]*quantity.Quantity
	graph      *Graph
}

// NewMaterial creates an empty material with a fresh id.
func NewMaterial() *Material {
	return &Material{
		id:         uuid.New().String(),
		quantities: make(map[string][]*quantity.Quantity),
	}
}

// NewMaterialWithID creates an empty material with a caller-chosen id,
// used when reloading persisted materials.
func NewMaterialWithID(id string) *Material {
	m := NewMaterial()
	m.id = id
	return m
}

// ID returns the material's identity.
func (m *Material) ID() string { return m.id }

// Add attaches a quantity to the material.
func (m *Material) Add(q *quantity.Quantity) {
	name := q.SymbolName()
	m.quantities[name] = append(m.quantities[name], q)
	if m.graph != nil {
		m.graph.poolAdd(q)
	}
}

// Remove detaches a specific quantity, matched by internal id.
func (m *Material) Remove(q *quantity.Quantity) bool {
	name := q.SymbolName()
	list := m.quantities[name]
	for i, existing := range list {
		if existing.InternalID() == q.InternalID() {
			m.quantities[name] = append(list[:i:i], list[i+1:]...)
			if len(m.quantities[name]) == 0 {
				delete(m.quantities, name)
			}
			if m.graph != nil {
				m.graph.poolRemove(existing)
			}
			return true
		}
	}
	return false
}

// RemoveSymbol detaches every quantity of one symbol.
func (m *Material) RemoveSymbol(name string) {
	list := m.quantities[name]
	delete(m.quantities, name)
	if m.graph != nil {
		for _, q := range list {
			m.graph.poolRemove(q)
		}
	}
}

// QuantitiesFor returns the quantities held for one symbol, in
// insertion order.
func (m *Material) QuantitiesFor(name string) []*quantity.Quantity {
	list := m.quantities[name]
	if len(list) == 0 {
		return nil
	}
	out := make([]*quantity.Quantity, len(list))
	copy(out, list)
	return out
}

// Quantities returns all quantities, symbols sorted, insertion order
// within a symbol.
func (m *Material) Quantities() []*quantity.Quantity {
	var out []*quantity.Quantity
	for _, name := range m.Symbols() {
		out = append(out, m.quantities[name]...)
	}
	return out
}

// Symbols returns the symbol names present, sorted.
func (m *Material) Symbols() []string {
	names := make([]string, 0, len(m.quantities))
	for name := range m.quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the material holds any quantity for a symbol.
func (m *Material) Has(name string) bool {
	return len(m.quantities[name]) > 0
}

// hasEquivalent reports whether an equal quantity is already present.
func (m *Material) hasEquivalent(q *quantity.Quantity) bool {
	for _, existing := range m.quantities[q.SymbolName()] {
		if existing.Equal(q) {
			return true
		}
	}
	return false
}
