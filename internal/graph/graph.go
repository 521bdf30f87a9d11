package graph

import (
	"fmt"
	"log"
	"sync"
	"time"

	"propgraph/internal/models"
	"propgraph/internal/quantity"
	"propgraph/internal/symbols"
)

// Graph ties a symbol registry and a model catalog to a shared pool of
// quantities contributed by its bound materials, and drives fixed-point
// evaluation over them.
type Graph struct {
	registry *symbols.Registry
	factory  *quantity.Factory
	catalog  *models.Catalog
	metrics  *Metrics

	mu        sync.RWMutex
	materials map[string]*Material
	// pool indexes every bound quantity by symbol then internal id.
	pool map[string]map[string]*quantity.Quantity
}

// Option customizes graph construction.
type Option func(*Graph)

// WithMetrics attaches engine metrics.
func WithMetrics(m *Metrics) Option {
	return func(g *Graph) { g.metrics = m }
}

// New creates a graph over a symbol registry and model catalog.
func New(reg *symbols.Registry, catalog *models.Catalog, opts ...Option) *Graph {
	g := &Graph{
		registry:  reg,
		factory:   quantity.NewFactory(reg),
		catalog:   catalog,
		materials: make(map[string]*Material),
		pool:      make(map[string]map[string]*quantity.Quantity),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Factory returns the quantity factory the graph derives with.
func (g *Graph) Factory() *quantity.Factory { return g.factory }

// AddMaterial binds a material to the graph, mirroring its quantities
// into the shared pool. A material can be bound to one graph at a time.
func (g *Graph) AddMaterial(m *Material) error {
	if m.graph == g {
		return nil
	}
	if m.graph != nil {
		return fmt.Errorf("material %s already bound to another graph", m.id)
	}
	g.mu.Lock()
	g.materials[m.id] = m
	g.mu.Unlock()
	m.graph = g
	for _, q := range m.Quantities() {
		g.poolAdd(q)
	}
	return nil
}

// RemoveMaterial unbinds a material, withdrawing its quantities from
// the pool. Other materials are untouched.
func (g *Graph) RemoveMaterial(m *Material) {
	if m.graph != g {
		return
	}
	for _, q := range m.Quantities() {
		g.poolRemove(q)
	}
	g.mu.Lock()
	delete(g.materials, m.id)
	g.mu.Unlock()
	m.graph = nil
}

func (g *Graph) poolAdd(q *quantity.Quantity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := q.SymbolName()
	if g.pool[name] == nil {
		g.pool[name] = make(map[string]*quantity.Quantity)
	}
	g.pool[name][q.InternalID()] = q
}

func (g *Graph) poolRemove(q *quantity.Quantity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	name := q.SymbolName()
	delete(g.pool[name], q.InternalID())
	if len(g.pool[name]) == 0 {
		delete(g.pool, name)
	}
}

// PoolSize returns the number of quantities currently in the pool.
func (g *Graph) PoolSize() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, byID := range g.pool {
		n += len(byID)
	}
	return n
}

// Evaluate runs the model catalog over a material's quantities to a
// fixed point: every applicable model is applied to every distinct
// combination of inputs, derived quantities join the material, and the
// sweep repeats until nothing new appears. Per-combination transform
// failures are logged and skipped; they never abort the evaluation.
// Evaluate is idempotent.
func (g *Graph) Evaluate(m *Material) error {
	if m.graph != nil && m.graph != g {
		return fmt.Errorf("material %s bound to another graph", m.id)
	}
	start := time.Now()
	defer func() { g.metrics.ObserveEvaluateLatency(time.Since(start)) }()

	for {
		derived := false
		for _, model := range g.catalog.All() {
			for _, conn := range model.Connections() {
				if g.evaluateConnection(m, model, conn) {
					derived = true
				}
			}
		}
		if !derived {
			return nil
		}
	}
}

// evaluateConnection applies one model connection to every distinct
// input combination, reporting whether anything new was derived.
func (g *Graph) evaluateConnection(m *Material, model models.Model, conn models.Connection) bool {
	// Constraint symbols join the combinations (and the provenance)
	// but are withheld from the transform.
	required := append([]string{}, conn.Inputs...)
	for _, name := range model.ConstraintSymbols() {
		if !contains(required, name) {
			required = append(required, name)
		}
	}

	lists := make([][]*quantity.Quantity, len(required))
	for i, name := range required {
		lists[i] = m.QuantitiesFor(name)
		if len(lists[i]) == 0 {
			return false
		}
	}

	derived := false
	for _, combo := range cartesian(lists) {
		bySymbol := make(map[string]*quantity.Quantity, len(combo))
		for i, q := range combo {
			bySymbol[required[i]] = q
		}

		if len(model.ConstraintSymbols()) > 0 {
			gate := make(map[string]any, len(model.ConstraintSymbols()))
			for _, name := range model.ConstraintSymbols() {
				gate[name] = bySymbol[name].Value()
			}
			if !model.CheckConstraints(gate) {
				continue
			}
		}

		inputs, err := g.plugInputs(model, conn.Inputs, bySymbol)
		if err != nil {
			log.Printf("Model %s: skipping combination: %v", model.Name(), err)
			g.metrics.IncrementFailure(model.Name())
			continue
		}

		outputs, err := model.PlugIn(inputs)
		if err != nil {
			log.Printf("Model %s: computation failed: %v", model.Name(), err)
			g.metrics.IncrementFailure(model.Name())
			continue
		}

		prov := quantity.NewProvenance(model.Name(), combo...)
		for _, outName := range conn.Outputs {
			raw, ok := outputs[outName]
			if !ok {
				continue
			}
			if g.addDerived(m, model, outName, raw, prov) {
				derived = true
			}
		}
	}
	return derived
}

// plugInputs converts the selected quantities into the units the model
// transform expects, keyed by symbol name. Object payloads pass through.
func (g *Graph) plugInputs(model models.Model, names []string, bySymbol map[string]*quantity.Quantity) (map[string]any, error) {
	inputs := make(map[string]any, len(names))
	for _, name := range names {
		q := bySymbol[name]
		if q.IsObject() {
			inputs[name] = q.Value()
			continue
		}
		if expr, ok := model.UnitMap()[name]; ok {
			converted, err := q.To(expr)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", name, err)
			}
			q = converted
		}
		inputs[name] = q.Magnitude()
	}
	return inputs, nil
}

// addDerived wraps one model output as a quantity and attaches it,
// discarding cyclic derivations and duplicates.
func (g *Graph) addDerived(m *Material, model models.Model, name string, raw any, prov *quantity.Provenance) bool {
	opts := []quantity.Option{quantity.WithProvenance(prov)}
	if expr, ok := model.UnitMap()[name]; ok {
		opts = append(opts, quantity.WithUnits(expr))
	}
	q, err := g.factory.Create(name, raw, opts...)
	if err != nil {
		log.Printf("Model %s: discarding output %s: %v", model.Name(), name, err)
		g.metrics.IncrementFailure(model.Name())
		return false
	}
	if q.IsCyclic() {
		return false
	}
	if m.hasEquivalent(q) {
		return false
	}
	m.Add(q)
	g.metrics.IncrementDerived(model.Name())
	return true
}

// Aggregate collapses every symbol holding more than one numeric
// quantity into a single mean-valued quantity whose uncertainty is the
// population standard deviation, removing the originals. Object-valued
// symbols are left untouched.
func (g *Graph) Aggregate(m *Material) error {
	for _, name := range m.Symbols() {
		qs := m.QuantitiesFor(name)
		if len(qs) < 2 {
			continue
		}
		numeric, object := 0, 0
		for _, q := range qs {
			if q.IsObject() {
				object++
			} else {
				numeric++
			}
		}
		if object > 0 {
			if numeric > 0 {
				return fmt.Errorf("symbol %s: %w", name, quantity.ErrMixedAggregation)
			}
			continue
		}
		agg, err := g.factory.FromMean(qs)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", name, err)
		}
		m.RemoveSymbol(name)
		m.Add(agg)
	}
	return nil
}

// cartesian enumerates every combination taking one quantity per list.
func cartesian(lists [][]*quantity.Quantity) [][]*quantity.Quantity {
	combos := [][]*quantity.Quantity{{}}
	for _, list := range lists {
		next := make([][]*quantity.Quantity, 0, len(combos)*len(list))
		for _, combo := range combos {
			for _, q := range list {
				extended := make([]*quantity.Quantity, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, q))
			}
		}
		combos = next
	}
	return combos
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
