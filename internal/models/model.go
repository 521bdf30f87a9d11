// Package models defines the model catalog: named transforms that the
// evaluation engine applies to material properties. A model declares
// which symbols it consumes and produces, the units its transform works
// in, and optional constraint symbols gating whether it applies at all.
package models

import (
	"fmt"
	"sync"
)

// Connection is one way to run a model: a set of input symbols that
// together produce a set of output symbols.
type Connection struct {
	Inputs  []string `yaml:"inputs" json:"inputs"`
	Outputs []string `yaml:"outputs" json:"outputs"`
}

// Model is the contract the evaluation engine works against. PlugIn
// receives magnitudes keyed by symbol name, already converted into the
// units the unit map declares, and returns output magnitudes the same
// way. Object symbols pass their payload through untouched.
type Model interface {
	Name() string
	Connections() []Connection
	// UnitMap gives the unit expression each numeric symbol is handled
	// in by PlugIn, for inputs and outputs alike.
	UnitMap() map[string]string
	// ConstraintSymbols lists extra symbols whose values gate the model
	// but are not handed to PlugIn.
	ConstraintSymbols() []string
	CheckConstraints(inputs map[string]any) bool
	PlugIn(inputs map[string]any) (map[string]any, error)
}

// Definition is a declarative Model implementation; the built-in
// catalog is expressed with these.
type Definition struct {
	ModelName   string
	Description string
	Conns       []Connection
	Units       map[string]string
	Constraints []string
	Check       func(inputs map[string]any) bool
	Run         func(inputs map[string]any) (map[string]any, error)
}

func (d *Definition) Name() string              { return d.ModelName }
func (d *Definition) Connections() []Connection { return d.Conns }
func (d *Definition) UnitMap() map[string]string {
	return d.Units
}
func (d *Definition) ConstraintSymbols() []string { return d.Constraints }

func (d *Definition) CheckConstraints(inputs map[string]any) bool {
	if d.Check == nil {
		return true
	}
	return d.Check(inputs)
}

func (d *Definition) PlugIn(inputs map[string]any) (map[string]any, error) {
	if d.Run == nil {
		return nil, fmt.Errorf("model %s has no transform", d.ModelName)
	}
	return d.Run(inputs)
}

// Catalog is a registry of models, iterated in registration order so
// evaluation stays deterministic.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]Model
	order  []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{models: make(map[string]Model)}
}

// Register adds a model; re-registering a name fails.
func (c *Catalog) Register(m Model) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.models[m.Name()]; exists {
		return fmt.Errorf("model %s already registered", m.Name())
	}
	c.models[m.Name()] = m
	c.order = append(c.order, m.Name())
	return nil
}

// Get returns a model by name.
func (c *Catalog) Get(name string) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[name]
	return m, ok
}

// All returns the models in registration order.
func (c *Catalog) All() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Model, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.models[name])
	}
	return out
}

// Names returns the registered model names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
