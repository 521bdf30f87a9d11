package symbols

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownSymbol indicates a lookup for a name that was never registered.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ObjectFactory coerces arbitrary payloads into a registered object type.
// Factories are registered at startup, keyed by the object type name a
// symbol declares; there is no runtime type discovery.
type ObjectFactory struct {
	// Matches reports whether a payload already has the target type.
	Matches func(value any) bool
	// New builds the target type from a foreign payload.
	New func(value any) (any, error)
}

// Registry is the symbol lookup table. It is safe for concurrent reads.
type Registry struct {
	mu        sync.RWMutex
	symbols   map[string]Symbol
	defaults  map[string]any
	factories map[string]ObjectFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		symbols:   make(map[string]Symbol),
		defaults:  make(map[string]any),
		factories: make(map[string]ObjectFactory),
	}
}

// Register validates and adds a symbol. Re-registering a name fails.
func (r *Registry) Register(sym Symbol) error {
	if err := sym.normalize(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.symbols[sym.Name]; exists {
		return fmt.Errorf("symbol %s already registered", sym.Name)
	}
	r.symbols[sym.Name] = sym
	return nil
}

// RegisterDefault records the default magnitude used by
// Factory.FromDefault for a symbol.
func (r *Registry) RegisterDefault(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.symbols[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	r.defaults[name] = value
	return nil
}

// RegisterObjectType installs the coercion factory for an object type name.
func (r *Registry) RegisterObjectType(typeName string, factory ObjectFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = factory
}

// Lookup finds a symbol by name, failing with ErrUnknownSymbol.
func (r *Registry) Lookup(name string) (Symbol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sym, ok := r.symbols[name]
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
	}
	return sym, nil
}

// Has reports whether a name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.symbols[name]
	return ok
}

// Registered reports whether sym is registered under its name with
// identical metadata, which decides whether storage records may refer
// to it by name alone.
func (r *Registry) Registered(sym Symbol) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	existing, ok := r.symbols[sym.Name]
	return ok && existing.Equal(sym)
}

// DefaultValue returns the registered default magnitude for a symbol.
func (r *Registry) DefaultValue(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.defaults[name]
	return v, ok
}

// ObjectFactory returns the coercion factory for an object type name.
func (r *Registry) ObjectFactory(typeName string) (ObjectFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[typeName]
	return f, ok
}

// Names returns all registered symbol names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.symbols))
	for name := range r.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
