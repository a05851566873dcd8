package scope

import (
	"fmt"
	"sync"

	"building-cost/core/types"
)

// Generator produces items for subtypes without a declarative profile.
// ok is false when the generator does not cover the trade.
type Generator interface {
	Name() string
	Generate(t types.Trade, amount float64, ctx Context) (items []Item, ok bool)
}

// Registry holds the named legacy generators
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates an empty generator registry
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds a generator. Panics on an empty or duplicate name.
func (r *Registry) Register(g Generator) {
	if err := r.RegisterSafe(g); err != nil {
		panic(err.Error())
	}
}

// RegisterSafe adds a generator returning an error instead of panicking
func (r *Registry) RegisterSafe(g Generator) error {
	name := g.Name()
	if name == "" {
		return fmt.Errorf("generator has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("generator already registered: %s", name)
	}
	r.generators[name] = g
	return nil
}

// Get returns a generator by name
func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	return g, ok
}

// Names returns the registered generator names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	return names
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry of built-in generators
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(industrialFlex{})
		defaultRegistry.Register(coldStorage{})
	})
	return defaultRegistry
}
