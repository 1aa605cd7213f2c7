package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/scripter/pkg/runner"
)

// Registry manages the scripts a host can start by name.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]runner.Script
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scripts: make(map[string]runner.Script),
	}
}

// Register adds a script to the registry.
// If a script with the same name exists, it is overwritten.
func (r *Registry) Register(name string, script runner.Script) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[name] = script
}

// Lookup returns the script registered under name.
func (r *Registry) Lookup(name string) (runner.Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	script, ok := r.scripts[name]
	if !ok {
		return nil, fmt.Errorf("script not found: %s", name)
	}
	return script, nil
}

// Names lists the registered scripts in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
