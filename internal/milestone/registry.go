package milestone

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps credit policy names to their implementations.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// DefaultRegistry returns a Registry holding the team, opponent and counter policies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TeamPolicy{})
	r.Register(OpponentPolicy{})
	r.Register(CounterPolicy{})
	return r
}

// Register adds a policy. Panics on duplicate name to surface misconfiguration early.
func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.policies[p.Name()]; exists {
		panic(fmt.Sprintf("milestone registry: duplicate policy %q", p.Name()))
	}
	r.policies[p.Name()] = p
}

// Get returns the policy registered under name.
func (r *Registry) Get(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("no credit policy registered as %q", name)
	}
	return p, nil
}

// Names returns all registered policy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
