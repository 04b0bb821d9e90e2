package perfsync

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a custom helper callable from rules.
type Function func(args ...any) (any, error)

type registeredFunction struct {
	name string
	fn   Function
}

// FunctionRegistry holds the custom functions exposed to rules. Lookups
// ignore case; rules see each function under the name it was registered
// with.
type FunctionRegistry struct {
	mu    sync.RWMutex
	byKey map[string]registeredFunction
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{byKey: map[string]registeredFunction{}}
}

// Register adds fn under name. A name may only be registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fmt.Errorf("perfsync: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("perfsync: function %q is nil", name)
	}

	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byKey == nil {
		r.byKey = map[string]registeredFunction{}
	}
	if prev, taken := r.byKey[key]; taken {
		return fmt.Errorf("perfsync: function %q already registered as %q", name, prev.name)
	}
	r.byKey[key] = registeredFunction{name: name, fn: fn}
	return nil
}

// Clone copies the registry so later registrations do not leak into
// compiled evaluators.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &FunctionRegistry{byKey: make(map[string]registeredFunction, len(r.byKey))}
	for key, entry := range r.byKey {
		out.byKey[key] = entry
	}
	return out
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var entry registeredFunction
	if r != nil {
		r.mu.RLock()
		entry = r.byKey[strings.ToLower(strings.TrimSpace(name))]
		r.mu.RUnlock()
	}
	if entry.fn == nil {
		return nil, fmt.Errorf("perfsync: unknown function %q", name)
	}
	return entry.fn(args...)
}

// Names lists the registered names, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.byKey))
	for _, entry := range r.byKey {
		names = append(names, entry.name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
