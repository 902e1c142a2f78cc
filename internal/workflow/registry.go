package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps task type names to strategies. It is built once in the
// process entry point from the full set of registered strategies and passed
// explicitly to whoever needs it; there is no ambient lookup at call time.
// Lookups are case-insensitive.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry from the given strategies. A duplicate type
// name (case-insensitive) panics: that is a programming error in the startup
// wiring, not a runtime condition.
func NewRegistry(strategies ...Strategy) *Registry {
	m := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		key := strings.ToLower(s.TaskType())
		if _, exists := m[key]; exists {
			panic(fmt.Sprintf("workflow: duplicate strategy for task type %q", s.TaskType()))
		}
		m[key] = s
	}
	return &Registry{strategies: m}
}

// Resolve returns the strategy registered for taskType. An unknown type is a
// validation failure, not a not-found: the type name is client input, not an
// entity reference.
func (r *Registry) Resolve(taskType string) (Strategy, error) {
	s, ok := r.strategies[strings.ToLower(taskType)]
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("unknown task type: '%s'", taskType))
	}
	return s, nil
}

// All returns the registered strategies sorted by type name for stable
// iteration order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TaskType() < out[j].TaskType()
	})
	return out
}
