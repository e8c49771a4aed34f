package vars

import (
	"maps"
	"strings"
	"sync"
)

// Environment is a named set of substitution values.
type Environment struct {
	Name   string
	Values map[string]string
}

func (e Environment) Clone() Environment {
	return Environment{Name: e.Name, Values: maps.Clone(e.Values)}
}

// Provider exposes the environment to a Resolver under its own name.
func (e Environment) Provider() Provider {
	return NewMapProvider(e.Name, e.Values)
}

// Registry is the ordered list of loaded environments. Duplicate names are
// allowed; lookups return the first match.
type Registry struct {
	mu   sync.RWMutex
	envs []Environment
}

// Default is the process-wide registry used by the CLI.
var Default = &Registry{}

func (r *Registry) Append(env Environment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env.Clone())
}

func (r *Registry) All() []Environment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Environment, 0, len(r.envs))
	for _, env := range r.envs {
		out = append(out, env.Clone())
	}
	return out
}

func (r *Registry) ByName(name string) (Environment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, env := range r.envs {
		if strings.EqualFold(env.Name, name) {
			return env.Clone(), true
		}
	}
	return Environment{}, false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.envs)
}
