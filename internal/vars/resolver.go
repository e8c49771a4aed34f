package vars

import (
	"crypto/rand"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Provider is one source of template values. Label names the source so
// "{{label.key}}" can address it directly.
type Provider interface {
	Resolve(name string) (string, bool)
	Label() string
}

// Resolver looks names up across providers in order.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// ForEnvironments resolves against envs in order, then the process
// environment.
func ForEnvironments(envs ...Environment) *Resolver {
	providers := make([]Provider, 0, len(envs)+1)
	for _, env := range envs {
		providers = append(providers, env.Provider())
	}
	return NewResolver(append(providers, EnvProvider{})...)
}

// Resolve returns the first provider value for name. When nothing matches and
// name starts with a provider label, the rest is looked up in that provider
// only.
func (r *Resolver) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, p := range r.providers {
		if v, ok := p.Resolve(name); ok {
			return v, true
		}
	}
	for _, p := range r.providers {
		if key, ok := labelled(p, name); ok {
			if v, ok := p.Resolve(key); ok {
				return v, true
			}
		}
	}
	return "", false
}

func labelled(p Provider, name string) (string, bool) {
	label := strings.TrimSpace(p.Label())
	if label == "" || len(name) <= len(label)+1 {
		return "", false
	}
	if !strings.EqualFold(name[:len(label)], label) || name[len(label)] != '.' {
		return "", false
	}
	key := strings.TrimSpace(name[len(label)+1:])
	return key, key != ""
}

// ExpandTemplates replaces every {{name}} placeholder. Names starting with $
// fall back to the built-in generators. Unresolved placeholders stay in the
// output and the first one is reported.
func (r *Resolver) ExpandTemplates(input string) (string, error) {
	if !strings.Contains(input, openDelim) {
		return input, nil
	}

	var (
		b        strings.Builder
		firstErr error
	)
	rest := input
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(openDelim):], closeDelim)
		if end < 0 {
			break
		}
		end += start + len(openDelim)

		b.WriteString(rest[:start])
		raw := rest[start : end+len(closeDelim)]
		name := strings.TrimSpace(rest[start+len(openDelim) : end])
		rest = rest[end+len(closeDelim):]

		if value, ok := r.lookup(name); ok {
			b.WriteString(value)
			continue
		}
		b.WriteString(raw)
		if name != "" && firstErr == nil {
			firstErr = errdef.New(errdef.CodeEnvironment, "undefined variable: %s", name)
		}
	}
	b.WriteString(rest)
	return b.String(), firstErr
}

func (r *Resolver) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if v, ok := r.Resolve(name); ok {
		return v, true
	}
	if gen, ok := generators[strings.ToLower(name)]; ok {
		return gen(), true
	}
	return "", false
}

var generators = map[string]func() string{
	"$uuid": uuid.NewString,
	"$guid": uuid.NewString,
	"$timestamp": func() string {
		return strconv.FormatInt(time.Now().Unix(), 10)
	},
	"$timestampiso8601": func() string {
		return time.Now().UTC().Format(time.RFC3339)
	},
	"$randomint": func() string {
		n, err := rand.Int(rand.Reader, big.NewInt(1<<62))
		if err != nil {
			return "0"
		}
		return n.String()
	},
}

// MapProvider serves a fixed map. Keys match case-insensitively.
type MapProvider struct {
	label  string
	values map[string]string
}

func NewMapProvider(label string, values map[string]string) *MapProvider {
	folded := make(map[string]string, len(values))
	for k, v := range values {
		folded[strings.ToLower(k)] = v
	}
	return &MapProvider{label: label, values: folded}
}

func (p *MapProvider) Resolve(name string) (string, bool) {
	v, ok := p.values[strings.ToLower(name)]
	return v, ok
}

func (p *MapProvider) Label() string { return p.label }

// EnvProvider reads the process environment, trying the name as written and
// then upper-cased.
type EnvProvider struct{}

func (EnvProvider) Resolve(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return os.LookupEnv(strings.ToUpper(name))
}

func (EnvProvider) Label() string { return "env" }
