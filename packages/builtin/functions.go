package builtin

import (
	"time"

	"github.com/google/uuid"
)

// Generator produces a fresh value each time a template expression
// names it.
type Generator func() any

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	r := &Registry{
		generators: make(map[string]Generator),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.generators["newUuid"] = genUUID
	r.generators["newDate"] = genDate
	r.generators["newTimestamp"] = genTimestamp
}

func (r *Registry) Register(name string, g Generator) {
	r.generators[name] = g
}

// Call runs the generator registered under name. The second return is
// false when no generator has that name, so the caller can fall back to
// variable lookup.
func (r *Registry) Call(name string) (any, bool) {
	g, ok := r.generators[name]
	if !ok {
		return nil, false
	}
	return g(), true
}

func genUUID() any {
	return uuid.New().String()
}

func genDate() any {
	return time.Now().UTC().Format(time.RFC3339)
}

func genTimestamp() any {
	return time.Now().Unix()
}
