package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Registry is the process-wide tool catalog. It is populated once during
// startup and read-only afterward, so lookups on the hot path take no lock
// beyond the map read — the mutex only serializes registration.
type Registry struct {
	mu    sync.Mutex
	tools map[string]*entry
}

type entry struct {
	tool   Tool
	schema *jsonschema.Schema // nil for tools without parameters
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*entry)}
}

// Register adds a tool to the catalog. A duplicate name fails fast: silent
// shadowing of one integration by another is a startup bug, not a runtime
// condition. The parameter schema is compiled here so dispatch never pays
// compilation cost and broken schemas surface immediately.
func (r *Registry) Register(t Tool) error {
	desc := t.Descriptor()
	if desc.Name == "" {
		return fmt.Errorf("registry: tool with empty name")
	}

	sch, err := CompileSchema(desc)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[desc.Name]; exists {
		return fmt.Errorf("registry: tool %q already registered", desc.Name)
	}
	r.tools[desc.Name] = &entry{tool: t, schema: sch}
	return nil
}

// MustRegister registers all given tools, panicking on the first error.
// For use in process initialization only.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Lookup returns the tool and its compiled parameter schema.
func (r *Registry) Lookup(name string) (Tool, *jsonschema.Schema, bool) {
	e, ok := r.tools[name]
	if !ok {
		return nil, nil, false
	}
	return e.tool, e.schema, true
}

// List returns all descriptors ordered by name — the capability advertisement
// consumed by the model-prompting layer.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.tools))
	for _, e := range r.tools {
		out = append(out, e.tool.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
