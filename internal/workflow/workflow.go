package workflow

import (
	"fmt"
	"sort"
	"sync"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

// StepSpec declares one workflow step as data. Args values may be literals or
// binding references:
//
//	"$input.<key>"          — a key from the workflow's initial arguments
//	"$steps.<step>.<field>" — a top-level field of an earlier step's output
//
// Critical steps abort the workflow on failure; best-effort steps record the
// failure and let the run continue. Fetching optional context is best-effort,
// writing the final artifact is critical.
type StepSpec struct {
	Name     string
	Tool     string
	Critical bool
	Args     map[string]any
}

// Spec declares a complete workflow: an ordered step list plus output
// bindings that assemble the aggregate result from step outputs. New
// workflows are new Spec values, not new control-flow code.
type Spec struct {
	Name        string
	Description string
	Steps       []StepSpec
	// Output maps aggregate result keys to binding references (or literals).
	Output map[string]any
}

// Validate checks the spec for structural problems: empty/duplicate step
// names and steps without a tool. Called at registration so a broken spec
// fails the process at startup.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("workflow: spec with empty name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("workflow %q: no steps", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Steps))
	for _, st := range s.Steps {
		if st.Name == "" {
			return fmt.Errorf("workflow %q: step with empty name", s.Name)
		}
		if st.Tool == "" {
			return fmt.Errorf("workflow %q: step %q has no tool", s.Name, st.Name)
		}
		if _, dup := seen[st.Name]; dup {
			return fmt.Errorf("workflow %q: duplicate step name %q", s.Name, st.Name)
		}
		seen[st.Name] = struct{}{}
	}
	return nil
}

// StepResult records one executed step. Steps that never ran (after a
// critical failure) do not appear at all.
type StepResult struct {
	Name      string
	Tool      string
	Critical  bool
	Success   bool
	ElapsedMs float64
	// Error holds the failure description for failed steps.
	Error string
	// Signal is set when the step stopped on a missing connection.
	Signal *tool.ConnectionSignal
	// Output is the step's success payload, also visible to later bindings.
	Output map[string]any
}

// Result is the aggregate outcome of one workflow run. Steps are in execution
// order. Success is true iff every critical step succeeded.
type Result struct {
	Workflow      string
	CorrelationID string
	Success       bool
	Steps         []StepResult
	// Data is the aggregate output assembled from the spec's Output bindings.
	Data map[string]any
	// Signal propagates a critical step's connection gap, structurally
	// identical to the single-tool case.
	Signal    *tool.ConnectionSignal
	ElapsedMs float64
}

// Catalog holds the registered workflow specs. Like the tool registry it is
// populated at startup and read-only afterward.
type Catalog struct {
	mu    sync.Mutex
	specs map[string]Spec
}

// NewCatalog creates an empty workflow catalog.
func NewCatalog() *Catalog {
	return &Catalog{specs: make(map[string]Spec)}
}

// Register adds a spec, failing fast on duplicates or structural problems.
func (c *Catalog) Register(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.specs[spec.Name]; exists {
		return fmt.Errorf("workflow %q already registered", spec.Name)
	}
	c.specs[spec.Name] = spec
	return nil
}

// MustRegister registers all given specs, panicking on the first error.
// For use in process initialization only.
func (c *Catalog) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := c.Register(s); err != nil {
			panic(err)
		}
	}
}

// Get returns the spec with the given name.
func (c *Catalog) Get(name string) (Spec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// List returns all specs ordered by name.
func (c *Catalog) List() []Spec {
	out := make([]Spec, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
