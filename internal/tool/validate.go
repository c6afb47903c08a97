package tool

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError reports why arguments were rejected before execution.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return e.Details
}

// CompileSchema compiles a descriptor's parameter schema. Returns nil for
// tools without parameters. Called once at registration so a broken schema
// fails the process at startup, not at dispatch time.
func CompileSchema(desc Descriptor) (*jsonschema.Schema, error) {
	if desc.Parameters == nil {
		return nil, nil
	}

	// Round-trip through encoding/json so the compiler sees plain decoded
	// values regardless of how the schema map was constructed.
	raw, err := json.Marshal(desc.Parameters)
	if err != nil {
		return nil, fmt.Errorf("CompileSchema %s: %w", desc.Name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("CompileSchema %s: %w", desc.Name, err)
	}

	c := jsonschema.NewCompiler()
	resource := desc.Name + ".schema.json"
	if err := c.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("CompileSchema %s: %w", desc.Name, err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("CompileSchema %s: %w", desc.Name, err)
	}
	return sch, nil
}

// ValidateArgs checks arguments against a compiled schema. Pure and
// side-effect free: no network, deterministic for identical input.
// A nil schema accepts anything.
func ValidateArgs(sch *jsonschema.Schema, args map[string]any) *ValidationError {
	if sch == nil {
		return nil
	}

	// Normalize through encoding/json so literal ints in hand-built argument
	// maps validate the same as decoded request bodies.
	raw, err := json.Marshal(args)
	if err != nil {
		return &ValidationError{Details: fmt.Sprintf("arguments are not JSON-encodable: %v", err)}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Details: fmt.Sprintf("arguments are not valid JSON: %v", err)}
	}

	if err := sch.Validate(doc); err != nil {
		return &ValidationError{Details: err.Error()}
	}
	return nil
}
