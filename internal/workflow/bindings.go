package workflow

import "strings"

// Binding references use the same flat "name.field" path convention as tool
// output threading in the step trace:
//
//	$input.deal_id
//	$steps.fetch_deal.company
//
// Only top-level fields of step outputs are addressable. Unresolvable
// references are dropped from the resolved map — argument validation on the
// target tool decides whether the missing value matters.

const bindingPrefix = "$"

// scope holds the values visible to bindings during a run.
type scope struct {
	input map[string]any
	steps map[string]map[string]any
}

func newScope(input map[string]any) *scope {
	return &scope{
		input: input,
		steps: make(map[string]map[string]any),
	}
}

// record makes a completed step's output addressable by later bindings.
func (s *scope) record(stepName string, output map[string]any) {
	s.steps[stepName] = output
}

// lookup resolves a binding path like "input.x" or "steps.fetch_deal.id".
func (s *scope) lookup(path string) (any, bool) {
	parts := strings.Split(path, ".")
	switch {
	case len(parts) == 2 && parts[0] == "input":
		v, ok := s.input[parts[1]]
		return v, ok
	case len(parts) >= 3 && parts[0] == "steps":
		out, ok := s.steps[parts[1]]
		if !ok {
			return nil, false
		}
		// Fields may themselves contain dots (URL-ish keys); rejoin.
		v, ok := out[strings.Join(parts[2:], ".")]
		return v, ok
	default:
		return nil, false
	}
}

// resolveArgs materializes a step's argument map against the current scope.
// Literal values pass through; "$..." strings are resolved, and dropped when
// the reference has no value (e.g. it points at a failed best-effort step).
func (s *scope) resolveArgs(args map[string]any) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	resolved := make(map[string]any, len(args))
	for k, v := range args {
		ref, ok := bindingRef(v)
		if !ok {
			resolved[k] = v
			continue
		}
		if val, found := s.lookup(ref); found {
			resolved[k] = val
		}
	}
	return resolved
}

// resolveValue resolves a single output-binding value.
func (s *scope) resolveValue(v any) (any, bool) {
	ref, ok := bindingRef(v)
	if !ok {
		return v, true
	}
	return s.lookup(ref)
}

// bindingRef returns the path of a "$..." binding reference, or ok=false for
// literal values. "$$" escapes a literal leading dollar.
func bindingRef(v any) (string, bool) {
	str, ok := v.(string)
	if !ok || !strings.HasPrefix(str, bindingPrefix) {
		return "", false
	}
	if strings.HasPrefix(str, "$$") {
		return "", false
	}
	return strings.TrimPrefix(str, bindingPrefix), true
}
