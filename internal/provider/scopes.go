package provider

import "sort"

// ScopeSet is an unordered set of opaque OAuth scope strings.
// Comparison is always set-containment, never ordering.
type ScopeSet map[string]struct{}

// NewScopeSet builds a ScopeSet from the given scopes, skipping empty strings.
func NewScopeSet(scopes ...string) ScopeSet {
	s := make(ScopeSet, len(scopes))
	for _, sc := range scopes {
		if sc == "" {
			continue
		}
		s[sc] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given scope.
func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// ContainsAll reports whether s is a superset of want.
func (s ScopeSet) ContainsAll(want ScopeSet) bool {
	for sc := range want {
		if _, ok := s[sc]; !ok {
			return false
		}
	}
	return true
}

// Missing returns want \ s as a sorted slice — the exact set difference,
// so re-authorization requests ask for no more than necessary.
func (s ScopeSet) Missing(want ScopeSet) []string {
	var missing []string
	for sc := range want {
		if _, ok := s[sc]; !ok {
			missing = append(missing, sc)
		}
	}
	sort.Strings(missing)
	return missing
}

// Slice returns the scopes as a sorted slice.
func (s ScopeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for sc := range s {
		out = append(out, sc)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of scopes in the set.
func (s ScopeSet) Len() int {
	return len(s)
}
