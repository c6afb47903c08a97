package provider

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScopeSet_ContainsAll(t *testing.T) {
	tests := []struct {
		name string
		have []string
		want []string
		ok   bool
	}{
		{"superset", []string{"a", "b", "c"}, []string{"a", "b"}, true},
		{"equal", []string{"a", "b"}, []string{"a", "b"}, true},
		{"empty want", []string{"a"}, nil, true},
		{"empty have", nil, []string{"a"}, false},
		{"partial overlap", []string{"a", "b"}, []string{"b", "c"}, false},
		{"disjoint", []string{"a"}, []string{"x", "y"}, false},
		{"both empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			have := NewScopeSet(tt.have...)
			want := NewScopeSet(tt.want...)
			if got := have.ContainsAll(want); got != tt.ok {
				t.Fatalf("ContainsAll(%v, %v) = %v, want %v", tt.have, tt.want, got, tt.ok)
			}
		})
	}
}

func TestScopeSet_Missing_ExactDifference(t *testing.T) {
	tests := []struct {
		name    string
		have    []string
		want    []string
		missing []string
	}{
		{"all missing", nil, []string{"b", "a"}, []string{"a", "b"}},
		{"partial", []string{"a"}, []string{"a", "b", "c"}, []string{"b", "c"}},
		{"none missing", []string{"a", "b"}, []string{"a"}, nil},
		{"no overlap contribution", []string{"x"}, []string{"a"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewScopeSet(tt.have...).Missing(NewScopeSet(tt.want...))
			if !reflect.DeepEqual(got, tt.missing) {
				t.Fatalf("Missing = %v, want %v", got, tt.missing)
			}
		})
	}
}

func TestScopeSet_IgnoresEmptyAndDuplicates(t *testing.T) {
	s := NewScopeSet("a", "", "a", "b")
	if s.Len() != 2 {
		t.Fatalf("expected 2 scopes, got %d", s.Len())
	}
	if !reflect.DeepEqual(s.Slice(), []string{"a", "b"}) {
		t.Fatalf("unexpected slice: %v", s.Slice())
	}
}

func TestCatalog_DuplicateIDFailsFast(t *testing.T) {
	_, err := NewCatalog([]Provider{
		{ID: "custom-crm", Name: "CRM"},
		{ID: "custom-crm", Name: "CRM again"},
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestCatalog_NameFallsBackToID(t *testing.T) {
	cat, err := NewCatalog([]Provider{{ID: "custom-crm", Name: "CRM"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Name("custom-crm"); got != "CRM" {
		t.Fatalf("expected CRM, got %s", got)
	}
	if got := cat.Name("unknown"); got != "unknown" {
		t.Fatalf("expected fallback to id, got %s", got)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	data := `providers:
  - id: custom-crm
    name: CRM
    default_scopes:
      - deals:read
      - notes:read
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := cat.Get("custom-crm")
	if !ok {
		t.Fatal("loaded catalog missing custom-crm")
	}
	if !reflect.DeepEqual(p.DefaultScopes.Slice(), []string{"deals:read", "notes:read"}) {
		t.Fatalf("unexpected scopes: %v", p.DefaultScopes.Slice())
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultCatalog_KnownProviders(t *testing.T) {
	cat := DefaultCatalog()
	for _, id := range []string{"custom-crm", "google-calendar", "google-docs"} {
		if _, ok := cat.Get(id); !ok {
			t.Fatalf("default catalog missing provider %s", id)
		}
	}
}
