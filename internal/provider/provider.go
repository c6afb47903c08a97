package provider

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Provider identifies an external system requiring delegated authorization.
// Providers are static configuration: defined once at startup, immutable after.
type Provider struct {
	ID            string
	Name          string
	DefaultScopes ScopeSet
}

// Catalog is the read-only set of known providers.
type Catalog struct {
	providers map[string]Provider
}

// NewCatalog builds a catalog from the given providers.
// Duplicate ids fail fast — a duplicate means the config is wrong.
func NewCatalog(providers []Provider) (*Catalog, error) {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p.ID == "" {
			return nil, fmt.Errorf("NewCatalog: provider with empty id")
		}
		if _, exists := m[p.ID]; exists {
			return nil, fmt.Errorf("NewCatalog: duplicate provider id %q", p.ID)
		}
		m[p.ID] = p
	}
	return &Catalog{providers: m}, nil
}

// Get returns the provider with the given id.
func (c *Catalog) Get(id string) (Provider, bool) {
	p, ok := c.providers[id]
	return p, ok
}

// Name returns the human name for a provider id, falling back to the id itself.
func (c *Catalog) Name(id string) string {
	if p, ok := c.providers[id]; ok {
		return p.Name
	}
	return id
}

// List returns all providers ordered by id.
func (c *Catalog) List() []Provider {
	out := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// catalogFile is the YAML shape of the provider catalog file.
type catalogFile struct {
	Providers []struct {
		ID            string   `yaml:"id"`
		Name          string   `yaml:"name"`
		DefaultScopes []string `yaml:"default_scopes"`
	} `yaml:"providers"`
}

// LoadCatalog reads the provider catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("LoadCatalog: parse %s: %w", path, err)
	}

	providers := make([]Provider, 0, len(file.Providers))
	for _, p := range file.Providers {
		providers = append(providers, Provider{
			ID:            p.ID,
			Name:          p.Name,
			DefaultScopes: NewScopeSet(p.DefaultScopes...),
		})
	}

	cat, err := NewCatalog(providers)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %w", err)
	}
	return cat, nil
}

// DefaultCatalog returns the built-in provider set used when no catalog file
// is configured. Matches config/providers.yaml.
func DefaultCatalog() *Catalog {
	cat, _ := NewCatalog([]Provider{
		{
			ID:   "custom-crm",
			Name: "CRM",
			DefaultScopes: NewScopeSet(
				"contacts:read", "contacts:write",
				"deals:read", "deals:write",
				"notes:read",
			),
		},
		{
			ID:   "google-calendar",
			Name: "Google Calendar",
			DefaultScopes: NewScopeSet(
				"https://www.googleapis.com/auth/calendar.readonly",
				"https://www.googleapis.com/auth/calendar",
			),
		},
		{
			ID:   "google-docs",
			Name: "Google Docs",
			DefaultScopes: NewScopeSet(
				"https://www.googleapis.com/auth/documents",
				"https://www.googleapis.com/auth/drive.file",
			),
		},
	})
	return cat
}
