package resource

import (
	"fmt"
	"maps"
	"slices"
)

// Catalog is an in-memory, name-keyed snapshot of loaded resources. It is
// filled once by a loader and then only read, so it can be shared between
// concurrent validations without locking.
type Catalog struct {
	environments map[string]*Environment
	security     map[string]*SecurityProfile
	agents       map[string]*AgentConfig
	credentials  map[string]*Credential
	projects     map[string]*Project
}

func NewCatalog() *Catalog {
	return &Catalog{
		environments: make(map[string]*Environment),
		security:     make(map[string]*SecurityProfile),
		agents:       make(map[string]*AgentConfig),
		credentials:  make(map[string]*Credential),
		projects:     make(map[string]*Project),
	}
}

// Add inserts r. A second resource of the same kind and name is an error.
func (c *Catalog) Add(r Resource) error {
	name := r.ResourceName()
	dup := false
	switch v := r.(type) {
	case *Environment:
		_, dup = c.environments[name]
		if !dup {
			c.environments[name] = v
		}
	case *SecurityProfile:
		_, dup = c.security[name]
		if !dup {
			c.security[name] = v
		}
	case *AgentConfig:
		_, dup = c.agents[name]
		if !dup {
			c.agents[name] = v
		}
	case *Credential:
		_, dup = c.credentials[name]
		if !dup {
			c.credentials[name] = v
		}
	case *Project:
		_, dup = c.projects[name]
		if !dup {
			c.projects[name] = v
		}
	default:
		return fmt.Errorf("unsupported resource type %T", r)
	}
	if dup {
		return fmt.Errorf("duplicate %s %q", r.ResourceKind(), name)
	}
	return nil
}

// Put inserts or replaces r.
func (c *Catalog) Put(r Resource) {
	switch v := r.(type) {
	case *Environment:
		c.environments[v.Name] = v
	case *SecurityProfile:
		c.security[v.Name] = v
	case *AgentConfig:
		c.agents[v.Name] = v
	case *Credential:
		c.credentials[v.Name] = v
	case *Project:
		c.projects[v.Name] = v
	}
}

func (c *Catalog) Environment(name string) (*Environment, bool) {
	e, ok := c.environments[name]
	return e, ok
}

func (c *Catalog) SecurityProfile(name string) (*SecurityProfile, bool) {
	s, ok := c.security[name]
	return s, ok
}

func (c *Catalog) AgentConfig(name string) (*AgentConfig, bool) {
	a, ok := c.agents[name]
	return a, ok
}

func (c *Catalog) Credential(name string) (*Credential, bool) {
	cr, ok := c.credentials[name]
	return cr, ok
}

func (c *Catalog) Project(name string) (*Project, bool) {
	p, ok := c.projects[name]
	return p, ok
}

// Names returns the sorted names of every resource of kind.
func (c *Catalog) Names(kind Kind) []string {
	switch kind {
	case KindEnvironment:
		return slices.Sorted(maps.Keys(c.environments))
	case KindSecurityProfile:
		return slices.Sorted(maps.Keys(c.security))
	case KindAgentConfig:
		return slices.Sorted(maps.Keys(c.agents))
	case KindCredential:
		return slices.Sorted(maps.Keys(c.credentials))
	case KindProject:
		return slices.Sorted(maps.Keys(c.projects))
	}
	return nil
}

// Projects returns every project sorted by name.
func (c *Catalog) Projects() []*Project {
	names := c.Names(KindProject)
	out := make([]*Project, 0, len(names))
	for _, n := range names {
		out = append(out, c.projects[n])
	}
	return out
}

// Environments returns every environment sorted by name.
func (c *Catalog) Environments() []*Environment {
	names := c.Names(KindEnvironment)
	out := make([]*Environment, 0, len(names))
	for _, n := range names {
		out = append(out, c.environments[n])
	}
	return out
}
