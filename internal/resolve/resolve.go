// Package resolve merges a Project's overrides on top of the resources it
// references, producing a transient EffectiveConfig.
package resolve

import (
	"fmt"
	"strings"

	"github.com/skuahq/skua/internal/resource"
)

type EnvironmentStore interface {
	Environment(name string) (*resource.Environment, bool)
}

type SecurityStore interface {
	SecurityProfile(name string) (*resource.SecurityProfile, bool)
}

type AgentStore interface {
	AgentConfig(name string) (*resource.AgentConfig, bool)
}

type CredentialStore interface {
	Credential(name string) (*resource.Credential, bool)
}

// Stores bundles the read-only lookups a resolution needs. A nil
// Credentials store holds no credentials.
type Stores struct {
	Environments EnvironmentStore
	Security     SecurityStore
	Agents       AgentStore
	Credentials  CredentialStore
}

// FromCatalog uses one catalog for every lookup.
func FromCatalog(c *resource.Catalog) Stores {
	return Stores{Environments: c, Security: c, Agents: c, Credentials: c}
}

// EffectiveConfig is the fully materialized configuration of one project.
// Every field is a private copy; mutating it never touches the stores.
type EffectiveConfig struct {
	Project     *resource.Project
	Environment *resource.Environment
	Security    *resource.SecurityProfile
	Agent       *resource.AgentConfig
	// Credential is nil when the project names none or the named one
	// does not exist. A missing credential is not a resolution error.
	Credential *resource.Credential
}

// MissingReference names one unresolved reference.
type MissingReference struct {
	Kind resource.Kind
	Name string
}

// ResolutionError reports references to resources that do not exist.
type ResolutionError struct {
	Project string
	Missing []MissingReference
}

func (e *ResolutionError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = fmt.Sprintf("%s %q", m.Kind, m.Name)
	}
	return fmt.Sprintf("project %q references missing %s", e.Project, strings.Join(parts, ", "))
}

// Resolve looks up the resources p references and applies p's overrides to
// copies of them. Missing references fail with *ResolutionError before any
// merge happens.
func Resolve(p *resource.Project, stores Stores) (*EffectiveConfig, error) {
	env, envOK := stores.Environments.Environment(p.Environment)
	sec, secOK := stores.Security.SecurityProfile(p.Security)
	agent, agentOK := stores.Agents.AgentConfig(p.Agent)

	var missing []MissingReference
	if !envOK {
		missing = append(missing, MissingReference{resource.KindEnvironment, p.Environment})
	}
	if !secOK {
		missing = append(missing, MissingReference{resource.KindSecurityProfile, p.Security})
	}
	if !agentOK {
		missing = append(missing, MissingReference{resource.KindAgentConfig, p.Agent})
	}
	if len(missing) > 0 {
		return nil, &ResolutionError{Project: p.Name, Missing: missing}
	}

	effSec := sec.Clone()
	applySecurity(effSec, &p.Overrides.Security)
	effAgent := agent.Clone()
	applyAgent(effAgent, &p.Overrides.Agent)

	eff := &EffectiveConfig{
		Project:     p.Clone(),
		Environment: env.Clone(),
		Security:    effSec,
		Agent:       effAgent,
	}
	if p.Credential != "" && stores.Credentials != nil {
		if cred, ok := stores.Credentials.Credential(p.Credential); ok {
			eff.Credential = cred.Clone()
		}
	}
	return eff, nil
}
