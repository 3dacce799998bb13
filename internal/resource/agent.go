package resource

import (
	"maps"
	"slices"
)

// AgentConfig describes an AI agent: how it is installed, started and logged in.
type AgentConfig struct {
	Name    string           `yaml:"-" json:"-"`
	Install AgentInstallSpec `yaml:"install" json:"install"`
	Runtime AgentRuntimeSpec `yaml:"runtime" json:"runtime"`
	Auth    AgentAuthSpec    `yaml:"auth" json:"auth"`
}

type AgentInstallSpec struct {
	Commands         []string `yaml:"commands,omitempty" json:"commands,omitempty"`
	RequiredPackages []string `yaml:"requiredPackages,omitempty" json:"requiredPackages,omitempty"`
	BaseImage        string   `yaml:"baseImage,omitempty" json:"baseImage,omitempty"`
}

type AgentRuntimeSpec struct {
	Command         string            `yaml:"command,omitempty" json:"command,omitempty"`
	Env             map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	EntrypointHooks []string          `yaml:"entrypointHooks,omitempty" json:"entrypointHooks,omitempty"`
}

type AgentAuthSpec struct {
	Dir          string   `yaml:"dir,omitempty" json:"dir,omitempty"` // mounted for persistence
	Files        []string `yaml:"files,omitempty" json:"files,omitempty"`
	LoginCommand string   `yaml:"loginCommand,omitempty" json:"loginCommand,omitempty"`
	// LoginRequiresNetwork defaults to true whenever LoginCommand is set.
	LoginRequiresNetwork *bool `yaml:"loginRequiresNetwork,omitempty" json:"loginRequiresNetwork,omitempty"`
}

func (a *AgentConfig) ResourceKind() Kind   { return KindAgentConfig }
func (a *AgentConfig) ResourceName() string { return a.Name }

// LoginNeedsNetwork reports whether the agent's login command must reach the
// network to succeed.
func (a *AgentConfig) LoginNeedsNetwork() bool {
	if a.Auth.LoginCommand == "" {
		return false
	}
	if a.Auth.LoginRequiresNetwork == nil {
		return true
	}
	return *a.Auth.LoginRequiresNetwork
}

// Command returns the runtime command, falling back to the agent name.
func (a *AgentConfig) Command() string {
	if a.Runtime.Command != "" {
		return a.Runtime.Command
	}
	return a.Name
}

// Clone returns a deep copy of a.
func (a *AgentConfig) Clone() *AgentConfig {
	c := *a
	c.Install.Commands = slices.Clone(a.Install.Commands)
	c.Install.RequiredPackages = slices.Clone(a.Install.RequiredPackages)
	c.Runtime.Env = maps.Clone(a.Runtime.Env)
	c.Runtime.EntrypointHooks = slices.Clone(a.Runtime.EntrypointHooks)
	c.Auth.Files = slices.Clone(a.Auth.Files)
	if a.Auth.LoginRequiresNetwork != nil {
		v := *a.Auth.LoginRequiresNetwork
		c.Auth.LoginRequiresNetwork = &v
	}
	return &c
}
