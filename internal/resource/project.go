package resource

import (
	"maps"
	"slices"
)

// Project ties an Environment, SecurityProfile and AgentConfig together for a codebase.
type Project struct {
	Name        string           `yaml:"-" json:"-"`
	Directory   string           `yaml:"directory,omitempty" json:"directory,omitempty"`
	Repo        string           `yaml:"repo,omitempty" json:"repo,omitempty"` // git URL cloned into a managed dir
	Host        string           `yaml:"host,omitempty" json:"host,omitempty"` // remote docker host
	Environment string           `yaml:"environment" json:"environment" validate:"omitempty,resourcename"`
	Security    string           `yaml:"security" json:"security" validate:"omitempty,resourcename"`
	Agent       string           `yaml:"agent" json:"agent" validate:"omitempty,resourcename"`
	Credential  string           `yaml:"credential,omitempty" json:"credential,omitempty" validate:"omitempty,resourcename"`
	Git         ProjectGitSpec   `yaml:"git" json:"git"`
	SSH         ProjectSSHSpec   `yaml:"ssh" json:"ssh"`
	Image       ProjectImageSpec `yaml:"image" json:"image"`
	Overrides   Overrides        `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

type ProjectGitSpec struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

type ProjectSSHSpec struct {
	PrivateKey string `yaml:"privateKey,omitempty" json:"privateKey,omitempty"`
}

type ProjectImageSpec struct {
	BaseImage     string   `yaml:"baseImage,omitempty" json:"baseImage,omitempty"`
	FromImage     string   `yaml:"fromImage,omitempty" json:"fromImage,omitempty"`
	ExtraPackages []string `yaml:"extraPackages,omitempty" json:"extraPackages,omitempty"`
	ExtraCommands []string `yaml:"extraCommands,omitempty" json:"extraCommands,omitempty"`
	Version       int      `yaml:"version,omitempty" json:"version,omitempty"`
}

// Overrides redefines leaf fields of the referenced SecurityProfile and
// AgentConfig for one project. A nil pointer or nil slice/map means "inherit";
// an explicitly empty list (`[]`) replaces the inherited list with nothing.
type Overrides struct {
	Security SecurityOverrides `yaml:"security,omitempty" json:"security,omitempty"`
	Agent    AgentOverrides    `yaml:"agent,omitempty" json:"agent,omitempty"`
}

type SecurityOverrides struct {
	Network      NetworkOverrides      `yaml:"network,omitempty" json:"network,omitempty"`
	Agent        SudoOverrides         `yaml:"agent,omitempty" json:"agent,omitempty"`
	Install      InstallOverrides      `yaml:"install,omitempty" json:"install,omitempty"`
	Audit        AuditOverrides        `yaml:"audit,omitempty" json:"audit,omitempty"`
	ImageUpdates ImageUpdatesOverrides `yaml:"imageUpdates,omitempty" json:"imageUpdates,omitempty"`
	Isolation    IsolationOverrides    `yaml:"isolation,omitempty" json:"isolation,omitempty"`
}

type NetworkOverrides struct {
	Outbound *Outbound     `yaml:"outbound,omitempty" json:"outbound,omitempty" validate:"omitempty,enum"`
	Proxy    ProxyOverrides `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

type ProxyOverrides struct {
	AllowedDomains []string `yaml:"allowedDomains,omitempty" json:"allowedDomains,omitempty"`
	LogRequests    *bool    `yaml:"logRequests,omitempty" json:"logRequests,omitempty"`
}

type SudoOverrides struct {
	Sudo *bool `yaml:"sudo,omitempty" json:"sudo,omitempty"`
}

type InstallOverrides struct {
	Mode        *InstallMode `yaml:"mode,omitempty" json:"mode,omitempty" validate:"omitempty,enum"`
	AutoApprove []string     `yaml:"autoApprove,omitempty" json:"autoApprove,omitempty"`
}

type AuditOverrides struct {
	Mode *AuditMode `yaml:"mode,omitempty" json:"mode,omitempty" validate:"omitempty,enum"`
}

type ImageUpdatesOverrides struct {
	Mode   *ImageUpdateMode   `yaml:"mode,omitempty" json:"mode,omitempty" validate:"omitempty,enum"`
	Source *ImageUpdateSource `yaml:"source,omitempty" json:"source,omitempty" validate:"omitempty,enum"`
}

type IsolationOverrides struct {
	Runtime *IsolationRuntime `yaml:"runtime,omitempty" json:"runtime,omitempty" validate:"omitempty,enum"`
}

type AgentOverrides struct {
	Install AgentInstallOverrides `yaml:"install,omitempty" json:"install,omitempty"`
	Runtime AgentRuntimeOverrides `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Auth    AgentAuthOverrides    `yaml:"auth,omitempty" json:"auth,omitempty"`
}

type AgentInstallOverrides struct {
	Commands         []string `yaml:"commands,omitempty" json:"commands,omitempty"`
	RequiredPackages []string `yaml:"requiredPackages,omitempty" json:"requiredPackages,omitempty"`
	BaseImage        *string  `yaml:"baseImage,omitempty" json:"baseImage,omitempty"`
}

type AgentRuntimeOverrides struct {
	Command *string `yaml:"command,omitempty" json:"command,omitempty"`
	// Env entries are merged per key on top of the inherited environment.
	Env             map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	EntrypointHooks []string          `yaml:"entrypointHooks,omitempty" json:"entrypointHooks,omitempty"`
}

type AgentAuthOverrides struct {
	Dir                  *string  `yaml:"dir,omitempty" json:"dir,omitempty"`
	Files                []string `yaml:"files,omitempty" json:"files,omitempty"`
	LoginCommand         *string  `yaml:"loginCommand,omitempty" json:"loginCommand,omitempty"`
	LoginRequiresNetwork *bool    `yaml:"loginRequiresNetwork,omitempty" json:"loginRequiresNetwork,omitempty"`
}

func (p *Project) ResourceKind() Kind   { return KindProject }
func (p *Project) ResourceName() string { return p.Name }

// HasImageCustomizations reports whether the project asks for its own image.
func (p *Project) HasImageCustomizations() bool {
	img := p.Image
	return img.BaseImage != "" || img.FromImage != "" ||
		len(img.ExtraPackages) > 0 || len(img.ExtraCommands) > 0
}

// Clone returns a deep copy of p, overrides included.
func (p *Project) Clone() *Project {
	c := *p
	c.Image.ExtraPackages = slices.Clone(p.Image.ExtraPackages)
	c.Image.ExtraCommands = slices.Clone(p.Image.ExtraCommands)

	so := &c.Overrides.Security
	so.Network.Outbound = clonePtr(p.Overrides.Security.Network.Outbound)
	so.Network.Proxy.AllowedDomains = slices.Clone(p.Overrides.Security.Network.Proxy.AllowedDomains)
	so.Network.Proxy.LogRequests = clonePtr(p.Overrides.Security.Network.Proxy.LogRequests)
	so.Agent.Sudo = clonePtr(p.Overrides.Security.Agent.Sudo)
	so.Install.Mode = clonePtr(p.Overrides.Security.Install.Mode)
	so.Install.AutoApprove = slices.Clone(p.Overrides.Security.Install.AutoApprove)
	so.Audit.Mode = clonePtr(p.Overrides.Security.Audit.Mode)
	so.ImageUpdates.Mode = clonePtr(p.Overrides.Security.ImageUpdates.Mode)
	so.ImageUpdates.Source = clonePtr(p.Overrides.Security.ImageUpdates.Source)
	so.Isolation.Runtime = clonePtr(p.Overrides.Security.Isolation.Runtime)

	ao := &c.Overrides.Agent
	ao.Install.Commands = slices.Clone(p.Overrides.Agent.Install.Commands)
	ao.Install.RequiredPackages = slices.Clone(p.Overrides.Agent.Install.RequiredPackages)
	ao.Install.BaseImage = clonePtr(p.Overrides.Agent.Install.BaseImage)
	ao.Runtime.Command = clonePtr(p.Overrides.Agent.Runtime.Command)
	ao.Runtime.Env = maps.Clone(p.Overrides.Agent.Runtime.Env)
	ao.Runtime.EntrypointHooks = slices.Clone(p.Overrides.Agent.Runtime.EntrypointHooks)
	ao.Auth.Dir = clonePtr(p.Overrides.Agent.Auth.Dir)
	ao.Auth.Files = slices.Clone(p.Overrides.Agent.Auth.Files)
	ao.Auth.LoginCommand = clonePtr(p.Overrides.Agent.Auth.LoginCommand)
	ao.Auth.LoginRequiresNetwork = clonePtr(p.Overrides.Agent.Auth.LoginRequiresNetwork)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Credential is a named set of host credential files for an agent.
type Credential struct {
	Name      string   `yaml:"-" json:"-"`
	Agent     string   `yaml:"agent" json:"agent" validate:"omitempty,resourcename"`
	SourceDir string   `yaml:"sourceDir,omitempty" json:"sourceDir,omitempty"`
	Files     []string `yaml:"files,omitempty" json:"files,omitempty"` // takes priority over SourceDir
}

func (c *Credential) ResourceKind() Kind   { return KindCredential }
func (c *Credential) ResourceName() string { return c.Name }

func (c *Credential) Clone() *Credential {
	out := *c
	out.Files = slices.Clone(c.Files)
	return &out
}
