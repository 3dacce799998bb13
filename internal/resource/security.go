package resource

import "slices"

// SecurityProfile declares what the agent is and isn't allowed to do.
type SecurityProfile struct {
	Name         string              `yaml:"-" json:"-"`
	Network      SecurityNetworkSpec `yaml:"network" json:"network"`
	Agent        SecurityAgentSpec   `yaml:"agent" json:"agent"`
	Install      SecurityInstallSpec `yaml:"install" json:"install"`
	Audit        SecurityAuditSpec   `yaml:"audit" json:"audit"`
	ImageUpdates ImageUpdatesSpec    `yaml:"imageUpdates" json:"imageUpdates"`
	Isolation    IsolationSpec       `yaml:"isolation" json:"isolation"`
}

type SecurityNetworkSpec struct {
	Outbound Outbound  `yaml:"outbound" json:"outbound" validate:"enum"`
	Proxy    ProxySpec `yaml:"proxy" json:"proxy"`
}

type ProxySpec struct {
	AllowedDomains []string `yaml:"allowedDomains,omitempty" json:"allowedDomains,omitempty"`
	LogRequests    bool     `yaml:"logRequests" json:"logRequests"`
}

type SecurityAgentSpec struct {
	Sudo bool `yaml:"sudo" json:"sudo"`
}

type SecurityInstallSpec struct {
	Mode     InstallMode         `yaml:"mode" json:"mode" validate:"enum"`
	Verified VerifiedInstallSpec `yaml:"verified" json:"verified"`
}

type VerifiedInstallSpec struct {
	AutoApprove []string `yaml:"autoApprove,omitempty" json:"autoApprove,omitempty"`
}

type SecurityAuditSpec struct {
	Mode AuditMode `yaml:"mode" json:"mode" validate:"enum"`
}

type ImageUpdatesSpec struct {
	Mode   ImageUpdateMode   `yaml:"mode" json:"mode" validate:"enum"`
	Source ImageUpdateSource `yaml:"source" json:"source" validate:"enum"`
}

type IsolationSpec struct {
	Runtime IsolationRuntime `yaml:"runtime" json:"runtime" validate:"enum"`
}

// DefaultSecurityProfile returns the permissive defaults used for absent keys.
func DefaultSecurityProfile() SecurityProfile {
	return SecurityProfile{
		Network: SecurityNetworkSpec{
			Outbound: OutboundUnrestricted,
			Proxy:    ProxySpec{LogRequests: true},
		},
		Install:      SecurityInstallSpec{Mode: InstallNone},
		Audit:        SecurityAuditSpec{Mode: AuditNone},
		ImageUpdates: ImageUpdatesSpec{Mode: ImageUpdatesDisabled, Source: ImageSourceAudit},
		Isolation:    IsolationSpec{Runtime: IsolationDefault},
	}
}

func (s *SecurityProfile) ResourceKind() Kind   { return KindSecurityProfile }
func (s *SecurityProfile) ResourceName() string { return s.Name }

// Clone returns a deep copy of s.
func (s *SecurityProfile) Clone() *SecurityProfile {
	c := *s
	c.Network.Proxy.AllowedDomains = slices.Clone(s.Network.Proxy.AllowedDomains)
	c.Install.Verified.AutoApprove = slices.Clone(s.Install.Verified.AutoApprove)
	return &c
}
