package resolve

import (
	"maps"
	"slices"

	"github.com/skuahq/skua/internal/resource"
)

// set replaces *dst with *src when src is present.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// setList replaces *dst with a copy of src when src is present. A nil slice
// means absent; an empty non-nil slice clears the list.
func setList(dst *[]string, src []string) {
	if src != nil {
		*dst = slices.Clone(src)
	}
}

// applySecurity writes every present leaf of o onto s. s must already be a
// private copy.
func applySecurity(s *resource.SecurityProfile, o *resource.SecurityOverrides) {
	set(&s.Network.Outbound, o.Network.Outbound)
	setList(&s.Network.Proxy.AllowedDomains, o.Network.Proxy.AllowedDomains)
	set(&s.Network.Proxy.LogRequests, o.Network.Proxy.LogRequests)
	set(&s.Agent.Sudo, o.Agent.Sudo)
	set(&s.Install.Mode, o.Install.Mode)
	setList(&s.Install.Verified.AutoApprove, o.Install.AutoApprove)
	set(&s.Audit.Mode, o.Audit.Mode)
	set(&s.ImageUpdates.Mode, o.ImageUpdates.Mode)
	set(&s.ImageUpdates.Source, o.ImageUpdates.Source)
	set(&s.Isolation.Runtime, o.Isolation.Runtime)
}

// applyAgent writes every present leaf of o onto a. Runtime env entries are
// leaves keyed by variable name and merge per key.
func applyAgent(a *resource.AgentConfig, o *resource.AgentOverrides) {
	setList(&a.Install.Commands, o.Install.Commands)
	setList(&a.Install.RequiredPackages, o.Install.RequiredPackages)
	set(&a.Install.BaseImage, o.Install.BaseImage)
	set(&a.Runtime.Command, o.Runtime.Command)
	if len(o.Runtime.Env) > 0 {
		if a.Runtime.Env == nil {
			a.Runtime.Env = make(map[string]string, len(o.Runtime.Env))
		}
		maps.Copy(a.Runtime.Env, o.Runtime.Env)
	}
	setList(&a.Runtime.EntrypointHooks, o.Runtime.EntrypointHooks)
	set(&a.Auth.Dir, o.Auth.Dir)
	setList(&a.Auth.Files, o.Auth.Files)
	set(&a.Auth.LoginCommand, o.Auth.LoginCommand)
	if o.Auth.LoginRequiresNetwork != nil {
		v := *o.Auth.LoginRequiresNetwork
		a.Auth.LoginRequiresNetwork = &v
	}
}
