package capability

import "github.com/skuahq/skua/internal/resource"

// alwaysProvided holds capabilities every environment supplies: sudo is an
// image-level choice, available or removable on any driver.
var alwaysProvided = []Capability{ContainerSudo, ContainerNoSudo}

var networkProvides = map[resource.NetworkMode][]Capability{
	resource.NetworkBridge:   {NetworkInternet, NetworkIsolation},
	resource.NetworkInternal: {NetworkIsolation, NetworkInternal},
	resource.NetworkNone:     {NetworkIsolation, NetworkInternal},
	resource.NetworkHost:     {NetworkInternet},
}

// supervisionProvides is keyed by mode and then driver. A managed environment
// only gets the sidecar capabilities when the driver can run a second
// container next to the agent.
var supervisionProvides = map[resource.Mode]map[resource.Driver][]Capability{
	resource.ModeUnmanaged: {
		resource.DriverDocker:     nil,
		resource.DriverCompose:    nil,
		resource.DriverKubernetes: nil,
	},
	resource.ModeManaged: {
		resource.DriverDocker:     nil,
		resource.DriverCompose:    {Sidecar, TrustedProxy, TrustedLog, TrustedMCP},
		resource.DriverKubernetes: {Sidecar, TrustedProxy, TrustedLog, TrustedMCP},
	},
}

var runtimeProvides = map[resource.ContainerRuntime][]Capability{
	resource.RuntimeDefault: nil,
	resource.RuntimeGVisor:  {IsolationGVisor},
	resource.RuntimeKata:    {IsolationKata},
}

var cleanupProvides = map[resource.Cleanup][]Capability{
	resource.CleanupEphemeral:  nil,
	resource.CleanupPersistent: {AuditDockerDiff},
}

// Provides returns the capabilities env makes available. It is total over
// every combination of mode, driver, network mode and container runtime.
func Provides(env *resource.Environment) Set {
	s := NewSet(alwaysProvided...)
	s.Add(networkProvides[env.Network.Mode]...)
	s.Add(supervisionProvides[env.Mode][env.Driver]...)
	if env.Driver.RunsContainers() {
		s.Add(runtimeProvides[env.Docker.ContainerRuntime]...)
		s.Add(cleanupProvides[env.Cleanup()]...)
	}
	return s
}

// outboundRequires has no entry for "none": the launcher starts the workload
// with networking disabled on every driver, so nothing is needed from the
// environment.
var outboundRequires = map[resource.Outbound][]Capability{
	resource.OutboundUnrestricted: {NetworkInternet},
	resource.OutboundNone:         nil,
	resource.OutboundProxy:        {TrustedProxy, NetworkInternal},
}

var sudoRequires = map[bool][]Capability{
	true:  {ContainerSudo},
	false: {ContainerNoSudo},
}

var installRequires = map[resource.InstallMode][]Capability{
	resource.InstallUnrestricted: nil,
	resource.InstallAdvisory:     nil,
	resource.InstallVerified:     {TrustedProxy},
	resource.InstallNone:         nil,
}

var auditRequires = map[resource.AuditMode][]Capability{
	resource.AuditNone:     nil,
	resource.AuditAdvisory: nil,
	resource.AuditTrusted:  {TrustedLog},
}

var imageSourceRequires = map[resource.ImageUpdateSource][]Capability{
	resource.ImageSourceAudit: nil,
	resource.ImageSourceProxy: {TrustedLog},
}

// imageModeRequires is all-empty: the update mode is bookkeeping layered on
// top of audit data and only produces warnings.
var imageModeRequires = map[resource.ImageUpdateMode][]Capability{
	resource.ImageUpdatesDisabled: nil,
	resource.ImageUpdatesSuggest:  nil,
	resource.ImageUpdatesAuto:     nil,
}

var isolationRequires = map[resource.IsolationRuntime][]Capability{
	resource.IsolationDefault: nil,
	resource.IsolationGVisor:  {IsolationGVisor},
	resource.IsolationKata:    {IsolationKata},
}

// Requires returns the union of the capabilities each sub-setting of sec needs.
func Requires(sec *resource.SecurityProfile) Set {
	s := NewSet()
	s.Add(outboundRequires[sec.Network.Outbound]...)
	s.Add(sudoRequires[sec.Agent.Sudo]...)
	s.Add(installRequires[sec.Install.Mode]...)
	s.Add(auditRequires[sec.Audit.Mode]...)
	s.Add(imageSourceRequires[sec.ImageUpdates.Source]...)
	s.Add(imageModeRequires[sec.ImageUpdates.Mode]...)
	s.Add(isolationRequires[sec.Isolation.Runtime]...)
	return s
}
