package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skuahq/skua/internal/resource"
)

func env(mode resource.Mode, driver resource.Driver, net resource.NetworkMode) *resource.Environment {
	e := resource.DefaultEnvironment()
	e.Name = "test"
	e.Mode = mode
	e.Driver = driver
	e.Network.Mode = net
	return &e
}

func sec(mutate func(*resource.SecurityProfile)) *resource.SecurityProfile {
	s := resource.DefaultSecurityProfile()
	s.Name = "test"
	if mutate != nil {
		mutate(&s)
	}
	return &s
}

func TestTablesAreTotal(t *testing.T) {
	for _, v := range resource.NetworkMode("").Values() {
		_, ok := networkProvides[resource.NetworkMode(v)]
		assert.True(t, ok, "networkProvides missing %q", v)
	}
	for _, m := range resource.Mode("").Values() {
		byDriver, ok := supervisionProvides[resource.Mode(m)]
		require.True(t, ok, "supervisionProvides missing mode %q", m)
		for _, d := range resource.Driver("").Values() {
			_, ok := byDriver[resource.Driver(d)]
			assert.True(t, ok, "supervisionProvides[%s] missing driver %q", m, d)
		}
	}
	for _, v := range resource.ContainerRuntime("").Values() {
		_, ok := runtimeProvides[resource.ContainerRuntime(v)]
		assert.True(t, ok, "runtimeProvides missing %q", v)
	}
	for _, v := range resource.Cleanup("").Values() {
		_, ok := cleanupProvides[resource.Cleanup(v)]
		assert.True(t, ok, "cleanupProvides missing %q", v)
	}
	for _, v := range resource.Outbound("").Values() {
		_, ok := outboundRequires[resource.Outbound(v)]
		assert.True(t, ok, "outboundRequires missing %q", v)
	}
	for _, v := range resource.InstallMode("").Values() {
		_, ok := installRequires[resource.InstallMode(v)]
		assert.True(t, ok, "installRequires missing %q", v)
	}
	for _, v := range resource.AuditMode("").Values() {
		_, ok := auditRequires[resource.AuditMode(v)]
		assert.True(t, ok, "auditRequires missing %q", v)
	}
	for _, v := range resource.ImageUpdateSource("").Values() {
		_, ok := imageSourceRequires[resource.ImageUpdateSource(v)]
		assert.True(t, ok, "imageSourceRequires missing %q", v)
	}
	for _, v := range resource.ImageUpdateMode("").Values() {
		_, ok := imageModeRequires[resource.ImageUpdateMode(v)]
		assert.True(t, ok, "imageModeRequires missing %q", v)
	}
	for _, v := range resource.IsolationRuntime("").Values() {
		_, ok := isolationRequires[resource.IsolationRuntime(v)]
		assert.True(t, ok, "isolationRequires missing %q", v)
	}
}

func TestTablesUseKnownCapabilities(t *testing.T) {
	check := func(name string, caps []Capability) {
		for _, c := range caps {
			assert.True(t, c.Known(), "%s yields unknown capability %q", name, c)
		}
	}
	check("alwaysProvided", alwaysProvided)
	for k, v := range networkProvides {
		check(string(k), v)
	}
	for _, byDriver := range supervisionProvides {
		for k, v := range byDriver {
			check(string(k), v)
		}
	}
	for k, v := range outboundRequires {
		check(string(k), v)
	}
	for k, v := range installRequires {
		check(string(k), v)
	}
	for k, v := range isolationRequires {
		check(string(k), v)
	}
	for _, c := range All {
		assert.NotEmpty(t, Hint(c), "no hint for %q", c)
	}
}

func TestProvides(t *testing.T) {
	tests := []struct {
		name string
		env  *resource.Environment
		want []Capability
	}{
		{
			name: "unmanaged docker bridge",
			env:  env(resource.ModeUnmanaged, resource.DriverDocker, resource.NetworkBridge),
			want: []Capability{NetworkInternet, NetworkIsolation, ContainerSudo, ContainerNoSudo},
		},
		{
			name: "managed compose internal",
			env:  env(resource.ModeManaged, resource.DriverCompose, resource.NetworkInternal),
			want: []Capability{NetworkIsolation, NetworkInternal, Sidecar, TrustedProxy, TrustedLog, TrustedMCP, ContainerSudo, ContainerNoSudo},
		},
		{
			name: "managed on plain docker gets no sidecar",
			env:  env(resource.ModeManaged, resource.DriverDocker, resource.NetworkInternal),
			want: []Capability{NetworkIsolation, NetworkInternal, ContainerSudo, ContainerNoSudo},
		},
		{
			name: "host network",
			env:  env(resource.ModeUnmanaged, resource.DriverDocker, resource.NetworkHost),
			want: []Capability{NetworkInternet, ContainerSudo, ContainerNoSudo},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Provides(tt.env).Sorted())
		})
	}
}

func TestProvidesRuntimeAndCleanup(t *testing.T) {
	e := env(resource.ModeUnmanaged, resource.DriverDocker, resource.NetworkBridge)
	e.Docker.ContainerRuntime = resource.RuntimeGVisor
	e.Docker.Cleanup = resource.CleanupPersistent
	got := Provides(e)
	assert.True(t, got.Has(IsolationGVisor))
	assert.True(t, got.Has(AuditDockerDiff))
	assert.False(t, got.Has(IsolationKata))

	k := env(resource.ModeManaged, resource.DriverKubernetes, resource.NetworkInternal)
	k.Docker.ContainerRuntime = resource.RuntimeKata
	k.Docker.Cleanup = resource.CleanupPersistent
	got = Provides(k)
	assert.False(t, got.Has(IsolationKata), "runtime hint is ignored on kubernetes")
	assert.False(t, got.Has(AuditDockerDiff), "docker diff needs a docker engine")

	c := env(resource.ModeManaged, resource.DriverCompose, resource.NetworkInternal)
	c.Docker.ContainerRuntime = resource.RuntimeKata
	c.Compose.Cleanup = resource.CleanupPersistent
	got = Provides(c)
	assert.True(t, got.Has(IsolationKata))
	assert.True(t, got.Has(AuditDockerDiff))
}

func TestRequires(t *testing.T) {
	tests := []struct {
		name string
		sec  *resource.SecurityProfile
		want []Capability
	}{
		{
			name: "defaults",
			sec:  sec(nil),
			want: []Capability{NetworkInternet, ContainerNoSudo},
		},
		{
			name: "proxy",
			sec: sec(func(s *resource.SecurityProfile) {
				s.Network.Outbound = resource.OutboundProxy
			}),
			want: []Capability{NetworkInternal, TrustedProxy, ContainerNoSudo},
		},
		{
			name: "airgapped needs only always-provided capabilities",
			sec: sec(func(s *resource.SecurityProfile) {
				s.Network.Outbound = resource.OutboundNone
			}),
			want: []Capability{ContainerNoSudo},
		},
		{
			name: "trusted audit and proxy image source",
			sec: sec(func(s *resource.SecurityProfile) {
				s.Network.Outbound = resource.OutboundProxy
				s.Audit.Mode = resource.AuditTrusted
				s.ImageUpdates.Source = resource.ImageSourceProxy
				s.Install.Mode = resource.InstallVerified
			}),
			want: []Capability{NetworkInternal, TrustedProxy, TrustedLog, ContainerNoSudo},
		},
		{
			name: "image update mode is advisory only",
			sec: sec(func(s *resource.SecurityProfile) {
				s.ImageUpdates.Mode = resource.ImageUpdatesAuto
				s.Agent.Sudo = true
			}),
			want: []Capability{NetworkInternet, ContainerSudo},
		},
		{
			name: "gvisor isolation",
			sec: sec(func(s *resource.SecurityProfile) {
				s.Isolation.Runtime = resource.IsolationGVisor
			}),
			want: []Capability{NetworkInternet, ContainerNoSudo, IsolationGVisor},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Requires(tt.sec).Sorted())
		})
	}
}

func TestSelfConstraints(t *testing.T) {
	hardened := sec(func(s *resource.SecurityProfile) {
		s.Install.Mode = resource.InstallVerified
		s.Agent.Sudo = true
	})
	cs := SelfConstraints(hardened)
	require.Len(t, cs, 1)
	assert.True(t, cs[0].Violated(hardened))
	assert.Equal(t, "install.mode=verified requires agent.sudo=false, but agent.sudo=true", cs[0].Message(hardened))

	ok := sec(func(s *resource.SecurityProfile) {
		s.Install.Mode = resource.InstallVerified
	})
	cs = SelfConstraints(ok)
	require.Len(t, cs, 1)
	assert.False(t, cs[0].Violated(ok))
}

func TestDiscouragesMessage(t *testing.T) {
	s := sec(func(s *resource.SecurityProfile) {
		s.Network.Outbound = resource.OutboundProxy
		s.Agent.Sudo = true
	})
	var proxy *Constraint
	for _, c := range SelfConstraints(s) {
		if c.If.Field == FieldOutbound {
			proxy = &c
		}
	}
	require.NotNil(t, proxy)
	assert.Equal(t, DiscouragesValue, proxy.Relation)
	assert.True(t, proxy.Violated(s))
	assert.Equal(t, "network.outbound=proxy with agent.sudo=true: agent could bypass the proxy via raw sockets or iptables changes", proxy.Message(s))
}

func TestConstraintFieldsResolve(t *testing.T) {
	s := sec(nil)
	for _, c := range Constraints() {
		assert.NotPanics(t, func() { Value(s, c.If.Field) })
		assert.NotPanics(t, func() { Value(s, c.Then.Field) })
	}
}

func TestSetMinusIsCanonicalOrder(t *testing.T) {
	required := NewSet(TrustedLog, NetworkInternal, TrustedProxy)
	provided := NewSet(NetworkInternal)
	assert.Equal(t, []Capability{TrustedProxy, TrustedLog}, required.Minus(provided))
	assert.Equal(t, "{network.internal, trusted.proxy, trusted.log}", required.String())
}

func TestConstraintTableRelations(t *testing.T) {
	cs := Constraints()
	require.Len(t, cs, 9)
	for i, c := range cs {
		want := RequiresValue
		if i >= 5 {
			want = DiscouragesValue
		}
		assert.Equal(t, want, c.Relation, "constraint %d (%s)", i+1, c.If)
	}
}
