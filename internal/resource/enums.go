package resource

import (
	"slices"

	"github.com/invopop/jsonschema"
)

// Enum is implemented by every closed-vocabulary field type. Values lists the
// allowed values in declaration order; range checks and JSON Schema output
// both read from it.
type Enum interface {
	Values() []string
	Valid() bool
}

func isOneOf[T ~string](v T, values []string) bool {
	return slices.Contains(values, string(v))
}

func enumSchema(values []string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// Mode says who supervises the agent container.
//
//	unmanaged: single agent container, skua launches it and exits.
//	managed:   a skua sidecar runs next to the agent (trusted proxy, log, MCP).
type Mode string

const (
	ModeUnmanaged Mode = "unmanaged"
	ModeManaged   Mode = "managed"
)

func (Mode) Values() []string                 { return []string{"unmanaged", "managed"} }
func (m Mode) Valid() bool                    { return isOneOf(m, m.Values()) }
func (m Mode) JSONSchema() *jsonschema.Schema { return enumSchema(m.Values()) }

// Driver is the orchestration backend that starts containers.
type Driver string

const (
	DriverDocker     Driver = "docker"
	DriverCompose    Driver = "compose"
	DriverKubernetes Driver = "kubernetes"
)

func (Driver) Values() []string                 { return []string{"docker", "compose", "kubernetes"} }
func (d Driver) Valid() bool                    { return isOneOf(d, d.Values()) }
func (d Driver) JSONSchema() *jsonschema.Schema { return enumSchema(d.Values()) }

// RunsContainers reports whether the driver runs plain OCI containers on a
// docker engine, which is where runtime classes and docker diff apply.
func (d Driver) RunsContainers() bool {
	return d == DriverDocker || d == DriverCompose
}

// NetworkMode is the container network attachment.
type NetworkMode string

const (
	NetworkNone     NetworkMode = "none"
	NetworkBridge   NetworkMode = "bridge"
	NetworkInternal NetworkMode = "internal"
	NetworkHost     NetworkMode = "host"
)

func (NetworkMode) Values() []string                 { return []string{"none", "bridge", "internal", "host"} }
func (n NetworkMode) Valid() bool                    { return isOneOf(n, n.Values()) }
func (n NetworkMode) JSONSchema() *jsonschema.Schema { return enumSchema(n.Values()) }

// HostRuntime says where the docker engine lives.
type HostRuntime string

const (
	HostLocal  HostRuntime = "local"
	HostRemote HostRuntime = "remote"
)

func (HostRuntime) Values() []string                 { return []string{"local", "remote"} }
func (h HostRuntime) Valid() bool                    { return isOneOf(h, h.Values()) }
func (h HostRuntime) JSONSchema() *jsonschema.Schema { return enumSchema(h.Values()) }

// Cleanup controls whether containers are removed on exit.
type Cleanup string

const (
	CleanupEphemeral  Cleanup = "ephemeral"
	CleanupPersistent Cleanup = "persistent"
)

func (Cleanup) Values() []string                 { return []string{"ephemeral", "persistent"} }
func (c Cleanup) Valid() bool                    { return isOneOf(c, c.Values()) }
func (c Cleanup) JSONSchema() *jsonschema.Schema { return enumSchema(c.Values()) }

// ContainerRuntime is the OCI runtime hint. Empty means the engine default (runc).
type ContainerRuntime string

const (
	RuntimeDefault ContainerRuntime = ""
	RuntimeGVisor  ContainerRuntime = "runsc"
	RuntimeKata    ContainerRuntime = "kata"
)

func (ContainerRuntime) Values() []string                 { return []string{"", "runsc", "kata"} }
func (r ContainerRuntime) Valid() bool                    { return isOneOf(r, r.Values()) }
func (r ContainerRuntime) JSONSchema() *jsonschema.Schema { return enumSchema(r.Values()) }

// PersistenceMode selects how agent auth/state directories survive restarts.
type PersistenceMode string

const (
	PersistBind   PersistenceMode = "bind"
	PersistVolume PersistenceMode = "volume"
)

func (PersistenceMode) Values() []string                 { return []string{"bind", "volume"} }
func (p PersistenceMode) Valid() bool                    { return isOneOf(p, p.Values()) }
func (p PersistenceMode) JSONSchema() *jsonschema.Schema { return enumSchema(p.Values()) }

// Outbound is the requested outbound network policy.
type Outbound string

const (
	OutboundUnrestricted Outbound = "unrestricted"
	OutboundNone         Outbound = "none"
	OutboundProxy        Outbound = "proxy"
)

func (Outbound) Values() []string                 { return []string{"unrestricted", "none", "proxy"} }
func (o Outbound) Valid() bool                    { return isOneOf(o, o.Values()) }
func (o Outbound) JSONSchema() *jsonschema.Schema { return enumSchema(o.Values()) }

// InstallMode governs package installation by the agent.
type InstallMode string

const (
	InstallUnrestricted InstallMode = "unrestricted"
	InstallAdvisory     InstallMode = "advisory"
	InstallVerified     InstallMode = "verified"
	InstallNone         InstallMode = "none"
)

func (InstallMode) Values() []string {
	return []string{"unrestricted", "advisory", "verified", "none"}
}
func (i InstallMode) Valid() bool                    { return isOneOf(i, i.Values()) }
func (i InstallMode) JSONSchema() *jsonschema.Schema { return enumSchema(i.Values()) }

// AuditMode says how agent activity is recorded.
type AuditMode string

const (
	AuditNone     AuditMode = "none"
	AuditAdvisory AuditMode = "advisory"
	AuditTrusted  AuditMode = "trusted"
)

func (AuditMode) Values() []string                 { return []string{"none", "advisory", "trusted"} }
func (a AuditMode) Valid() bool                    { return isOneOf(a, a.Values()) }
func (a AuditMode) JSONSchema() *jsonschema.Schema { return enumSchema(a.Values()) }

// ImageUpdateMode controls image rebuild suggestions from recorded installs.
type ImageUpdateMode string

const (
	ImageUpdatesDisabled ImageUpdateMode = "disabled"
	ImageUpdatesSuggest  ImageUpdateMode = "suggest"
	ImageUpdatesAuto     ImageUpdateMode = "auto"
)

func (ImageUpdateMode) Values() []string                 { return []string{"disabled", "suggest", "auto"} }
func (m ImageUpdateMode) Valid() bool                    { return isOneOf(m, m.Values()) }
func (m ImageUpdateMode) JSONSchema() *jsonschema.Schema { return enumSchema(m.Values()) }

// ImageUpdateSource is where install records for image updates come from.
type ImageUpdateSource string

const (
	ImageSourceAudit ImageUpdateSource = "audit"
	ImageSourceProxy ImageUpdateSource = "proxy"
)

func (ImageUpdateSource) Values() []string                 { return []string{"audit", "proxy"} }
func (s ImageUpdateSource) Valid() bool                    { return isOneOf(s, s.Values()) }
func (s ImageUpdateSource) JSONSchema() *jsonschema.Schema { return enumSchema(s.Values()) }

// IsolationRuntime is the kernel isolation a profile insists on.
type IsolationRuntime string

const (
	IsolationDefault IsolationRuntime = "default"
	IsolationGVisor  IsolationRuntime = "gvisor"
	IsolationKata    IsolationRuntime = "kata"
)

func (IsolationRuntime) Values() []string                 { return []string{"default", "gvisor", "kata"} }
func (i IsolationRuntime) Valid() bool                    { return isOneOf(i, i.Values()) }
func (i IsolationRuntime) JSONSchema() *jsonschema.Schema { return enumSchema(i.Values()) }
