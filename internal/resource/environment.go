package resource

// Environment describes where and how containers run.
type Environment struct {
	Name        string               `yaml:"-" json:"-"`
	Mode        Mode                 `yaml:"mode" json:"mode" validate:"enum"`
	Driver      Driver               `yaml:"driver" json:"driver" validate:"enum"`
	Docker      DockerDriverSpec     `yaml:"docker" json:"docker"`
	Compose     ComposeDriverSpec    `yaml:"compose" json:"compose"`
	Kubernetes  KubernetesDriverSpec `yaml:"kubernetes" json:"kubernetes"`
	Persistence PersistenceSpec      `yaml:"persistence" json:"persistence"`
	Network     NetworkSpec          `yaml:"network" json:"network"`
}

type DockerDriverSpec struct {
	Runtime          HostRuntime      `yaml:"runtime" json:"runtime" validate:"enum"`
	RemoteHost       string           `yaml:"remoteHost,omitempty" json:"remoteHost,omitempty"` // ssh://user@host when runtime=remote
	Cleanup          Cleanup          `yaml:"cleanup" json:"cleanup" validate:"enum"`
	ContainerRuntime ContainerRuntime `yaml:"containerRuntime,omitempty" json:"containerRuntime,omitempty" validate:"enum"`
}

type ComposeDriverSpec struct {
	Runtime HostRuntime `yaml:"runtime" json:"runtime" validate:"enum"`
	Cleanup Cleanup     `yaml:"cleanup" json:"cleanup" validate:"enum"`
}

type KubernetesDriverSpec struct {
	Context      string `yaml:"context,omitempty" json:"context,omitempty"`
	Namespace    string `yaml:"namespace" json:"namespace"`
	StorageClass string `yaml:"storageClass" json:"storageClass"`
}

type PersistenceSpec struct {
	Mode         PersistenceMode `yaml:"mode" json:"mode" validate:"enum"`
	BasePath     string          `yaml:"basePath" json:"basePath"`
	VolumePrefix string          `yaml:"volumePrefix" json:"volumePrefix"`
}

type NetworkSpec struct {
	Mode NetworkMode `yaml:"mode" json:"mode" validate:"enum"`
}

// DefaultEnvironment returns an Environment with every field at its
// documented default. Decoding starts from this value so absent keys keep it.
func DefaultEnvironment() Environment {
	return Environment{
		Mode:   ModeUnmanaged,
		Driver: DriverDocker,
		Docker: DockerDriverSpec{
			Runtime: HostLocal,
			Cleanup: CleanupEphemeral,
		},
		Compose: ComposeDriverSpec{
			Runtime: HostLocal,
			Cleanup: CleanupEphemeral,
		},
		Kubernetes: KubernetesDriverSpec{
			Namespace:    "skua",
			StorageClass: "standard",
		},
		Persistence: PersistenceSpec{
			Mode:         PersistBind,
			BasePath:     "~/.config/skua/claude-data",
			VolumePrefix: "skua",
		},
		Network: NetworkSpec{Mode: NetworkBridge},
	}
}

func (e *Environment) ResourceKind() Kind   { return KindEnvironment }
func (e *Environment) ResourceName() string { return e.Name }

// Cleanup returns the cleanup policy of the active driver. Kubernetes has no
// notion of container cleanup and reports an empty value.
func (e *Environment) Cleanup() Cleanup {
	switch e.Driver {
	case DriverDocker:
		return e.Docker.Cleanup
	case DriverCompose:
		return e.Compose.Cleanup
	default:
		return ""
	}
}

// Clone returns a copy of e. Environment holds no reference types, so a value
// copy is already deep.
func (e *Environment) Clone() *Environment {
	c := *e
	return &c
}
