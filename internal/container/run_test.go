package container

import (
	"slices"
	"strings"
	"testing"

	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
)

func stubFS(t *testing.T, files, dirs []string) {
	t.Helper()
	origFile, origDir, origRead := fileExists, dirExists, readFile
	fileExists = func(p string) bool { return slices.Contains(files, p) }
	dirExists = func(p string) bool { return slices.Contains(dirs, p) }
	readFile = func(p string) ([]byte, error) { return []byte("data:" + p), nil }
	t.Cleanup(func() { fileExists, dirExists, readFile = origFile, origDir, origRead })
}

func effective(mutate func(*resolve.EffectiveConfig)) *resolve.EffectiveConfig {
	env := resource.DefaultEnvironment()
	env.Name = "local-docker"
	sec := resource.DefaultSecurityProfile()
	sec.Name = "open"
	sec.Agent.Sudo = true
	eff := &resolve.EffectiveConfig{
		Project: &resource.Project{
			Name:        "api",
			Directory:   "/src/api",
			Environment: "local-docker",
			Security:    "open",
			Agent:       "claude",
			Git:         resource.ProjectGitSpec{Name: "Dev", Email: "dev@example.com"},
		},
		Environment: &env,
		Security:    &sec,
		Agent: &resource.AgentConfig{
			Name:    "claude",
			Runtime: resource.AgentRuntimeSpec{Command: "claude", Env: map[string]string{"B": "2", "A": "1"}},
			Auth:    resource.AgentAuthSpec{Dir: ".claude", Files: []string{".credentials.json", "/x/.claude.json"}, LoginCommand: "claude login"},
		},
	}
	if mutate != nil {
		mutate(eff)
	}
	return eff
}

func build(t *testing.T, eff *resolve.EffectiveConfig) *Plan {
	t.Helper()
	plan, err := BuildRunCommand(eff, Options{Image: "skua-base-claude", DataDir: "/cfg/claude-data/api"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return plan
}

func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func networkArg(args []string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--network="); ok {
			return v
		}
	}
	return ""
}

func TestBuildRunCommandBasics(t *testing.T) {
	stubFS(t, nil, []string{"/src/api"})
	plan := build(t, effective(nil))
	args := plan.Args

	if !slices.Equal(args[:5], []string{"docker", "run", "-it", "--rm", "--name"}) || args[5] != "skua-api" {
		t.Errorf("prefix = %v", args[:6])
	}
	if args[len(args)-1] != "skua-base-claude" {
		t.Errorf("image = %q, want last arg", args[len(args)-1])
	}
	for _, pair := range [][2]string{
		{"-v", "/src/api:/home/dev/api"},
		{"-v", "/cfg/claude-data/api:/home/dev/.claude"},
		{"-e", "GIT_AUTHOR_NAME=Dev"},
		{"-e", "SKUA_PROJECT_DIR=/home/dev/api"},
		{"-e", "SKUA_AGENT_LOGIN_COMMAND=claude login"},
		{"-e", "SKUA_AUTH_FILES=.credentials.json,.claude.json"},
		{"-e", "SKUA_CREDENTIAL_NAME=(none)"},
		{"-e", "SKUA_SUDO=1"},
	} {
		if !hasPair(args, pair[0], pair[1]) {
			t.Errorf("missing %s %s in %v", pair[0], pair[1], args)
		}
	}
	a := slices.Index(args, "A=1")
	b := slices.Index(args, "B=2")
	if a < 0 || b < 0 || a > b {
		t.Errorf("agent env not sorted: A at %d, B at %d", a, b)
	}
	if networkArg(args) != "" {
		t.Errorf("bridge network should use the engine default, got %q", networkArg(args))
	}
	if len(plan.Env) != 0 {
		t.Errorf("local run env = %v, want none", plan.Env)
	}
}

func TestNetworkFlag(t *testing.T) {
	tests := []struct {
		name     string
		mode     resource.NetworkMode
		driver   resource.Driver
		outbound resource.Outbound
		want     string
	}{
		{"bridge", resource.NetworkBridge, resource.DriverDocker, resource.OutboundUnrestricted, ""},
		{"host", resource.NetworkHost, resource.DriverDocker, resource.OutboundUnrestricted, "host"},
		{"none", resource.NetworkNone, resource.DriverDocker, resource.OutboundUnrestricted, "none"},
		{"internal on docker", resource.NetworkInternal, resource.DriverDocker, resource.OutboundProxy, "none"},
		{"internal on compose", resource.NetworkInternal, resource.DriverCompose, resource.OutboundProxy, ""},
		{"outbound none on bridge", resource.NetworkBridge, resource.DriverDocker, resource.OutboundNone, "none"},
		{"outbound none on host", resource.NetworkHost, resource.DriverDocker, resource.OutboundNone, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubFS(t, nil, nil)
			eff := effective(func(e *resolve.EffectiveConfig) {
				e.Environment.Network.Mode = tt.mode
				e.Environment.Driver = tt.driver
				e.Security.Network.Outbound = tt.outbound
			})
			if got := NetworkFlag(eff); got != tt.want {
				t.Errorf("NetworkFlag = %q, want %q", got, tt.want)
			}
			if got := networkArg(build(t, eff).Args); got != tt.want {
				t.Errorf("--network = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRunCommandRuntimeAndCleanup(t *testing.T) {
	stubFS(t, nil, nil)
	eff := effective(func(e *resolve.EffectiveConfig) {
		e.Environment.Docker.ContainerRuntime = resource.RuntimeGVisor
		e.Environment.Docker.Cleanup = resource.CleanupPersistent
		e.Environment.Persistence.Mode = resource.PersistVolume
	})
	args := build(t, eff).Args
	if !hasPair(args, "--runtime", "runsc") {
		t.Errorf("missing --runtime runsc: %v", args)
	}
	if slices.Contains(args, "--rm") {
		t.Error("persistent cleanup must not use --rm")
	}
	if !hasPair(args, "-v", "skua-api-claude:/home/dev/.claude") {
		t.Errorf("missing auth volume: %v", args)
	}
}

func TestBuildRunCommandSSHLocal(t *testing.T) {
	stubFS(t, []string{"/home/dev/.ssh/id_ed25519", "/home/dev/.ssh/known_hosts"}, nil)
	eff := effective(func(e *resolve.EffectiveConfig) {
		e.Project.SSH.PrivateKey = "/home/dev/.ssh/id_ed25519"
	})
	args := build(t, eff).Args
	if !hasPair(args, "-v", "/home/dev/.ssh/id_ed25519:/home/dev/.ssh-mount/id_ed25519:ro") {
		t.Errorf("missing key mount: %v", args)
	}
	if !hasPair(args, "-v", "/home/dev/.ssh/known_hosts:/home/dev/.ssh-mount/known_hosts:ro") {
		t.Errorf("missing known_hosts mount: %v", args)
	}
	if slices.ContainsFunc(args, func(a string) bool { return strings.Contains(a, ".pub") }) {
		t.Errorf("absent public key mounted: %v", args)
	}
}

func TestBuildRunCommandRemote(t *testing.T) {
	stubFS(t, []string{"/k/id"}, []string{"/src/api"})
	eff := effective(func(e *resolve.EffectiveConfig) {
		e.Project.Host = "build-box"
		e.Project.SSH.PrivateKey = "/k/id"
	})
	plan, err := BuildRunCommand(eff, Options{Image: "img", DataDir: "/cfg/d", RepoVolume: "skua-api-repo"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(plan.Env, []string{"DOCKER_HOST=ssh://build-box"}) {
		t.Errorf("env = %v", plan.Env)
	}
	if !hasPair(plan.Args, "-v", "skua-api-repo:/home/dev/api") {
		t.Errorf("missing repo volume: %v", plan.Args)
	}
	if !hasPair(plan.Args, "-e", "SKUA_SSH_KEY_B64=ZGF0YTovay9pZA==") {
		t.Errorf("remote key not inlined: %v", plan.Args)
	}
	// Remote runs never bind-mount host directories for persistence.
	if !hasPair(plan.Args, "-v", "skua-api-claude:/home/dev/.claude") {
		t.Errorf("remote persistence should use a volume: %v", plan.Args)
	}
}

func TestBuildRunCommandProxyEnv(t *testing.T) {
	stubFS(t, nil, nil)
	eff := effective(func(e *resolve.EffectiveConfig) {
		e.Security.Network.Outbound = resource.OutboundProxy
		e.Security.Network.Proxy.AllowedDomains = []string{"pypi.org", "github.com"}
		e.Security.Agent.Sudo = false
	})
	args := build(t, eff).Args
	if !hasPair(args, "-e", "SKUA_PROXY_ALLOWED_DOMAINS=pypi.org,github.com") {
		t.Errorf("missing proxy domains: %v", args)
	}
	if !hasPair(args, "-e", "SKUA_SUDO=0") {
		t.Errorf("missing SKUA_SUDO=0: %v", args)
	}
}

func TestBuildRunCommandNeedsImage(t *testing.T) {
	if _, err := BuildRunCommand(effective(nil), Options{}); err == nil {
		t.Error("expected error without image")
	}
}

func TestPlanString(t *testing.T) {
	p := &Plan{Args: []string{"docker", "run", "-e", "X=a b", "img"}, Env: []string{"DOCKER_HOST=ssh://h"}}
	if got, want := p.String(), "DOCKER_HOST=ssh://h docker run -e 'X=a b' img"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
