// Package container turns an effective project configuration into the
// docker command that starts its agent container.
package container

import (
	"encoding/base64"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
)

// Options are the launch inputs that do not come from resources.
type Options struct {
	Image      string // image to run
	DataDir    string // host directory for bind persistence
	RepoVolume string // named volume holding a remote clone
	Detach     bool
}

// Plan is a ready-to-exec docker invocation.
type Plan struct {
	Args []string // argv, starting with "docker"
	Env  []string // extra environment for the docker client
}

func (p *Plan) String() string {
	quoted := make([]string, len(p.Args))
	for i, a := range p.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'$|&;<>()*?") {
			quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(append(slices.Clone(p.Env), quoted...), " ")
}

// fileExists is swapped in tests.
var fileExists = func(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

var dirExists = func(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

var readFile = os.ReadFile

// NetworkFlag is the docker --network value for eff, or "" for the engine
// default. A profile that forbids outbound traffic always gets "none",
// whatever the environment's network mode.
func NetworkFlag(eff *resolve.EffectiveConfig) string {
	if eff.Security.Network.Outbound == resource.OutboundNone {
		return "none"
	}
	switch eff.Environment.Network.Mode {
	case resource.NetworkHost:
		return "host"
	case resource.NetworkNone:
		return "none"
	case resource.NetworkInternal:
		// Plain docker has no internal networks.
		if eff.Environment.Driver == resource.DriverDocker {
			return "none"
		}
	}
	return ""
}

// RemoteHost returns the docker host URL when the project runs remotely.
func RemoteHost(eff *resolve.EffectiveConfig) string {
	if eff.Project.Host != "" {
		if strings.Contains(eff.Project.Host, "://") {
			return eff.Project.Host
		}
		return "ssh://" + eff.Project.Host
	}
	d := eff.Environment.Docker
	if d.Runtime == resource.HostRemote && d.RemoteHost != "" {
		return d.RemoteHost
	}
	return ""
}

// BuildRunCommand builds the docker run invocation for eff.
func BuildRunCommand(eff *resolve.EffectiveConfig, opts Options) (*Plan, error) {
	p := eff.Project
	env := eff.Environment
	agent := eff.Agent
	if opts.Image == "" {
		return nil, fmt.Errorf("no image for project %q", p.Name)
	}

	remote := RemoteHost(eff)
	plan := &Plan{}
	if remote != "" {
		plan.Env = append(plan.Env, "DOCKER_HOST="+remote)
	}

	args := []string{"docker", "run"}
	if opts.Detach {
		args = append(args, "-d")
	} else {
		args = append(args, "-it")
	}
	if env.Cleanup() == resource.CleanupEphemeral {
		args = append(args, "--rm")
	}
	args = append(args, "--name", ContainerName(p.Name))
	setenv := func(k, v string) { args = append(args, "-e", k+"="+v) }

	if rt := env.Docker.ContainerRuntime; rt != resource.RuntimeDefault {
		args = append(args, "--runtime", string(rt))
	}

	if p.Git.Name != "" {
		setenv("GIT_AUTHOR_NAME", p.Git.Name)
		setenv("GIT_AUTHOR_EMAIL", p.Git.Email)
		setenv("GIT_COMMITTER_NAME", p.Git.Name)
		setenv("GIT_COMMITTER_EMAIL", p.Git.Email)
	}

	if key := p.SSH.PrivateKey; key != "" && fileExists(key) {
		keyName := filepath.Base(key)
		setenv("SKUA_SSH_KEY_NAME", keyName)
		mounts := []struct{ src, dst, envName string }{
			{key, keyName, "SKUA_SSH_KEY_B64"},
			{key + ".pub", keyName + ".pub", "SKUA_SSH_PUB_KEY_B64"},
			{filepath.Join(filepath.Dir(key), "known_hosts"), "known_hosts", "SKUA_SSH_KNOWN_HOSTS_B64"},
		}
		for i, m := range mounts {
			if i > 0 && !fileExists(m.src) {
				continue
			}
			if remote == "" {
				args = append(args, "-v", m.src+":/home/dev/.ssh-mount/"+m.dst+":ro")
				continue
			}
			// Bind mounts do not reach a remote daemon.
			data, err := readFile(m.src)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", m.src, err)
			}
			setenv(m.envName, base64.StdEncoding.EncodeToString(data))
		}
	}

	mountPath := ProjectMountPath(p)
	switch {
	case opts.RepoVolume != "":
		args = append(args, "-v", opts.RepoVolume+":"+mountPath)
	case p.Directory != "" && dirExists(p.Directory):
		args = append(args, "-v", p.Directory+":"+mountPath)
	}
	setenv("SKUA_PROJECT_DIR", mountPath)
	setenv("SKUA_IMAGE_REQUEST_FILE", mountPath+"/.skua/image-request.yaml")
	setenv("SKUA_ADAPT_GUIDE_FILE", mountPath+"/.skua/ADAPT.md")

	authDir := strings.TrimLeft(agent.Auth.Dir, "/")
	if authDir == "" {
		authDir = "." + agent.Name
	}
	authMount := "/home/dev/" + authDir
	loginCmd := agent.Auth.LoginCommand
	if loginCmd == "" {
		loginCmd = agent.Command() + " login"
	}
	var authFiles []string
	for _, f := range agent.Auth.Files {
		if strings.TrimSpace(f) != "" {
			authFiles = append(authFiles, filepath.Base(f))
		}
	}
	credential := p.Credential
	if credential == "" {
		credential = "(none)"
	}
	setenv("SKUA_AGENT_NAME", agent.Name)
	setenv("SKUA_AGENT_COMMAND", agent.Command())
	setenv("SKUA_AGENT_LOGIN_COMMAND", loginCmd)
	setenv("SKUA_AUTH_DIR", authDir)
	setenv("SKUA_AUTH_FILES", strings.Join(authFiles, ","))
	setenv("SKUA_CREDENTIAL_NAME", credential)

	sec := eff.Security
	setenv("SKUA_SECURITY_PROFILE", sec.Name)
	setenv("SKUA_NETWORK_OUTBOUND", string(sec.Network.Outbound))
	setenv("SKUA_INSTALL_MODE", string(sec.Install.Mode))
	setenv("SKUA_AUDIT_MODE", string(sec.Audit.Mode))
	if sec.Agent.Sudo {
		setenv("SKUA_SUDO", "1")
	} else {
		setenv("SKUA_SUDO", "0")
	}
	if sec.Network.Outbound == resource.OutboundProxy && len(sec.Network.Proxy.AllowedDomains) > 0 {
		setenv("SKUA_PROXY_ALLOWED_DOMAINS", strings.Join(sec.Network.Proxy.AllowedDomains, ","))
	}
	if len(agent.Runtime.EntrypointHooks) > 0 {
		setenv("SKUA_ENTRYPOINT_HOOKS", strings.Join(agent.Runtime.EntrypointHooks, "\n"))
	}
	for _, k := range slices.Sorted(maps.Keys(agent.Runtime.Env)) {
		setenv(k, agent.Runtime.Env[k])
	}

	if env.Persistence.Mode == resource.PersistBind && remote == "" {
		args = append(args, "-v", opts.DataDir+":"+authMount)
	} else {
		prefix := env.Persistence.VolumePrefix
		if prefix == "" {
			prefix = "skua"
		}
		args = append(args, "-v", fmt.Sprintf("%s-%s-%s:%s", prefix, p.Name, agent.Name, authMount))
	}

	if net := NetworkFlag(eff); net != "" {
		args = append(args, "--network="+net)
	}

	args = append(args, opts.Image)
	plan.Args = args
	return plan, nil
}
