package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skuahq/skua/internal/resource"
)

// Fallback references for projects that name none and a global.yaml
// without defaults.
const (
	DefaultEnvironment = "local-docker"
	DefaultSecurity    = "open"
	DefaultAgent       = "claude"
	DefaultImageName   = "skua-base"
)

// Global is global.yaml: git identity, default references and tool paths.
type Global struct {
	Git       GitIdentity `yaml:"git,omitempty"`
	Defaults  Defaults    `yaml:"defaults,omitempty"`
	ToolDir   string      `yaml:"toolDir,omitempty"`
	ImageName string      `yaml:"imageName,omitempty"`
	LogLevel  string      `yaml:"logLevel,omitempty"`
	// HistoryLimit caps recorded verdicts per project; 0 keeps everything.
	HistoryLimit int `yaml:"historyLimit,omitempty"`
}

type GitIdentity struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

type Defaults struct {
	Environment string `yaml:"environment,omitempty"`
	Security    string `yaml:"security,omitempty"`
	Agent       string `yaml:"agent,omitempty"`
	SSHKey      string `yaml:"sshKey,omitempty"`
}

// Environment returns the default environment reference.
func (g *Global) Environment() string { return or(g.Defaults.Environment, DefaultEnvironment) }

// Security returns the default security profile reference.
func (g *Global) Security() string { return or(g.Defaults.Security, DefaultSecurity) }

// Agent returns the default agent reference.
func (g *Global) Agent() string { return or(g.Defaults.Agent, DefaultAgent) }

// Image returns the base image name.
func (g *Global) Image() string { return or(g.ImageName, DefaultImageName) }

// ApplyTo fills p's unset references, git identity and SSH key from g.
func (g *Global) ApplyTo(p *resource.Project) {
	if p.Environment == "" {
		p.Environment = g.Environment()
	}
	if p.Security == "" {
		p.Security = g.Security()
	}
	if p.Agent == "" {
		p.Agent = g.Agent()
	}
	if p.Git.Name == "" {
		p.Git.Name = g.Git.Name
	}
	if p.Git.Email == "" {
		p.Git.Email = g.Git.Email
	}
	if p.SSH.PrivateKey == "" {
		p.SSH.PrivateKey = g.Defaults.SSHKey
	}
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// LoadGlobal reads global.yaml. A missing file yields an empty config.
func (s *Store) LoadGlobal() (*Global, error) {
	g := &Global{}
	data, err := os.ReadFile(s.GlobalPath())
	if err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, fmt.Errorf("read global config: %w", err)
	}
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("parse global config: %w", err)
	}
	return g, nil
}

// SaveGlobal writes global.yaml.
func (s *Store) SaveGlobal(g *Global) error {
	if err := s.EnsureDirs(); err != nil {
		return err
	}
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode global config: %w", err)
	}
	return writeFileAtomic(s.GlobalPath(), data)
}

func (s *Store) GlobalPath() string {
	return filepath.Join(s.dir, "global.yaml")
}

// IsInitialized reports whether `skua init` has written global.yaml.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.GlobalPath())
	return err == nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
