package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/skuahq/skua/internal/resource"
)

func ptr[T any](v T) *T { return &v }

func testCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	c := resource.NewCatalog()

	env := resource.DefaultEnvironment()
	env.Name = "local-docker"

	sec := resource.DefaultSecurityProfile()
	sec.Name = "standard"
	sec.Agent.Sudo = true
	sec.Install.Mode = resource.InstallAdvisory
	sec.Audit.Mode = resource.AuditAdvisory
	sec.Network.Proxy.AllowedDomains = []string{"pypi.org", "github.com"}

	agent := &resource.AgentConfig{
		Name: "claude",
		Install: resource.AgentInstallSpec{
			Commands:         []string{"npm install -g @anthropic-ai/claude-code"},
			RequiredPackages: []string{"nodejs"},
		},
		Runtime: resource.AgentRuntimeSpec{
			Command: "claude",
			Env:     map[string]string{"CLAUDE_CONFIG_DIR": "/home/dev/.claude"},
		},
		Auth: resource.AgentAuthSpec{Dir: ".claude", LoginCommand: "claude login"},
	}

	for _, r := range []resource.Resource{&env, &sec, agent} {
		if err := c.Add(r); err != nil {
			t.Fatalf("add %s: %v", r.ResourceName(), err)
		}
	}
	return c
}

func project(name string) *resource.Project {
	return &resource.Project{
		Name:        name,
		Directory:   "/src/" + name,
		Environment: "local-docker",
		Security:    "standard",
		Agent:       "claude",
	}
}

func TestResolveWithoutOverrides(t *testing.T) {
	c := testCatalog(t)
	eff, err := Resolve(project("api"), FromCatalog(c))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, _ := c.SecurityProfile("standard")
	if !reflect.DeepEqual(eff.Security, stored) {
		t.Errorf("effective security = %+v, want %+v", eff.Security, stored)
	}
	if eff.Security == stored {
		t.Error("effective security must be a copy, not the stored pointer")
	}
	if eff.Environment.Name != "local-docker" || eff.Agent.Name != "claude" {
		t.Errorf("unexpected refs: env=%q agent=%q", eff.Environment.Name, eff.Agent.Name)
	}
}

func TestResolveOnlyOutboundOverride(t *testing.T) {
	c := testCatalog(t)
	p := project("api")
	p.Overrides.Security.Network.Outbound = ptr(resource.OutboundProxy)

	eff, err := Resolve(p, FromCatalog(c))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stored, _ := c.SecurityProfile("standard")
	if eff.Security.Network.Outbound != resource.OutboundProxy {
		t.Errorf("outbound = %q, want proxy", eff.Security.Network.Outbound)
	}

	// Every other field equals the referenced profile.
	want := stored.Clone()
	want.Network.Outbound = resource.OutboundProxy
	if !reflect.DeepEqual(eff.Security, want) {
		t.Errorf("effective security = %+v, want %+v", eff.Security, want)
	}
}

func TestResolveDoesNotMutateStores(t *testing.T) {
	c := testCatalog(t)
	storedSec, _ := c.SecurityProfile("standard")
	storedAgent, _ := c.AgentConfig("claude")
	secBefore := storedSec.Clone()
	agentBefore := storedAgent.Clone()

	a := project("a")
	a.Overrides.Security.Network.Outbound = ptr(resource.OutboundNone)
	a.Overrides.Security.Network.Proxy.AllowedDomains = []string{"example.com"}
	a.Overrides.Agent.Runtime.Env = map[string]string{"EXTRA": "1"}
	a.Overrides.Agent.Install.Commands = []string{"pip install foo"}

	b := project("b")
	b.Overrides.Security.Agent.Sudo = ptr(false)
	b.Overrides.Security.Install.Mode = ptr(resource.InstallVerified)

	plain := project("plain")

	stores := FromCatalog(c)
	effA, err := Resolve(a, stores)
	if err != nil {
		t.Fatal(err)
	}
	effB, err := Resolve(b, stores)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(a, stores); err != nil {
		t.Fatal(err)
	}
	effPlain, err := Resolve(plain, stores)
	if err != nil {
		t.Fatal(err)
	}

	// Writing into one effective config must not leak anywhere else.
	effA.Security.Network.Proxy.AllowedDomains[0] = "mutated"
	effA.Agent.Runtime.Env["LEAK"] = "yes"

	if !reflect.DeepEqual(storedSec, secBefore) {
		t.Errorf("stored security changed: %+v, want %+v", storedSec, secBefore)
	}
	if !reflect.DeepEqual(storedAgent, agentBefore) {
		t.Errorf("stored agent changed: %+v, want %+v", storedAgent, agentBefore)
	}
	if effB.Security.Network.Outbound != resource.OutboundUnrestricted {
		t.Errorf("project b outbound = %q, want inherited unrestricted", effB.Security.Network.Outbound)
	}
	if effB.Security.Agent.Sudo || effB.Security.Install.Mode != resource.InstallVerified {
		t.Errorf("project b overrides not applied: %+v", effB.Security)
	}
	if !reflect.DeepEqual(effPlain.Security, secBefore) {
		t.Errorf("plain project security = %+v, want unmodified profile", effPlain.Security)
	}
	if _, ok := effPlain.Agent.Runtime.Env["EXTRA"]; ok {
		t.Error("project a agent override leaked into plain project")
	}
}

func TestResolveAgentOverrides(t *testing.T) {
	c := testCatalog(t)
	p := project("api")
	p.Overrides.Agent.Runtime.Env = map[string]string{"DEBUG": "1"}
	p.Overrides.Agent.Auth.LoginRequiresNetwork = ptr(false)
	p.Overrides.Agent.Install.RequiredPackages = []string{}

	eff, err := Resolve(p, FromCatalog(c))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if eff.Agent.Runtime.Env["DEBUG"] != "1" || eff.Agent.Runtime.Env["CLAUDE_CONFIG_DIR"] == "" {
		t.Errorf("env should merge per key, got %v", eff.Agent.Runtime.Env)
	}
	if eff.Agent.LoginNeedsNetwork() {
		t.Error("loginRequiresNetwork override not applied")
	}
	if len(eff.Agent.Install.RequiredPackages) != 0 {
		t.Errorf("explicit empty list should clear packages, got %v", eff.Agent.Install.RequiredPackages)
	}
	if len(eff.Agent.Install.Commands) != 1 {
		t.Errorf("absent commands override should inherit, got %v", eff.Agent.Install.Commands)
	}
}

func TestResolveMissingReferences(t *testing.T) {
	c := testCatalog(t)
	p := project("api")
	p.Environment = "k8s-prod"
	p.Agent = "codex"

	eff, err := Resolve(p, FromCatalog(c))
	if eff != nil {
		t.Fatal("expected no effective config")
	}
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
	want := []MissingReference{
		{resource.KindEnvironment, "k8s-prod"},
		{resource.KindAgentConfig, "codex"},
	}
	if !reflect.DeepEqual(re.Missing, want) {
		t.Errorf("missing = %+v, want %+v", re.Missing, want)
	}
	if got := re.Error(); got != `project "api" references missing Environment "k8s-prod", AgentConfig "codex"` {
		t.Errorf("error = %q", got)
	}
}

func TestResolveCredential(t *testing.T) {
	c := testCatalog(t)
	cred := &resource.Credential{Name: "work", Agent: "claude", Files: []string{".credentials.json"}}
	if err := c.Add(cred); err != nil {
		t.Fatal(err)
	}

	p := project("api")
	p.Credential = "work"
	eff, err := Resolve(p, FromCatalog(c))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if eff.Credential == nil || eff.Credential.Name != "work" {
		t.Fatalf("credential = %+v, want work", eff.Credential)
	}
	eff.Credential.Files[0] = "changed"
	if cred.Files[0] != ".credentials.json" {
		t.Error("resolved credential shares storage with the catalog")
	}

	// A missing credential is left for the advisory stage.
	p.Credential = "personal"
	eff, err = Resolve(p, FromCatalog(c))
	if err != nil {
		t.Fatalf("missing credential should not fail resolution: %v", err)
	}
	if eff.Credential != nil {
		t.Errorf("credential = %+v, want nil", eff.Credential)
	}
}
