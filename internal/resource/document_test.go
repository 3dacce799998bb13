package resource

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeEnvironmentDefaults(t *testing.T) {
	r, err := Decode([]byte(`apiVersion: skua/v1
kind: Environment
metadata:
  name: local-compose
spec:
  mode: managed
  driver: compose
  network:
    mode: internal
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	env, ok := r.(*Environment)
	if !ok {
		t.Fatalf("got %T, want *Environment", r)
	}
	if env.Name != "local-compose" {
		t.Errorf("name = %q, want local-compose", env.Name)
	}
	if env.Mode != ModeManaged || env.Driver != DriverCompose || env.Network.Mode != NetworkInternal {
		t.Errorf("unexpected shape: %+v", env)
	}
	if env.Compose.Cleanup != CleanupEphemeral {
		t.Errorf("compose cleanup = %q, want default ephemeral", env.Compose.Cleanup)
	}
	if env.Persistence.Mode != PersistBind {
		t.Errorf("persistence mode = %q, want default bind", env.Persistence.Mode)
	}
	if env.Kubernetes.Namespace != "skua" {
		t.Errorf("kubernetes namespace = %q, want skua", env.Kubernetes.Namespace)
	}
}

func TestDecodeSecurityProfile(t *testing.T) {
	r, err := Decode([]byte(`apiVersion: skua/v1
kind: SecurityProfile
metadata:
  name: hardened
spec:
  network:
    outbound: proxy
    proxy:
      allowedDomains: [pypi.org, registry.npmjs.org]
  agent:
    sudo: false
  install:
    mode: verified
  audit:
    mode: trusted
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sec := r.(*SecurityProfile)
	if sec.Network.Outbound != OutboundProxy {
		t.Errorf("outbound = %q, want proxy", sec.Network.Outbound)
	}
	if !sec.Network.Proxy.LogRequests {
		t.Error("logRequests should default to true")
	}
	if len(sec.Network.Proxy.AllowedDomains) != 2 {
		t.Errorf("allowedDomains = %v", sec.Network.Proxy.AllowedDomains)
	}
	if sec.ImageUpdates.Mode != ImageUpdatesDisabled || sec.ImageUpdates.Source != ImageSourceAudit {
		t.Errorf("imageUpdates = %+v, want defaults", sec.ImageUpdates)
	}
	if sec.Isolation.Runtime != IsolationDefault {
		t.Errorf("isolation runtime = %q, want default", sec.Isolation.Runtime)
	}
}

func TestDecodeRejectsBadEnum(t *testing.T) {
	_, err := Decode([]byte(`apiVersion: skua/v1
kind: Environment
metadata:
  name: broken
spec:
  network:
    mode: wifi
`))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Field != "spec.network.mode" {
		t.Errorf("field = %q, want spec.network.mode", se.Field)
	}
	if se.Value != "wifi" {
		t.Errorf("value = %q, want wifi", se.Value)
	}
	if strings.Join(se.Allowed, ",") != "none,bridge,internal,host" {
		t.Errorf("allowed = %v", se.Allowed)
	}
	if !strings.Contains(se.Error(), `Environment "broken"`) {
		t.Errorf("error %q should name the resource", se.Error())
	}
}

func TestDecodeRejectsBadOverrideEnum(t *testing.T) {
	_, err := Decode([]byte(`apiVersion: skua/v1
kind: Project
metadata:
  name: api
spec:
  environment: local-docker
  overrides:
    security:
      audit:
        mode: paranoid
`))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Field != "spec.overrides.security.audit.mode" {
		t.Errorf("field = %q", se.Field)
	}
	if strings.Join(se.Allowed, ",") != "none,advisory,trusted" {
		t.Errorf("allowed = %v", se.Allowed)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode([]byte("apiVersion: skua/v1\nkind: Cluster\nmetadata:\n  name: x\n"))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Field != "kind" || se.Value != "Cluster" {
		t.Errorf("got field=%q value=%q", se.Field, se.Value)
	}
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	_, err := Decode([]byte(`apiVersion: skua/v1
kind: SecurityProfile
metadata:
  name: typo
spec:
  netwrok:
    outbound: none
`))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if !strings.Contains(se.Reason, "netwrok") {
		t.Errorf("reason %q should mention the unknown field", se.Reason)
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"wrong api version", "apiVersion: skua/v2\nkind: Project\nmetadata:\n  name: p\n", "apiVersion"},
		{"missing name", "apiVersion: skua/v1\nkind: Project\n", "metadata.name"},
		{"bad name", "apiVersion: skua/v1\nkind: Project\nmetadata:\n  name: ../etc\n", "metadata.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SchemaError", err)
			}
			if se.Field != tt.field {
				t.Errorf("field = %q, want %q", se.Field, tt.field)
			}
		})
	}
}

func TestEncodeRoundTripKeepsName(t *testing.T) {
	agent := &AgentConfig{
		Name: "claude",
		Auth: AgentAuthSpec{LoginCommand: "claude login"},
	}
	data, err := Encode(agent)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), "kind: AgentConfig") {
		t.Errorf("encoded doc missing kind:\n%s", data)
	}
	r, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := r.(*AgentConfig)
	if got.Name != "claude" || got.Auth.LoginCommand != "claude login" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestLoginNeedsNetwork(t *testing.T) {
	no := false
	tests := []struct {
		name string
		auth AgentAuthSpec
		want bool
	}{
		{"no login command", AgentAuthSpec{}, false},
		{"login command defaults to network", AgentAuthSpec{LoginCommand: "claude login"}, true},
		{"explicitly offline", AgentAuthSpec{LoginCommand: "tool auth --file", LoginRequiresNetwork: &no}, false},
	}
	for _, tt := range tests {
		a := &AgentConfig{Name: "a", Auth: tt.auth}
		if got := a.LoginNeedsNetwork(); got != tt.want {
			t.Errorf("%s: LoginNeedsNetwork() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestJSONSchemaListsEnums(t *testing.T) {
	s, err := JSONSchema(KindEnvironment)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"managed"`, `"kubernetes"`, `"internal"`, `"skua/v1"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("schema missing %s", want)
		}
	}
	if _, err := JSONSchema(Kind("Cluster")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestEnumValuesAreValid(t *testing.T) {
	enums := []Enum{
		Mode(""), Driver(""), NetworkMode(""), HostRuntime(""), Cleanup(""),
		ContainerRuntime(""), PersistenceMode(""), Outbound(""), InstallMode(""),
		AuditMode(""), ImageUpdateMode(""), ImageUpdateSource(""), IsolationRuntime(""),
	}
	for _, e := range enums {
		if len(e.Values()) == 0 {
			t.Errorf("%T has no values", e)
		}
	}
	if Mode("sidecar").Valid() {
		t.Error("Mode(sidecar) should be invalid")
	}
	if !ContainerRuntime("").Valid() {
		t.Error("empty container runtime means engine default and should be valid")
	}
}

func TestDecodeRejectsNullEnum(t *testing.T) {
	_, err := Decode([]byte(`apiVersion: skua/v1
kind: SecurityProfile
metadata:
  name: airgap
spec:
  network:
    outbound: ~
`))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Field != "spec.network.outbound" {
		t.Errorf("field = %q, want spec.network.outbound", se.Field)
	}
	if se.Value != "null" {
		t.Errorf("value = %q, want null", se.Value)
	}
	if strings.Join(se.Allowed, ",") != "unrestricted,none,proxy" {
		t.Errorf("allowed = %v", se.Allowed)
	}
}

func TestDecodeNullOverrideMeansUnset(t *testing.T) {
	r, err := Decode([]byte(`apiVersion: skua/v1
kind: Project
metadata:
  name: web
spec:
  directory: /src/web
  overrides:
    security:
      network:
        outbound: ~
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := r.(*Project)
	if p.Overrides.Security.Network.Outbound != nil {
		t.Errorf("outbound override = %v, want nil", *p.Overrides.Security.Network.Outbound)
	}
}

func TestDecodeRejectsMultipleDocuments(t *testing.T) {
	_, err := Decode([]byte(`apiVersion: skua/v1
kind: SecurityProfile
metadata:
  name: open
spec:
  network:
    outbound: unrestricted
---
apiVersion: skua/v1
kind: SecurityProfile
metadata:
  name: airgap
spec:
  network:
    outbound: none
`))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if !strings.Contains(se.Error(), "more than one document") {
		t.Errorf("error %q should mention the extra document", se.Error())
	}
}
