package validation

import (
	"fmt"

	"github.com/skuahq/skua/internal/capability"
	"github.com/skuahq/skua/internal/resource"
)

// CheckSecurity evaluates sec's self-constraints in table order. A violated
// requirement is an error, a discouraged combination a warning. It never
// stops early.
func CheckSecurity(sec *resource.SecurityProfile) []Diagnostic {
	var out []Diagnostic
	for _, c := range capability.SelfConstraints(sec) {
		if !c.Violated(sec) {
			continue
		}
		sev := SeverityError
		if c.Relation == capability.DiscouragesValue {
			sev = SeverityWarning
		}
		out = append(out, Diagnostic{
			Severity: sev,
			Stage:    StageConsistency,
			Message:  c.Message(sec),
		})
	}
	return out
}

type environmentRule struct {
	severity Severity
	applies  func(*resource.Environment) bool
	message  func(*resource.Environment) string
	hint     string
}

var environmentRules = []environmentRule{
	{
		severity: SeverityError,
		applies: func(e *resource.Environment) bool {
			return e.Mode == resource.ModeManaged && e.Driver == resource.DriverDocker
		},
		message: func(*resource.Environment) string {
			return "mode=managed requires driver=compose or driver=kubernetes, but driver=docker"
		},
		hint: "The skua sidecar needs multi-container orchestration. Use driver 'compose' for local managed mode.",
	},
	{
		severity: SeverityWarning,
		applies: func(e *resource.Environment) bool {
			return e.Docker.ContainerRuntime != resource.RuntimeDefault && !e.Driver.RunsContainers()
		},
		message: func(e *resource.Environment) string {
			return fmt.Sprintf("docker.containerRuntime=%s is ignored for driver=%s", e.Docker.ContainerRuntime, e.Driver)
		},
		hint: "gVisor and Kata apply to docker and compose drivers only.",
	},
	{
		severity: SeverityWarning,
		applies: func(e *resource.Environment) bool {
			return e.Mode == resource.ModeUnmanaged && e.Driver == resource.DriverDocker &&
				e.Network.Mode == resource.NetworkInternal
		},
		message: func(*resource.Environment) string {
			return "driver=docker with network.mode=internal behaves as network.mode=none"
		},
		hint: "True internal networks require compose. Use network.mode 'none' to be explicit, or switch to driver 'compose'.",
	},
}

// CheckEnvironment evaluates env's self-consistency rules in table order.
func CheckEnvironment(env *resource.Environment) []Diagnostic {
	var out []Diagnostic
	for _, r := range environmentRules {
		if !r.applies(env) {
			continue
		}
		out = append(out, Diagnostic{
			Severity: r.severity,
			Stage:    StageConsistency,
			Message:  r.message(env),
			Hint:     r.hint,
		})
	}
	return out
}

// LintSecurity runs the consistency checker on a profile alone.
func LintSecurity(sec *resource.SecurityProfile) Verdict {
	return newVerdict(sec.Name, CheckSecurity(sec))
}

// LintEnvironment runs the consistency checker on an environment alone.
func LintEnvironment(env *resource.Environment) Verdict {
	return newVerdict(env.Name, CheckEnvironment(env))
}
