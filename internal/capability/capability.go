// Package capability holds the closed capability vocabulary and the pure
// tables that derive what an Environment provides and what a
// SecurityProfile requires.
//
// The provides and requires tables share one vocabulary: adding a
// capability means adding it to All and to every table that can produce it,
// in the same change.
package capability

import (
	"slices"
	"strings"
)

// Capability is a boolean fact about what an environment makes available.
type Capability string

const (
	NetworkInternet  Capability = "network.internet"
	NetworkIsolation Capability = "network.isolation"
	NetworkInternal  Capability = "network.internal"
	Sidecar          Capability = "sidecar"
	TrustedProxy     Capability = "trusted.proxy"
	TrustedLog       Capability = "trusted.log"
	TrustedMCP       Capability = "trusted.mcp"
	ContainerSudo    Capability = "container.sudo"
	ContainerNoSudo  Capability = "container.no-sudo"
	IsolationGVisor  Capability = "isolation.gvisor"
	IsolationKata    Capability = "isolation.kata"
	AuditDockerDiff  Capability = "audit.docker-diff"
)

// Version identifies the vocabulary below. Bump it when a capability is
// added, removed or changes meaning.
const Version = 1

// All is the vocabulary in canonical order. Every list of capabilities the
// engine emits follows this order.
var All = []Capability{
	NetworkInternet,
	NetworkIsolation,
	NetworkInternal,
	Sidecar,
	TrustedProxy,
	TrustedLog,
	TrustedMCP,
	ContainerSudo,
	ContainerNoSudo,
	IsolationGVisor,
	IsolationKata,
	AuditDockerDiff,
}

func (c Capability) Known() bool { return slices.Contains(All, c) }

// Set is an unordered set of capabilities.
type Set map[Capability]struct{}

func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	s.Add(caps...)
	return s
}

func (s Set) Add(caps ...Capability) {
	for _, c := range caps {
		s[c] = struct{}{}
	}
}

func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Minus returns the members of s missing from other, in canonical order.
func (s Set) Minus(other Set) []Capability {
	var out []Capability
	for _, c := range All {
		if s.Has(c) && !other.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Sorted returns the members of s in canonical order.
func (s Set) Sorted() []Capability {
	var out []Capability
	for _, c := range All {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Set) String() string {
	caps := s.Sorted()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

var hints = map[Capability]string{
	NetworkInternet:  "Change network.mode to 'bridge' or 'host'.",
	NetworkIsolation: "Change network.mode to 'bridge', 'internal', or 'none'.",
	NetworkInternal:  "Change network.mode to 'internal' or 'none'.",
	Sidecar:          "Switch to mode 'managed' (requires driver 'compose' or 'kubernetes').",
	TrustedProxy:     "Switch to mode 'managed' (requires driver 'compose' or 'kubernetes').",
	TrustedLog:       "Switch to mode 'managed' (requires driver 'compose' or 'kubernetes').",
	TrustedMCP:       "Switch to mode 'managed' for trusted MCP endpoints.",
	ContainerSudo:    "Every driver can grant sudo; check the image build.",
	ContainerNoSudo:  "Every driver can drop sudo; check the image build.",
	IsolationGVisor:  "Set docker.containerRuntime to 'runsc' on a 'docker' or 'compose' driver.",
	IsolationKata:    "Set docker.containerRuntime to 'kata' on a 'docker' or 'compose' driver.",
	AuditDockerDiff:  "Set cleanup to 'persistent' (non-ephemeral containers) on a 'docker' or 'compose' driver.",
}

// Hint returns a static suggestion for obtaining c.
func Hint(c Capability) string {
	return hints[c]
}
