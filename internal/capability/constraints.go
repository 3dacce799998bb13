package capability

import (
	"fmt"
	"strconv"

	"github.com/skuahq/skua/internal/resource"
)

// Field is a dotted path to a SecurityProfile sub-setting.
type Field string

const (
	FieldOutbound    Field = "network.outbound"
	FieldSudo        Field = "agent.sudo"
	FieldInstallMode Field = "install.mode"
	FieldAuditMode   Field = "audit.mode"
	FieldImageSource Field = "imageUpdates.source"
	FieldImageMode   Field = "imageUpdates.mode"
	FieldIsolation   Field = "isolation.runtime"
)

// Value returns the string form of field f on sec.
func Value(sec *resource.SecurityProfile, f Field) string {
	switch f {
	case FieldOutbound:
		return string(sec.Network.Outbound)
	case FieldSudo:
		return strconv.FormatBool(sec.Agent.Sudo)
	case FieldInstallMode:
		return string(sec.Install.Mode)
	case FieldAuditMode:
		return string(sec.Audit.Mode)
	case FieldImageSource:
		return string(sec.ImageUpdates.Source)
	case FieldImageMode:
		return string(sec.ImageUpdates.Mode)
	case FieldIsolation:
		return string(sec.Isolation.Runtime)
	}
	panic(fmt.Sprintf("capability: unknown security field %q", f))
}

// FieldValue pins a field to one value.
type FieldValue struct {
	Field Field
	Value string
}

func (fv FieldValue) String() string { return string(fv.Field) + "=" + fv.Value }

// Relation is how a triggered constraint constrains its target.
type Relation int

const (
	// RequiresValue: the target field must hold the target value.
	RequiresValue Relation = iota
	// DiscouragesValue: the target field should not hold the target value.
	DiscouragesValue
)

// Constraint says: when If holds, Then is required (or discouraged).
type Constraint struct {
	If       FieldValue
	Then     FieldValue
	Relation Relation
	Reason   string
}

// Violated reports whether a constraint that applies to sec is broken.
func (c Constraint) Violated(sec *resource.SecurityProfile) bool {
	actual := Value(sec, c.Then.Field)
	if c.Relation == RequiresValue {
		return actual != c.Then.Value
	}
	return actual == c.Then.Value
}

// Message describes a violation of c on sec.
func (c Constraint) Message(sec *resource.SecurityProfile) string {
	if c.Relation == RequiresValue {
		return fmt.Sprintf("%s requires %s, but %s=%s",
			c.If, c.Then, c.Then.Field, Value(sec, c.Then.Field))
	}
	return fmt.Sprintf("%s with %s: %s", c.If, c.Then, c.Reason)
}

// constraints is evaluated in declaration order; diagnostic order follows it.
var constraints = []Constraint{
	{
		If:     FieldValue{FieldInstallMode, string(resource.InstallVerified)},
		Then:   FieldValue{FieldSudo, "false"},
		Reason: "agent could bypass the verifying proxy with sudo",
	},
	{
		If:     FieldValue{FieldInstallMode, string(resource.InstallAdvisory)},
		Then:   FieldValue{FieldSudo, "true"},
		Reason: "agent needs sudo to install packages",
	},
	{
		If:     FieldValue{FieldInstallMode, string(resource.InstallUnrestricted)},
		Then:   FieldValue{FieldSudo, "true"},
		Reason: "agent needs sudo to install packages",
	},
	{
		If:     FieldValue{FieldAuditMode, string(resource.AuditTrusted)},
		Then:   FieldValue{FieldOutbound, string(resource.OutboundProxy)},
		Reason: "trusted audit requires proxy mediation",
	},
	{
		If:     FieldValue{FieldImageSource, string(resource.ImageSourceProxy)},
		Then:   FieldValue{FieldAuditMode, string(resource.AuditTrusted)},
		Reason: "proxy install records only exist under trusted audit",
	},
	{
		If:       FieldValue{FieldInstallMode, string(resource.InstallNone)},
		Then:     FieldValue{FieldSudo, "true"},
		Relation: DiscouragesValue,
		Reason:   "agent can still install packages directly via sudo",
	},
	{
		If:       FieldValue{FieldOutbound, string(resource.OutboundProxy)},
		Then:     FieldValue{FieldSudo, "true"},
		Relation: DiscouragesValue,
		Reason:   "agent could bypass the proxy via raw sockets or iptables changes",
	},
	{
		If:       FieldValue{FieldImageMode, string(resource.ImageUpdatesSuggest)},
		Then:     FieldValue{FieldAuditMode, string(resource.AuditNone)},
		Relation: DiscouragesValue,
		Reason:   "no install data will be available for image updates",
	},
	{
		If:       FieldValue{FieldImageMode, string(resource.ImageUpdatesAuto)},
		Then:     FieldValue{FieldAuditMode, string(resource.AuditNone)},
		Relation: DiscouragesValue,
		Reason:   "no install data will be available for image updates",
	},
}

// Constraints returns the full constraint table in declaration order.
func Constraints() []Constraint {
	out := make([]Constraint, len(constraints))
	copy(out, constraints)
	return out
}

// SelfConstraints returns the constraints sec's own values put on its other
// fields, in declaration order.
func SelfConstraints(sec *resource.SecurityProfile) []Constraint {
	var out []Constraint
	for _, c := range constraints {
		if Value(sec, c.If.Field) == c.If.Value {
			out = append(out, c)
		}
	}
	return out
}
