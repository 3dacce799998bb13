// Package validation decides whether a project's security profile is
// enforceable by its environment. Everything here is pure: the same inputs
// always produce the same Verdict and nothing is written anywhere.
package validation

import "slices"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Stage names the validation step that produced a diagnostic.
type Stage string

const (
	StageResolution  Stage = "resolution"
	StageConsistency Stage = "consistency"
	StageCapability  Stage = "capability"
	StageAdvisory    Stage = "advisory"
)

// Diagnostic is one finding.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Stage    Stage    `json:"stage" yaml:"stage"`
	Message  string   `json:"message" yaml:"message"`
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Verdict is the outcome of validating one project.
type Verdict struct {
	Project     string       `json:"project" yaml:"project"`
	Valid       bool         `json:"valid" yaml:"valid"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Errors returns the error diagnostics in order.
func (v Verdict) Errors() []Diagnostic { return v.filter(SeverityError) }

// Warnings returns the warning diagnostics in order.
func (v Verdict) Warnings() []Diagnostic { return v.filter(SeverityWarning) }

func (v Verdict) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range v.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// newVerdict orders diags errors first, keeping step order within each
// severity, and derives Valid from them.
func newVerdict(project string, diags []Diagnostic) Verdict {
	ordered := slices.Clone(diags)
	slices.SortStableFunc(ordered, func(a, b Diagnostic) int {
		return severityRank(a.Severity) - severityRank(b.Severity)
	})
	if ordered == nil {
		ordered = []Diagnostic{}
	}
	valid := true
	for _, d := range ordered {
		if d.Severity == SeverityError {
			valid = false
			break
		}
	}
	return Verdict{Project: project, Valid: valid, Diagnostics: ordered}
}

func severityRank(s Severity) int {
	if s == SeverityError {
		return 0
	}
	return 1
}
