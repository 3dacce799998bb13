package validation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
)

// Validate resolves p against stores and checks that the effective security
// profile is self-consistent and enforceable by the effective environment.
// Steps run in a fixed order and every finding is collected.
func Validate(p *resource.Project, stores resolve.Stores) Verdict {
	eff, err := resolve.Resolve(p, stores)
	if err != nil {
		return newVerdict(p.Name, []Diagnostic{resolutionDiagnostic(err)})
	}
	return check(eff)
}

// check runs the steps after resolution on an effective config.
func check(eff *resolve.EffectiveConfig) Verdict {
	var diags []Diagnostic
	diags = append(diags, CheckSecurity(eff.Security)...)
	diags = append(diags, Match(eff.Environment, eff.Security)...)
	diags = append(diags, checkAdvisory(eff)...)
	diags = append(diags, environmentAdvisories(eff.Environment)...)
	return newVerdict(eff.Project.Name, diags)
}

// environmentAdvisories reports the environment's own consistency findings
// as warnings. They never flip a project verdict; `skua lint environment`
// reports them at full severity.
func environmentAdvisories(env *resource.Environment) []Diagnostic {
	diags := CheckEnvironment(env)
	for i := range diags {
		diags[i].Severity = SeverityWarning
		diags[i].Stage = StageAdvisory
		diags[i].Message = fmt.Sprintf("environment '%s': %s", env.Name, diags[i].Message)
	}
	return diags
}

func resolutionDiagnostic(err error) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Stage: StageResolution, Message: err.Error()}
	var re *resolve.ResolutionError
	if errors.As(err, &re) && len(re.Missing) > 0 {
		d.Hint = fmt.Sprintf("Create the missing %s or fix the reference in project '%s'.", re.Missing[0].Kind, re.Project)
	}
	return d
}

func checkAdvisory(eff *resolve.EffectiveConfig) []Diagnostic {
	var out []Diagnostic
	if eff.Agent.LoginNeedsNetwork() && eff.Security.Network.Outbound == resource.OutboundNone {
		out = append(out, Diagnostic{
			Severity: SeverityWarning,
			Stage:    StageAdvisory,
			Message: fmt.Sprintf("agent '%s' login command %q needs network access, but security '%s' sets network.outbound=none",
				eff.Agent.Name, eff.Agent.Auth.LoginCommand, eff.Security.Name),
			Hint: "Log in once with network access and persist the credentials, or add a Credential.",
		})
	}
	if name := eff.Project.Credential; name != "" && eff.Credential == nil {
		out = append(out, Diagnostic{
			Severity: SeverityWarning,
			Stage:    StageAdvisory,
			Message:  fmt.Sprintf("project '%s' references credential '%s', which does not exist", eff.Project.Name, name),
			Hint:     fmt.Sprintf("Create Credential '%s' or clear spec.credential; the agent falls back to its default auth directory.", name),
		})
	}
	if eff.Project.Directory == "" && eff.Project.Repo == "" {
		out = append(out, Diagnostic{
			Severity: SeverityWarning,
			Stage:    StageAdvisory,
			Message:  fmt.Sprintf("project '%s' has neither directory nor repo set", eff.Project.Name),
			Hint:     "Set spec.directory to a local path or spec.repo to a git URL.",
		})
	}
	return out
}

// ValidateAll validates every project concurrently. The returned verdicts
// are in the same order as projects. stores must not change while it runs.
func ValidateAll(ctx context.Context, projects []*resource.Project, stores resolve.Stores) ([]Verdict, error) {
	verdicts := make([]Verdict, len(projects))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			verdicts[i] = Validate(p, stores)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}
