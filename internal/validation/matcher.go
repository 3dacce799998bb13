package validation

import (
	"fmt"

	"github.com/skuahq/skua/internal/capability"
	"github.com/skuahq/skua/internal/resource"
)

// Match reports every capability sec requires that env does not provide, in
// canonical capability order. No output means every requirement is met.
func Match(env *resource.Environment, sec *resource.SecurityProfile) []Diagnostic {
	return matchSets(env, sec, capability.Provides(env), capability.Requires(sec))
}

func matchSets(env *resource.Environment, sec *resource.SecurityProfile, provided, required capability.Set) []Diagnostic {
	var out []Diagnostic
	for _, c := range required.Minus(provided) {
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Stage:    StageCapability,
			Message: fmt.Sprintf(
				"security '%s' requires capability '%s', but environment '%s' (mode: %s, driver: %s, network: %s) does not provide it",
				sec.Name, c, env.Name, env.Mode, env.Driver, env.Network.Mode),
			Hint: capability.Hint(c),
		})
	}
	return out
}
