package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/resource"
)

var kindAliases = map[string]resource.Kind{
	"environment":      resource.KindEnvironment,
	"env":              resource.KindEnvironment,
	"securityprofile":  resource.KindSecurityProfile,
	"security-profile": resource.KindSecurityProfile,
	"security":         resource.KindSecurityProfile,
	"agentconfig":      resource.KindAgentConfig,
	"agent":            resource.KindAgentConfig,
	"credential":       resource.KindCredential,
	"project":          resource.KindProject,
}

// parseKind accepts a document kind case-insensitively, or a short alias.
func parseKind(s string) (resource.Kind, error) {
	if k, ok := kindAliases[strings.ToLower(s)]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown kind %q (want one of %s)", s, strings.Join(resource.Kind("").Values(), ", "))
}

func schemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <kind>",
		Short: "Print the JSON Schema of a resource document",
		Long:  "Print the JSON Schema of a resource document. Kinds: Environment, SecurityProfile, AgentConfig, Credential, Project.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			schema, err := resource.JSONSchema(kind)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), schema)
		},
	}
}
