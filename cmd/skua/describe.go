package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/capability"
	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
)

// description is the serialized EffectiveConfig of one project.
type description struct {
	Project      any              `yaml:"project" json:"project"`
	Environment  any              `yaml:"environment" json:"environment"`
	Security     any              `yaml:"security" json:"security"`
	Agent        any              `yaml:"agent" json:"agent"`
	Credential   any              `yaml:"credential,omitempty" json:"credential,omitempty"`
	Capabilities capabilityReport `yaml:"capabilities" json:"capabilities"`
}

type capabilityReport struct {
	Provided []capability.Capability `yaml:"provided" json:"provided"`
	Required []capability.Capability `yaml:"required" json:"required"`
	Missing  []capability.Capability `yaml:"missing" json:"missing"`
}

func describeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <project>",
		Short: "Print a project's effective configuration after overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := opts.catalog()
			if err != nil {
				return err
			}
			p, err := project(s, c, args[0])
			if err != nil {
				return err
			}
			eff, err := resolve.Resolve(p, resolve.FromCatalog(c))
			if err != nil {
				return err
			}
			d, err := describe(eff)
			if err != nil {
				return err
			}
			if cmd.Flag("output").Value.String() == formatJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			return writeYAML(cmd.OutOrStdout(), d)
		},
	}
	addOutputFlag(cmd.Flags(), formatYAML, formatYAML, formatJSON)
	return cmd
}

func describe(eff *resolve.EffectiveConfig) (*description, error) {
	d := &description{}
	for _, part := range []struct {
		dst *any
		r   resource.Resource
	}{
		{&d.Project, eff.Project},
		{&d.Environment, eff.Environment},
		{&d.Security, eff.Security},
		{&d.Agent, eff.Agent},
	} {
		doc, err := resource.ToDocument(part.r)
		if err != nil {
			return nil, fmt.Errorf("encode %s %q: %w", part.r.ResourceKind(), part.r.ResourceName(), err)
		}
		*part.dst = doc
	}
	if eff.Credential != nil {
		doc, err := resource.ToDocument(eff.Credential)
		if err != nil {
			return nil, fmt.Errorf("encode %s %q: %w", resource.KindCredential, eff.Credential.Name, err)
		}
		d.Credential = doc
	}

	provided := capability.Provides(eff.Environment)
	required := capability.Requires(eff.Security)
	d.Capabilities = capabilityReport{
		Provided: provided.Sorted(),
		Required: required.Sorted(),
		Missing:  required.Minus(provided),
	}
	if d.Capabilities.Missing == nil {
		d.Capabilities.Missing = []capability.Capability{}
	}
	return d, nil
}
