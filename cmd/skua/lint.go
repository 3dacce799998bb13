package main

import (
	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/resource"
	"github.com/skuahq/skua/internal/validation"
)

func lintCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a security profile or environment on its own",
	}
	cmd.AddCommand(
		lintKindCmd(opts, "security [name]", "Check security profiles for contradictory settings", resource.KindSecurityProfile),
		lintKindCmd(opts, "environment [name]", "Check environments for settings that cannot work together", resource.KindEnvironment),
	)
	return cmd
}

func lintKindCmd(opts *rootOptions, use, short string, kind resource.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". Without a name every resource of the kind is checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := opts.catalog()
			if err != nil {
				return err
			}
			names := c.Names(kind)
			if len(args) == 1 {
				names = args
			}
			verdicts := make([]validation.Verdict, 0, len(names))
			for _, name := range names {
				v, err := lint(c, kind, name)
				if err != nil {
					return err
				}
				verdicts = append(verdicts, v)
			}

			if cmd.Flag("output").Value.String() == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), verdicts); err != nil {
					return err
				}
			} else {
				p := newPrinter(cmd.OutOrStdout(), opts.noColor)
				if len(verdicts) == 0 {
					p.printf("No %s resources in %s\n", kind, s.KindDir(kind))
				}
				for i, v := range verdicts {
					if i > 0 {
						p.printf("\n")
					}
					p.printf("%s: %s\n", kind, p.style(p.bold, v.Project))
					p.diagnostics(v.Diagnostics)
					p.result(v)
				}
			}
			if !allValid(verdicts) {
				return errInvalid
			}
			return nil
		},
	}
	addOutputFlag(cmd.Flags(), formatText, formatText, formatJSON)
	return cmd
}

func lint(c *resource.Catalog, kind resource.Kind, name string) (validation.Verdict, error) {
	switch kind {
	case resource.KindSecurityProfile:
		sec, ok := c.SecurityProfile(name)
		if !ok {
			return validation.Verdict{}, notFound(kind, name)
		}
		return validation.LintSecurity(sec), nil
	default:
		env, ok := c.Environment(name)
		if !ok {
			return validation.Verdict{}, notFound(kind, name)
		}
		return validation.LintEnvironment(env), nil
	}
}
