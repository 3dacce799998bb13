package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/resource"
)

func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := opts.catalog()
			if err != nil {
				return err
			}
			projects := c.Projects()
			if len(projects) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No projects in %s\n", s.KindDir(resource.KindProject))
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENVIRONMENT\tSECURITY\tAGENT\tCREDENTIAL\tSOURCE")
			for _, p := range projects {
				source := p.Directory
				if source == "" {
					source = p.Repo
				}
				if source == "" {
					source = "-"
				}
				cred := p.Credential
				if cred == "" {
					cred = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.Name, p.Environment, p.Security, p.Agent, cred, source)
			}
			return w.Flush()
		},
	}
}
