package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/history"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var verbose bool
	cmd := &cobra.Command{
		Use:   "history <project>",
		Short: "Show recorded validation verdicts for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			h, err := history.Open(s.HistoryPath())
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.List(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cmd.Flag("output").Value.String() == formatJSON {
				if runs == nil {
					runs = []*history.Run{}
				}
				return writeJSON(out, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintf(out, "No recorded verdicts for %s\n", args[0])
				return nil
			}

			p := newPrinter(out, opts.noColor)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tCOMMAND\tRESULT\tERRORS\tWARNINGS\tREFS")
			for _, r := range runs {
				result := p.style(p.ok, "valid")
				if !r.Valid {
					result = p.style(p.bad, "invalid")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s/%s/%s\n",
					r.ID[:8], r.RecordedAt.Local().Format("2006-01-02 15:04:05"), r.Command, result,
					r.Errors, r.Warnings, r.Environment, r.Security, r.Agent)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if verbose {
				for _, r := range runs {
					if len(r.Diagnostics) == 0 {
						continue
					}
					p.printf("\n%s\n", r.ID[:8])
					p.diagnostics(r.Diagnostics)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of verdicts to show (0 for all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print each verdict's diagnostics")
	addOutputFlag(cmd.Flags(), formatText, formatText, formatJSON)
	return cmd
}
