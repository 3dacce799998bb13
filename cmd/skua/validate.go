package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/capability"
	"github.com/skuahq/skua/internal/config"
	"github.com/skuahq/skua/internal/history"
	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
	"github.com/skuahq/skua/internal/validation"
	"github.com/skuahq/skua/internal/watch"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	var all, watchFlag, noRecord bool
	cmd := &cobra.Command{
		Use:   "validate [project]",
		Short: "Check that a project's security profile is enforceable by its environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify a project name or --all")
			}
			format := cmd.Flag("output").Value.String()
			run := func() (bool, error) {
				s, c, err := opts.catalog()
				if err != nil {
					return false, err
				}
				var projects []*resource.Project
				if all {
					projects = c.Projects()
				} else {
					p, err := project(s, c, args[0])
					if err != nil {
						return false, err
					}
					projects = []*resource.Project{p}
				}
				stores := resolve.FromCatalog(c)
				verdicts, err := validation.ValidateAll(cmd.Context(), projects, stores)
				if err != nil {
					return false, err
				}
				if !noRecord {
					record(s, "validate", projects, verdicts)
				}
				return allValid(verdicts), printVerdicts(cmd.OutOrStdout(), opts, format, all, projects, stores, verdicts)
			}

			if watchFlag {
				return watchValidate(cmd, opts, run)
			}
			valid, err := run()
			if err != nil {
				return err
			}
			if !valid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "validate every project")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-validate whenever config files change")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record the verdict in history")
	addOutputFlag(cmd.Flags(), formatText, formatText, formatJSON)
	return cmd
}

func allValid(verdicts []validation.Verdict) bool {
	for _, v := range verdicts {
		if !v.Valid {
			return false
		}
	}
	return true
}

func watchValidate(cmd *cobra.Command, opts *rootOptions, run func() (bool, error)) error {
	s, err := opts.store()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()
	p := newPrinter(out, opts.noColor)
	return watch.New(s.Dir(), 0).Run(ctx, func() error {
		p.printf("%s\n", p.style(p.dim, "── "+s.Dir()+" ──"))
		_, err := run()
		if err != nil {
			// Keep watching; the next save may fix it.
			p.printf("  %s %v\n", p.marker(validation.SeverityError), err)
		}
		return err
	})
}

func printVerdicts(w io.Writer, opts *rootOptions, format string, list bool, projects []*resource.Project, stores resolve.Stores, verdicts []validation.Verdict) error {
	if format == formatJSON {
		if list {
			return writeJSON(w, verdicts)
		}
		return writeJSON(w, verdicts[0])
	}
	p := newPrinter(w, opts.noColor)
	if list && len(projects) == 0 {
		p.printf("No projects configured.\n")
		return nil
	}
	for i, v := range verdicts {
		if i > 0 {
			p.printf("\n")
		}
		printVerdict(p, projects[i], stores, v)
	}
	return nil
}

func printVerdict(p *printer, proj *resource.Project, stores resolve.Stores, v validation.Verdict) {
	p.printf("Project: %s\n", p.style(p.bold, proj.Name))
	p.printf("  Environment:  %s\n", proj.Environment)
	p.printf("  Security:     %s\n", proj.Security)
	p.printf("  Agent:        %s\n", proj.Agent)

	if eff, err := resolve.Resolve(proj, stores); err == nil {
		provided := capability.Provides(eff.Environment)
		required := capability.Requires(eff.Security)
		p.printf("\n  Capabilities:\n")
		for _, c := range capability.All {
			has, needs := provided.Has(c), required.Has(c)
			switch {
			case has && needs:
				p.printf("    %s %s %s\n", p.style(p.ok, "✓"), c, p.style(p.dim, "(required)"))
			case needs:
				p.printf("    %s %s %s\n", p.marker(validation.SeverityError), c, p.style(p.dim, "(required, missing)"))
			case has:
				p.printf("    %s %s\n", p.style(p.dim, "·"), p.style(p.dim, string(c)))
			}
		}
	}

	p.printf("\n")
	p.diagnostics(v.Diagnostics)
	if len(v.Diagnostics) > 0 {
		p.printf("\n")
	}
	p.result(v)
}

// record appends verdicts to the history database. Failures only log.
func record(s *config.Store, command string, projects []*resource.Project, verdicts []validation.Verdict) {
	h, err := history.Open(s.HistoryPath())
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return
	}
	defer h.Close()

	g, err := s.LoadGlobal()
	if err != nil {
		logger.Warn("load global config", "err", err)
		g = &config.Global{}
	}
	for i, v := range verdicts {
		p := projects[i]
		refs := history.Refs{Environment: p.Environment, Security: p.Security, Agent: p.Agent}
		if err := h.Record(history.NewRun(command, refs, v)); err != nil {
			logger.Warn("record verdict", "project", p.Name, "err", err)
			continue
		}
		if g.HistoryLimit > 0 {
			if _, err := h.Prune(p.Name, g.HistoryLimit); err != nil {
				logger.Warn("prune history", "project", p.Name, "err", err)
			}
		}
	}
}
