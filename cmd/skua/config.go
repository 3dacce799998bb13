package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/config"
	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resource"
)

func configCmd(opts *rootOptions) *cobra.Command {
	var id identityFlags
	var env, sec, agent, toolDir, image string
	var historyLimit int
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change global defaults",
		Long:  "Without flags, prints global.yaml. With flags, updates the given fields and saves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			g, err := s.LoadGlobal()
			if err != nil {
				return err
			}

			changed := id.apply(cmd, g)
			for _, f := range []struct {
				flag string
				dst  *string
				val  string
			}{
				{"default-env", &g.Defaults.Environment, env},
				{"default-security", &g.Defaults.Security, sec},
				{"default-agent", &g.Defaults.Agent, agent},
				{"tool-dir", &g.ToolDir, toolDir},
				{"image", &g.ImageName, image},
			} {
				if !cmd.Flags().Changed(f.flag) {
					continue
				}
				if f.val != "" && f.flag != "tool-dir" && f.flag != "image" && !resource.ValidName(f.val) {
					return fmt.Errorf("--%s: invalid resource name %q", f.flag, f.val)
				}
				*f.dst = f.val
				changed = true
			}
			if cmd.Flags().Changed("history-limit") {
				g.HistoryLimit = historyLimit
				changed = true
			}

			if changed {
				if err := s.SaveGlobal(g); err != nil {
					return err
				}
				warnMissingDefaults(s, g)
			}
			return writeYAML(cmd.OutOrStdout(), g)
		},
	}
	id.addFlags(cmd)
	cmd.Flags().StringVar(&env, "default-env", "", "default environment for projects that name none")
	cmd.Flags().StringVar(&sec, "default-security", "", "default security profile")
	cmd.Flags().StringVar(&agent, "default-agent", "", "default agent")
	cmd.Flags().StringVar(&toolDir, "tool-dir", "", "directory holding the image build context")
	cmd.Flags().StringVar(&image, "image", "", "base image name")
	cmd.Flags().IntVar(&historyLimit, "history-limit", 0, "verdicts kept per project (0 keeps all)")
	return cmd
}

// warnMissingDefaults logs defaults that point at resources that do not exist.
func warnMissingDefaults(s *config.Store, g *config.Global) {
	for _, ref := range []struct {
		kind resource.Kind
		name string
	}{
		{resource.KindEnvironment, g.Environment()},
		{resource.KindSecurityProfile, g.Security()},
		{resource.KindAgentConfig, g.Agent()},
	} {
		if _, err := s.Get(ref.kind, ref.name); err != nil {
			logger.Warn("default references missing resource", "kind", ref.kind, "name", ref.name, "err", err)
		}
	}
}
