package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/config"
)

func initCmd(opts *rootOptions) *cobra.Command {
	var force bool
	var id identityFlags
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config directory and install the preset resources",
		Long:  "Installs the shipped environments, security profiles and agents, and writes global.yaml. Existing files are kept unless --force is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			n, err := s.InstallPresets(force)
			if err != nil {
				return err
			}
			g, err := s.LoadGlobal()
			if err != nil {
				return err
			}
			id.apply(cmd, g)
			if err := s.SaveGlobal(g); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized %s\n", s.Dir())
			fmt.Fprintf(out, "  installed %s\n", plural(n, "preset"))
			fmt.Fprintf(out, "  defaults: environment=%s security=%s agent=%s\n", g.Environment(), g.Security(), g.Agent())
			if g.Git.Name == "" {
				fmt.Fprintln(out, "  no git identity set (skua config --git-name NAME --git-email EMAIL)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite preset files that already exist")
	id.addFlags(cmd)
	return cmd
}

// identityFlags are the global.yaml fields settable from init and config.
type identityFlags struct {
	gitName, gitEmail, sshKey string
}

func (f *identityFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gitName, "git-name", "", "git author name for agent commits")
	cmd.Flags().StringVar(&f.gitEmail, "git-email", "", "git author email for agent commits")
	cmd.Flags().StringVar(&f.sshKey, "ssh-key", "", "default SSH private key mounted into containers")
}

// apply copies flags the user set into g.
func (f *identityFlags) apply(cmd *cobra.Command, g *config.Global) bool {
	changed := false
	if cmd.Flags().Changed("git-name") {
		g.Git.Name = f.gitName
		changed = true
	}
	if cmd.Flags().Changed("git-email") {
		g.Git.Email = f.gitEmail
		changed = true
	}
	if cmd.Flags().Changed("ssh-key") {
		g.Defaults.SSHKey = f.sshKey
		changed = true
	}
	return changed
}
