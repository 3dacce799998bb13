package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/config"
	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
	"github.com/skuahq/skua/internal/validation"
)

func addCmd(opts *rootOptions) *cobra.Command {
	var dir, repo, sshKey, env, sec, agent, cred string
	var force bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Long:  "Adds a project and validates it. References left empty use the defaults in global.yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !resource.ValidName(name) {
				return fmt.Errorf("invalid project name %q (letters, digits, '-' and '_')", name)
			}
			if (dir == "") == (repo == "") {
				return fmt.Errorf("specify exactly one of --dir or --repo")
			}
			s, err := opts.store()
			if err != nil {
				return err
			}
			if _, err := s.Get(resource.KindProject, name); err == nil && !force {
				return fmt.Errorf("project %q already exists (use --force to replace it)", name)
			} else if err != nil && !errors.Is(err, config.ErrNotFound) {
				return err
			}

			p := &resource.Project{Name: name, Repo: repo, Environment: env, Security: sec, Agent: agent, Credential: cred}
			p.SSH.PrivateKey = sshKey
			if dir != "" {
				if p.Directory, err = config.ExpandHome(dir); err != nil {
					return err
				}
				if fi, err := os.Stat(p.Directory); err != nil || !fi.IsDir() {
					return fmt.Errorf("directory %s does not exist", p.Directory)
				}
			}
			if err := s.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added project %s\n\n", name)

			c, err := s.Load()
			if err != nil {
				return err
			}
			saved, _ := c.Project(name)
			stores := resolve.FromCatalog(c)
			v := validation.Validate(saved, stores)
			printVerdict(newPrinter(cmd.OutOrStdout(), opts.noColor), saved, stores, v)
			if !v.Valid {
				return errInvalid
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dir, "dir", "", "project directory")
	f.StringVar(&repo, "repo", "", "git repository to clone (instead of --dir)")
	f.StringVar(&sshKey, "ssh-key", "", "SSH private key for this project")
	f.StringVar(&env, "env", "", "environment (default from global.yaml)")
	f.StringVar(&sec, "security", "", "security profile (default from global.yaml)")
	f.StringVar(&agent, "agent", "", "agent (default from global.yaml)")
	f.StringVar(&cred, "credential", "", "credential to seed the agent's auth files from")
	f.BoolVar(&force, "force", false, "replace an existing project")
	return cmd
}

func removeCmd(opts *rootOptions) *cobra.Command {
	var purgeData bool
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.store()
			if err != nil {
				return err
			}
			r, err := s.Get(resource.KindProject, args[0])
			if err != nil {
				return err
			}
			p := r.(*resource.Project)
			ok, err := s.Delete(resource.KindProject, p.Name)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(resource.KindProject, p.Name)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed project %s\n", p.Name)

			dataDir := s.ProjectDataDir(p.Name, p.Agent)
			if _, err := os.Stat(dataDir); err != nil {
				return nil
			}
			if !purgeData {
				fmt.Fprintf(out, "  agent data kept at %s (use --purge-data to delete it)\n", dataDir)
				return nil
			}
			if err := os.RemoveAll(dataDir); err != nil {
				return fmt.Errorf("remove agent data: %w", err)
			}
			fmt.Fprintf(out, "  removed agent data at %s\n", dataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&purgeData, "purge-data", false, "also delete the project's agent data directory")
	return cmd
}
