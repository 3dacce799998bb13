package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/config"
	"github.com/skuahq/skua/internal/container"
	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resolve"
	"github.com/skuahq/skua/internal/resource"
	"github.com/skuahq/skua/internal/validation"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var dryRun, detach bool
	var image string
	cmd := &cobra.Command{
		Use:   "run <project>",
		Short: "Validate a project and start its agent container",
		Long:  "Validates the project first and refuses to start anything when the verdict has errors.",
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
			stores := resolve.FromCatalog(c)
			v := validation.Validate(p, stores)
			record(s, "run", []*resource.Project{p}, []validation.Verdict{v})

			out := cmd.ErrOrStderr()
			if dryRun {
				out = cmd.OutOrStdout()
			}
			pr := newPrinter(out, opts.noColor)
			if !v.Valid {
				printVerdict(pr, p, stores, v)
				return errInvalid
			}
			pr.diagnostics(v.Warnings())

			eff, err := resolve.Resolve(p, stores)
			if err != nil {
				return err
			}
			g, err := s.LoadGlobal()
			if err != nil {
				return err
			}
			launch, err := launchOptions(s, g, eff, image, detach, dryRun)
			if err != nil {
				return err
			}
			plan, err := container.BuildRunCommand(eff, launch)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), plan.String())
				return nil
			}
			logger.Info("starting container", "project", p.Name, "image", launch.Image)
			return container.Exec(plan)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the docker command instead of running it")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run the container in the background")
	cmd.Flags().StringVar(&image, "image", "", "override the image to run")
	return cmd
}

// launchOptions prepares host-side state for a launch: the agent's data
// directory for bind persistence and a clone of the project repo.
func launchOptions(s *config.Store, g *config.Global, eff *resolve.EffectiveConfig, image string, detach, dryRun bool) (container.Options, error) {
	p := eff.Project
	opts := container.Options{Image: image, Detach: detach}
	if opts.Image == "" {
		opts.Image = container.ImageForProject(g.Image(), p)
	}

	remote := container.RemoteHost(eff) != ""
	if eff.Environment.Persistence.Mode == resource.PersistBind && !remote {
		opts.DataDir = s.ProjectDataDir(p.Name, eff.Agent.Name)
		if !dryRun {
			if err := os.MkdirAll(opts.DataDir, 0o700); err != nil {
				return opts, fmt.Errorf("create data dir: %w", err)
			}
		}
	}

	if p.Repo != "" && p.Directory == "" {
		if remote {
			opts.RepoVolume = fmt.Sprintf("skua-%s-repo", p.Name)
			return opts, nil
		}
		dir := filepath.Join(s.Dir(), "repos", p.Name)
		if !dryRun {
			if err := cloneRepo(p.Repo, dir); err != nil {
				return opts, err
			}
		}
		p.Directory = dir
	}
	return opts, nil
}

// cloneRepo clones repo into dir unless dir already holds a checkout.
func cloneRepo(repo, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create repos dir: %w", err)
	}
	logger.Info("cloning repo", "repo", repo, "dir", dir)
	c := exec.Command("git", "clone", repo, dir)
	c.Stdout = os.Stderr
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("clone %s: %w", repo, err)
	}
	return nil
}
