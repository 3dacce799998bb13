package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skuahq/skua/internal/config"
	"github.com/skuahq/skua/internal/logger"
	"github.com/skuahq/skua/internal/resource"
)

// errInvalid signals that a verdict was printed with errors; main exits 1
// without printing anything more.
var errInvalid = errors.New("configuration invalid")

type rootOptions struct {
	configDir string
	logLevel  string
	logFile   string
	noColor   bool
}

func main() {
	err := newRootCmd().Execute()
	logger.Close()
	if err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "skua",
		Short:         "Run AI coding agents in containers with enforceable security",
		Long:          "Checks that each project's security profile can actually be enforced by its environment before starting the agent container.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if level == "" {
				level = os.Getenv("SKUA_LOG_LEVEL")
			}
			if level == "" {
				if s, err := opts.store(); err == nil {
					if g, err := s.LoadGlobal(); err == nil {
						level = g.LogLevel
					}
				}
			}
			return logger.Init(level, opts.logFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configDir, "config-dir", "", "config directory (default $SKUA_CONFIG_DIR or ~/.config/skua)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $SKUA_LOG_LEVEL or warn)")
	pf.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		initCmd(opts),
		listCmd(opts),
		addCmd(opts),
		removeCmd(opts),
		validateCmd(opts),
		describeCmd(opts),
		runCmd(opts),
		lintCmd(opts),
		schemaCmd(opts),
		historyCmd(opts),
		configCmd(opts),
	)
	return root
}

func (o *rootOptions) store() (*config.Store, error) {
	dir, err := config.ResolveDir(o.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return config.NewStore(dir), nil
}

// catalog loads every resource under the config directory.
func (o *rootOptions) catalog() (*config.Store, *resource.Catalog, error) {
	s, err := o.store()
	if err != nil {
		return nil, nil, err
	}
	if !s.IsInitialized() {
		logger.Warn("config directory not initialized", "dir", s.Dir())
	}
	c, err := s.Load()
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

// project looks up a project, pointing at `skua init` when nothing is set up.
func project(s *config.Store, c *resource.Catalog, name string) (*resource.Project, error) {
	p, ok := c.Project(name)
	if ok {
		return p, nil
	}
	if !s.IsInitialized() {
		return nil, fmt.Errorf("project %q not found (run 'skua init' first)", name)
	}
	return nil, fmt.Errorf("project %q not found in %s", name, s.KindDir(resource.KindProject))
}

func notFound(kind resource.Kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, config.ErrNotFound)
}
