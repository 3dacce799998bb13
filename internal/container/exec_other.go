//go:build !unix

package container

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/skuahq/skua/internal/logger"
)

// Exec runs the plan's docker command attached to the terminal and exits
// with its status.
func Exec(p *Plan) error {
	cmd := exec.Command(p.Args[0], p.Args[1:]...)
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	logger.Debug("exec", "cmd", p.String())
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", p.Args[0], err)
	}
	os.Exit(0)
	return nil
}
