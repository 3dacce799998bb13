//go:build unix

package container

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/skuahq/skua/internal/logger"
)

// Exec replaces the current process with the plan's docker command.
func Exec(p *Plan) error {
	binary, err := exec.LookPath(p.Args[0])
	if err != nil {
		return fmt.Errorf("find %s: %w", p.Args[0], err)
	}
	logger.Debug("exec", "cmd", p.String())
	if err := unix.Exec(binary, p.Args, append(os.Environ(), p.Env...)); err != nil {
		return fmt.Errorf("exec %s: %w", binary, err)
	}
	return nil
}
