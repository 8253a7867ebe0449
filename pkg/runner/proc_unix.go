//go:build !windows

package runner

import (
	"context"
	"os/exec"
	"syscall"

	"github.com/kballard/go-shellquote"
)

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID targets the whole group started by the tool.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

func shellCommand(ctx context.Context, executable string, args []string) *exec.Cmd {
	line := shellquote.Join(append([]string{executable}, args...)...)
	return exec.CommandContext(ctx, "sh", "-c", line)
}
