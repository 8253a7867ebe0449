//go:build windows

package runner

import (
	"context"
	"os/exec"
	"syscall"
)

// The default Cancel kills the direct child only; .cmd tools run inside
// cmd.exe and exit with it.
func configureProcessGroup(cmd *exec.Cmd) {}

// shellCommand hands cmd.exe a raw command line; Go's argv escaping would
// quote with backslashes, which cmd.exe does not understand.
func shellCommand(ctx context.Context, executable string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "cmd.exe")
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: cmdExeLine(executable, args)}
	return cmd
}
