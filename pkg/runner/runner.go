package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/systemstart/font-assistant/pkg/api"
)

// waitDelay bounds how long Wait keeps reading pipes after the process was
// killed; grandchildren may still hold them open.
const waitDelay = 2 * time.Second

// Invocation describes one external tool launch.
type Invocation struct {
	Executable string
	Args       []string
	Dir        string
	Timeout    time.Duration // zero waits without bound
	Shell      bool          // run through sh -c / cmd /c
}

// Name returns the executable's file name for messages.
func (inv Invocation) Name() string {
	return filepath.Base(inv.Executable)
}

// Result is what a finished (or abandoned) invocation left behind.
type Result struct {
	Invocation   Invocation
	Stdout       string
	Stderr       string
	ExitCode     int
	ExitObserved bool
	StartFailed  bool
	TimedOut     bool
	Canceled     bool
	Duration     time.Duration
	Err          error
}

// Failure converts a launch problem into a classified error. It returns nil
// when the process ran to completion; whether the tool succeeded is decided
// by the caller's predicate, not here.
func (r Result) Failure() error {
	switch {
	case r.StartFailed:
		return api.Wrap(api.ErrProcessStart, r.Err, "failed to start "+r.Invocation.Name())
	case r.TimedOut:
		return api.Errorf(api.ErrProcessTimeout, "%s did not finish within %s", r.Invocation.Name(), r.Invocation.Timeout)
	case r.Canceled:
		return api.Wrap(api.ErrCanceled, r.Err, r.Invocation.Name()+" was cancelled")
	}
	return nil
}

// Runner launches external tools.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Result
}

// Exec runs invocations as real child processes. Output is captured, never
// inherited. On timeout or cancellation the whole process group is killed.
type Exec struct{}

// NewExec returns the process-backed runner.
func NewExec() *Exec { return &Exec{} }

func (e *Exec) Run(ctx context.Context, inv Invocation) Result {
	res := Result{Invocation: inv}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if inv.Shell {
		cmd = shellCommand(ctx, inv.Executable, inv.Args)
	} else {
		cmd = exec.CommandContext(ctx, inv.Executable, inv.Args...)
	}
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("starting tool", "tool", inv.Name(), "args", inv.Args, "dir", inv.Dir, "timeout", inv.Timeout, "shell", inv.Shell)

	started := time.Now()
	if err := cmd.Start(); err != nil {
		res.StartFailed = ctx.Err() == nil
		res.Canceled = !res.StartFailed
		res.Err = err
		return res
	}

	err := cmd.Wait()
	res.Duration = time.Since(started)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && inv.Timeout > 0 {
			res.TimedOut = true
		} else {
			res.Canceled = true
		}
		res.Err = ctxErr
		slog.Warn("tool killed", "tool", inv.Name(), "timedOut", res.TimedOut, "after", res.Duration)
		return res
	}

	res.ExitObserved = true
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		res.Err = err
	}

	slog.Debug("tool finished", "tool", inv.Name(), "exitCode", res.ExitCode, "duration", res.Duration)
	return res
}
