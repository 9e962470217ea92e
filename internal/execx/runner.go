// Package execx spawns the external tool processes: one-shot commands with
// output capture, and interactive sessions driven over a pseudo terminal.
// Every spawn joins its own process group so a timeout can kill the whole
// tree; no child may outlive the call that started it.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"

	"periphery-mcp/internal/logging"
)

// Spec describes one subprocess invocation.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result is what a finished (or killed) subprocess left behind.
// ExitCode is nil when the process was terminated by the timeout.
// Streams are captured separately so machine-readable stdout (the scan's
// JSON document) is never interleaved with build noise on stderr.
type Result struct {
	ExitCode *int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	TimedOut bool
}

// Combined concatenates both streams for log tails, stdout first.
func (r Result) Combined() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner runs a non-interactive command to completion.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// ExecRunner is the real Runner backed by os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	logger := logging.New("runner")
	start := time.Now()

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("spawning", "command", spec.Command, "args", spec.Args, "dir", spec.Dir, "timeout", spec.Timeout)

	if err := cmd.Start(); err != nil {
		return Result{Elapsed: time.Since(start)}, err
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	select {
	case <-waitCh:
		// A non-zero exit is data, not an error: the caller reads ExitCode.
		code := cmd.ProcessState.ExitCode()
		res := Result{
			ExitCode: &code,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Elapsed:  time.Since(start),
		}
		logger.Debug("exited", "command", spec.Command, "exit_code", code, "elapsed", res.Elapsed)
		return res, nil
	case <-ctx.Done():
		KillGroup(cmd.Process.Pid)
		<-waitCh
		res := Result{
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Elapsed: time.Since(start),
		}
		// Only the wall-clock deadline counts as a timeout; caller
		// cancellation is an error, not a timed-out result.
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Debug("canceled, process group killed", "command", spec.Command, "elapsed", res.Elapsed)
			return res, ctx.Err()
		}
		res.TimedOut = true
		logger.Warn("timed out, process group killed", "command", spec.Command, "elapsed", res.Elapsed)
		return res, nil
	}
}

// KillGroup force-terminates a process group. The negative pid addresses
// the whole group (the child was started with Setpgid, so pgid == pid).
func KillGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
