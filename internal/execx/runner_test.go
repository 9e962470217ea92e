package execx_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"periphery-mcp/internal/execx"
)

func TestRun_CapturesCombinedOutputAndExitCode(t *testing.T) {
	r := execx.ExecRunner{}
	res, err := r.Run(context.Background(), execx.Spec{
		Command: "sh",
		Args:    []string{"-c", "echo to-stdout; echo to-stderr 1>&2; exit 3"},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode == nil || *res.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "to-stdout") {
		t.Errorf("Stdout = %q, want to-stdout", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "to-stderr") {
		t.Errorf("Stderr = %q, want to-stderr", res.Stderr)
	}
	if c := res.Combined(); !strings.Contains(c, "to-stdout") || !strings.Contains(c, "to-stderr") {
		t.Errorf("Combined() missing a stream: %q", c)
	}
	if res.TimedOut {
		t.Error("TimedOut should be false")
	}
}

func TestRun_UsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := execx.ExecRunner{}
	res, err := r.Run(context.Background(), execx.Spec{
		Command: "pwd",
		Dir:     dir,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestRun_MissingExecutable(t *testing.T) {
	r := execx.ExecRunner{}
	_, err := r.Run(context.Background(), execx.Spec{
		Command: "definitely-not-on-path-xyz",
		Timeout: time.Second,
	})
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("err = %v, want exec.ErrNotFound", err)
	}
}

func TestRun_CallerCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := execx.ExecRunner{}
	res, err := r.Run(ctx, execx.Spec{
		Command: "sleep",
		Args:    []string{"60"},
		Timeout: 30 * time.Second,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.TimedOut {
		t.Error("cancellation must not be reported as a timeout")
	}
}

func TestRun_TimeoutKillsProcessGroup(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	r := execx.ExecRunner{}

	start := time.Now()
	res, err := r.Run(context.Background(), execx.Spec{
		Command: "sh",
		// Background grandchild: group kill must take it down too.
		Args:    []string{"-c", "sleep 60 & echo $! > " + pidFile + "; wait"},
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.TimedOut {
		t.Fatal("expected TimedOut")
	}
	if res.ExitCode != nil {
		t.Errorf("ExitCode = %d, want nil on timeout", *res.ExitCode)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run blocked %v after a 200ms timeout", elapsed)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("grandchild pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parse pid: %v", err)
	}

	// The grandchild may linger as a zombie briefly while init reaps it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if syscall.Kill(pid, 0) != nil {
			return // gone
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("grandchild pid %d still alive after timeout kill", pid)
}
