package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sync/errgroup"

	"periphery-mcp/internal/logging"
)

// Rule pairs a prompt pattern with the keystrokes that answer it.
// Patterns are matched against the unanswered transcript tail; compile them
// case-insensitively with (?i).
type Rule struct {
	Pattern  *regexp.Regexp
	Response string
}

// Script is the fixed expect/respond table for one interactive session.
// Fallback answers prompts no rule recognizes; callers should surface a
// warning whenever it fires, since a default answer may misconfigure the
// project.
type Script struct {
	Rules    []Rule
	Fallback string
}

// InteractiveResult extends Result with the session transcript semantics:
// Stdout holds the full transcript (a pty has no separate stderr), and
// FallbackUsed counts prompts that were answered with the Script fallback
// instead of a matched rule.
type InteractiveResult struct {
	Result
	FallbackUsed int
}

// InteractiveRunner drives a prompting subprocess to completion.
type InteractiveRunner interface {
	RunInteractive(ctx context.Context, spec Spec, script Script) (InteractiveResult, error)
}

// PTYRunner runs the child attached to a pseudo terminal. The wrapped setup
// wizard only prompts when it detects a terminal, so plain pipes won't do.
type PTYRunner struct{}

var _ InteractiveRunner = PTYRunner{}

func (PTYRunner) RunInteractive(ctx context.Context, spec Spec, script Script) (InteractiveResult, error) {
	logger := logging.New("interact")
	start := time.Now()

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return InteractiveResult{Result: Result{Elapsed: time.Since(start)}}, err
	}
	defer ptmx.Close()

	logger.Debug("wizard started", "command", spec.Command, "args", spec.Args, "pid", cmd.Process.Pid)

	var mu sync.Mutex
	var transcript bytes.Buffer
	answered := 0
	fallbackUsed := 0

	// Reader goroutine: accumulate the transcript and answer prompts as they
	// appear. Single goroutine does both so matching never races the buffer.
	g := new(errgroup.Group)
	g.Go(func() error {
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				mu.Lock()
				transcript.Write(buf[:n])
				pending := transcript.String()[answered:]
				if resp, matched, ok := matchPrompt(pending, script); ok {
					if _, werr := ptmx.WriteString(resp + "\n"); werr == nil {
						answered = transcript.Len()
						if matched {
							logger.Debug("answered prompt", "response", resp)
						} else {
							fallbackUsed++
							logger.Warn("unrecognized prompt, sent fallback", "tail", lastLine(pending))
						}
					}
				}
				mu.Unlock()
			}
			if readErr != nil {
				// EOF, or EIO once the child side of the pty is gone.
				return nil
			}
		}
	})

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	timedOut := false
	var runErr error
	select {
	case <-waitCh:
	case <-ctx.Done():
		KillGroup(cmd.Process.Pid)
		<-waitCh
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			timedOut = true
		} else {
			runErr = ctx.Err()
		}
	}

	ptmx.Close() // unblock the reader on every exit path
	_ = g.Wait()

	mu.Lock()
	output := transcript.String()
	mu.Unlock()

	if runErr != nil {
		logger.Debug("wizard canceled, process group killed", "elapsed", time.Since(start))
		return InteractiveResult{
			Result:       Result{Stdout: output, Elapsed: time.Since(start)},
			FallbackUsed: fallbackUsed,
		}, runErr
	}

	res := InteractiveResult{
		Result: Result{
			Stdout:   output,
			Elapsed:  time.Since(start),
			TimedOut: timedOut,
		},
		FallbackUsed: fallbackUsed,
	}
	if !timedOut {
		code := cmd.ProcessState.ExitCode()
		res.ExitCode = &code
		logger.Debug("wizard exited", "exit_code", code, "fallback_used", fallbackUsed, "elapsed", res.Elapsed)
	} else {
		logger.Warn("wizard timed out, process group killed", "elapsed", res.Elapsed)
	}
	return res, nil
}

// matchPrompt decides how to answer the unanswered transcript tail.
// First rule wins. Text that looks like a prompt but matches nothing gets
// the fallback. Non-prompt output is left alone until more bytes arrive.
func matchPrompt(pending string, script Script) (response string, matched, ok bool) {
	if strings.TrimSpace(pending) == "" {
		return "", false, false
	}
	for _, r := range script.Rules {
		if r.Pattern.MatchString(pending) {
			return r.Response, true, true
		}
	}
	if looksLikePrompt(pending) {
		return script.Fallback, false, true
	}
	return "", false, false
}

// looksLikePrompt reports whether the tail ends the way the wizard's
// questions do: a colon or question mark waiting for input.
func looksLikePrompt(pending string) bool {
	trimmed := strings.TrimRight(pending, " \t")
	return strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, "?")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
