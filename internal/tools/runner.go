package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// OutcomeKind tags how one command invocation ended.
type OutcomeKind string

const (
	// OutcomeCompleted means the process ran and exited; ExitCode may be non-zero.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeLaunchFailure means the process never ran (missing binary, spawn error, dial failure).
	OutcomeLaunchFailure OutcomeKind = "launch_failure"
	// OutcomeTimeout means the invocation deadline elapsed or its context was cancelled.
	OutcomeTimeout OutcomeKind = "timeout"
)

// Outcome is the raw, uninterpreted result of one command invocation.
type Outcome struct {
	Kind     OutcomeKind
	Stdout   string
	Stderr   string
	ExitCode int
	Reason   string
}

// Completed builds the outcome of a process that ran to exit.
func Completed(stdout, stderr string, exitCode int) Outcome {
	return Outcome{Kind: OutcomeCompleted, Stdout: stdout, Stderr: stderr, ExitCode: exitCode}
}

// LaunchFailure builds the outcome of a process that could not be started.
func LaunchFailure(reason string) Outcome {
	return Outcome{Kind: OutcomeLaunchFailure, Reason: reason}
}

// Timeout builds the outcome of an invocation cut short by its deadline.
func Timeout(reason string) Outcome {
	return Outcome{Kind: OutcomeTimeout, Reason: reason}
}

// CommandRunner abstracts command execution for the pad control client.
//
// Implementations report every condition through the returned Outcome and
// must be safe for concurrent use.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) Outcome
}

// ExecRunner executes commands on the local host.
type ExecRunner struct {
	// Timeout bounds one invocation. Zero disables the runner-level deadline.
	Timeout time.Duration
}

// waitDelay caps how long Run waits for output pipes after the process is killed.
const waitDelay = 2 * time.Second

// Run executes name with args, capturing both output streams.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Completed(stdout.String(), stderr.String(), 0)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Timeout(r.timeoutReason(name, ctxErr))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal outside our control
			code = 1
		}
		return Completed(stdout.String(), stderr.String(), code)
	}
	return LaunchFailure(err.Error())
}

func (r ExecRunner) timeoutReason(name string, ctxErr error) string {
	if errors.Is(ctxErr, context.DeadlineExceeded) && r.Timeout > 0 {
		return fmt.Sprintf("%s exceeded %s", name, r.Timeout)
	}
	return fmt.Sprintf("%s: %v", name, ctxErr)
}
