// Package fakerunner provides a recording CommandRunner for tests.
package fakerunner

import (
	"context"
	"slices"
	"sync"

	"github.com/danmuck/padctl/internal/tools"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// Runner records every invocation and answers with Respond, or Outcome when
// Respond is nil.
type Runner struct {
	Outcome tools.Outcome
	Respond func(name string, args []string) tools.Outcome

	mu    sync.Mutex
	calls []Call
}

// Completed returns a runner that always answers with a completed process.
func Completed(stdout, stderr string, exitCode int) *Runner {
	return &Runner{Outcome: tools.Completed(stdout, stderr, exitCode)}
}

func (r *Runner) Run(_ context.Context, name string, args ...string) tools.Outcome {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: slices.Clone(args)})
	r.mu.Unlock()

	if r.Respond != nil {
		return r.Respond(name, args)
	}
	return r.Outcome
}

// Calls returns a copy of the recorded invocations.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Last returns the most recent invocation.
func (r *Runner) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}
