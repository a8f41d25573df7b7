// SPDX-License-Identifier: MPL-2.0

package execrun

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// OSRunner executes invocations with os/exec.
type OSRunner struct{}

// NewOSRunner creates a new OSRunner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes the invocation and blocks until the process exits.
// When inv.Detach is set the process is started in its own group and
// Run returns immediately with the child PID.
func (r *OSRunner) Run(ctx context.Context, inv *Invocation) *Result {
	cmd := r.buildCmd(ctx, inv)

	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	if inv.Detach {
		configureDetach(cmd, inv.HideWindow)
		if err := cmd.Start(); err != nil {
			return NewErrorResult(1, fmt.Errorf("starting %s: %w", inv.Path, err))
		}
		pid := cmd.Process.Pid
		// Reap the child in the background so it doesn't linger as a
		// zombie if it exits before the launcher does.
		go func() { _ = cmd.Wait() }()
		return &Result{PID: pid}
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("running %s: %w", inv.Path, err))
	}

	return NewSuccessResult()
}

// RunCapture executes the invocation and captures stdout/stderr into the
// Result. The Invocation's stream fields are ignored.
func (r *OSRunner) RunCapture(ctx context.Context, inv *Invocation) *Result {
	cmd := r.buildCmd(ctx, inv)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("running %s: %w", inv.Path, err)
		}
	}

	return result
}

// buildCmd assembles the exec.Cmd shared by Run and RunCapture.
func (r *OSRunner) buildCmd(ctx context.Context, inv *Invocation) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)

	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}

	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), envToSlice(inv.Env)...)
	}

	return cmd
}

// envToSlice converts an env map to KEY=VALUE form, sorted by key so
// the child environment is deterministic.
func envToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
