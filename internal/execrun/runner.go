// SPDX-License-Identifier: MPL-2.0

package execrun

import (
	"context"
	"io"
)

type (
	// Invocation describes a single external tool invocation. Path is the
	// executable to run, either absolute or resolvable via PATH. Env entries
	// are merged over the inherited process environment.
	Invocation struct {
		Path string
		Args []string

		// Dir is the working directory. Empty means inherit the launcher's.
		Dir string

		// Env holds extra environment variables layered over os.Environ().
		Env map[string]string

		// Stdin/Stdout/Stderr are the streams wired to the child process.
		// Nil streams fall back to the null device (Run) or are captured
		// internally (RunCapture).
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// Detach starts the process without waiting for it to exit. The
		// Result carries the child PID and no exit code. Used for
		// background services like 'ollama serve'.
		Detach bool

		// HideWindow suppresses the console window of the child process.
		// Only meaningful on Windows; ignored elsewhere.
		HideWindow bool
	}

	// Result holds the outcome of an invocation. For detached starts only
	// PID and Error are meaningful. Output and ErrOutput are populated by
	// RunCapture only.
	Result struct {
		ExitCode  ExitCode
		Output    string
		ErrOutput string
		Error     error
		PID       int
	}

	// Runner executes tool invocations. The production implementation is
	// OSRunner; tests use Fake.
	Runner interface {
		// Run executes the invocation with the configured streams and
		// blocks until the process exits (unless Detach is set).
		Run(ctx context.Context, inv *Invocation) *Result

		// RunCapture executes the invocation and captures stdout/stderr
		// into the Result, ignoring the Invocation's stream fields.
		RunCapture(ctx context.Context, inv *Invocation) *Result
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Succeeded reports whether the invocation ran to completion with exit
// code zero and no infrastructure error.
func (r *Result) Succeeded() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}
