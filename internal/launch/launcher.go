// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/workspace"
)

// ErrVenvInterpreterMissing indicates the virtual environment exists but
// its interpreter binary does not.
var ErrVenvInterpreterMissing = errors.New("virtual environment interpreter missing")

// Launcher runs the application's entry point.
type Launcher struct {
	runner execrun.Runner
	ws     *workspace.Workspace

	// Stdin/Stdout/Stderr are wired straight to the application so it
	// owns the console for its lifetime. Defaults are the launcher's own
	// streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Launcher for the given working directory.
func New(runner execrun.Runner, ws *workspace.Workspace) *Launcher {
	return &Launcher{
		runner: runner,
		ws:     ws,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the profile's entry point with the virtual environment's
// interpreter and blocks until the application exits. The returned exit
// code is the application's own; it is only meaningful when err is nil.
func (l *Launcher) Run(ctx context.Context, venvDir string, spec config.ProfileSpec) (execrun.ExitCode, error) {
	if !l.ws.HasFile(spec.Entrypoint) {
		return 0, issue.NewErrorContext().
			WithOperation("launch application").
			WithResource(l.ws.Join(spec.Entrypoint)).
			WithSuggestion("Run the launcher from the application directory, or pass --dir").
			WithSuggestion("Check the active profile with: aifm-launcher config show").
			WithIssue(issue.EntrypointNotFoundId).
			Wrap(fmt.Errorf("entry point %q not found", spec.Entrypoint)).
			BuildError()
	}

	python := l.ws.VenvPython(venvDir)
	if info, err := os.Stat(python); err != nil || info.IsDir() {
		// The venv passed the directory check upstream but has no usable
		// interpreter, so it is broken rather than absent.
		return 0, issue.NewErrorContext().
			WithOperation("launch application").
			WithResource(python).
			WithSuggestion(fmt.Sprintf("Delete the %s directory and run the launcher again", venvDir)).
			WithIssue(issue.VenvCreateFailedId).
			Wrap(fmt.Errorf("%w: %s", ErrVenvInterpreterMissing, python)).
			BuildError()
	}

	res := l.runner.Run(ctx, &execrun.Invocation{
		Path:   python,
		Args:   []string{spec.Entrypoint},
		Dir:    l.ws.Dir,
		Stdin:  l.Stdin,
		Stdout: l.Stdout,
		Stderr: l.Stderr,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("starting the application: %w", res.Error)
	}
	return res.ExitCode, nil
}
