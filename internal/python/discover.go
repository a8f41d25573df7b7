// SPDX-License-Identifier: MPL-2.0

package python

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lihrs/aifm-launcher/internal/execrun"
)

var (
	// ErrNotFound indicates no python interpreter was found on PATH.
	ErrNotFound = errors.New("no python interpreter found on PATH")

	//nolint:gochecknoglobals // Test seam for exec.LookPath.
	lookPath = exec.LookPath

	// candidates are the interpreter names tried in order. Plain "python"
	// leads: it is the name the Windows installer registers and the name
	// the application's own tooling invokes.
	//nolint:gochecknoglobals // Fixed candidate list.
	candidates = []string{"python", "python3"}
)

// Find resolves the first python interpreter available on PATH, trying
// "python" then "python3". Not finding one is a soft miss: the pipeline
// treats it as "no usable interpreter" and provisions an environment.
func Find() (string, error) {
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// QueryVersion asks the interpreter for its version with a single
// `--version` invocation. The one probe is authoritative: callers do not
// retry or fall back to other output shapes.
func QueryVersion(ctx context.Context, runner execrun.Runner, exe string) (Version, error) {
	res := runner.RunCapture(ctx, &execrun.Invocation{
		Path: exe,
		Args: []string{"--version"},
	})
	if res.Error != nil {
		return Version{}, fmt.Errorf("querying %s version: %w", exe, res.Error)
	}
	if !res.Succeeded() {
		return Version{}, fmt.Errorf("%s --version exited with code %s", exe, res.ExitCode)
	}

	out := strings.TrimSpace(res.Output)
	if out == "" {
		// Python 2 wrote the version banner to stderr.
		out = strings.TrimSpace(res.ErrOutput)
	}
	return ParseVersion(out)
}
