// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/platform"
	"github.com/lihrs/aifm-launcher/internal/python"
	"github.com/lihrs/aifm-launcher/internal/workspace"
)

var (
	// ErrUvNotFound indicates the provisioning tool is not where the
	// launcher expects it.
	ErrUvNotFound = errors.New("uv not found")
	// ErrRequirementsNotFound indicates the dependency manifest is absent
	// from the working directory.
	ErrRequirementsNotFound = errors.New("requirements manifest not found")
)

// Provisioner creates the virtual environment and installs dependencies
// with the bundled uv binary. Stdout/Stderr receive uv's own output so
// resolver and download progress shows up exactly as uv prints it; nil
// streams discard it.
type Provisioner struct {
	runner execrun.Runner
	ws     *workspace.Workspace
	cfg    config.ProvisionConfig

	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Provisioner for the given workspace.
func New(runner execrun.Runner, ws *workspace.Workspace, cfg config.ProvisionConfig) *Provisioner {
	return &Provisioner{runner: runner, ws: ws, cfg: cfg}
}

// UvPath resolves the provisioning tool: the configured override when
// set (relative overrides resolve against the workspace), otherwise the
// bundled binary in the working directory — uv.exe on Windows, uv
// elsewhere. A missing tool is a hard stop with install guidance.
func (p *Provisioner) UvPath() (string, error) {
	path := p.cfg.UvPath
	switch {
	case path == "":
		path = p.ws.Join(platform.ExeName("uv"))
	case !filepath.IsAbs(path):
		path = p.ws.Join(path)
	}

	if _, err := os.Stat(path); err != nil {
		return "", issue.NewErrorContext().
			WithOperation("locate uv").
			WithResource(path).
			WithSuggestion("Keep the bundled uv binary next to the application").
			WithSuggestion("Or set provision.uv_path in aifm-launcher.toml to an existing uv").
			WithIssue(issue.UvNotFoundId).
			Wrap(fmt.Errorf("%w: %s", ErrUvNotFound, path)).
			BuildError()
	}
	return path, nil
}

// EnsureVenv creates the virtual environment when it does not exist and
// reports whether anything was created. An existing environment is left
// untouched, whatever its contents — re-runs never re-provision.
func (p *Provisioner) EnsureVenv(ctx context.Context, floor python.Floor) (bool, error) {
	if p.ws.HasVenv(p.cfg.VenvDir) {
		return false, nil
	}

	uv, err := p.UvPath()
	if err != nil {
		return false, err
	}

	res := p.runner.Run(ctx, p.uvInvocation(uv, "venv", p.cfg.VenvDir, "--python", floor.String()))
	if !res.Succeeded() {
		return false, issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(p.ws.Join(p.cfg.VenvDir)).
			WithSuggestion(fmt.Sprintf("Check that uv can download a Python %s toolchain", floor)).
			WithSuggestion("Delete a partially created venv directory and run again").
			WithIssue(issue.VenvCreateFailedId).
			Wrap(invocationError(res)).
			BuildError()
	}
	return true, nil
}

// InstallRequirements runs a full dependency install pass against the
// manifest. The manifest must exist before uv is invoked at all; its
// contents are uv's business. Installation is always a complete pass —
// uv's resolver decides what actually changes.
func (p *Provisioner) InstallRequirements(ctx context.Context) error {
	if !p.ws.HasFile(p.cfg.Requirements) {
		return issue.NewErrorContext().
			WithOperation("install dependencies").
			WithResource(p.ws.Join(p.cfg.Requirements)).
			WithSuggestion("Run the launcher from the application directory").
			WithSuggestion("Re-extract the application package if the file is missing").
			WithIssue(issue.RequirementsNotFoundId).
			Wrap(fmt.Errorf("%w: %s", ErrRequirementsNotFound, p.cfg.Requirements)).
			BuildError()
	}

	uv, err := p.UvPath()
	if err != nil {
		return err
	}

	res := p.runner.Run(ctx, p.uvInvocation(uv, "pip", "install", "-r", p.cfg.Requirements))
	if !res.Succeeded() {
		return issue.NewErrorContext().
			WithOperation("install dependencies").
			WithResource(p.cfg.Requirements).
			WithSuggestion("Check the network connection and the package index").
			WithSuggestion("Run again; installation resumes where it can").
			WithIssue(issue.InstallFailedId).
			Wrap(invocationError(res)).
			BuildError()
	}
	return nil
}

// uvInvocation builds a uv invocation rooted at the workspace, with the
// link-mode hint set and output wired to the provisioner's streams.
func (p *Provisioner) uvInvocation(uv string, args ...string) *execrun.Invocation {
	return &execrun.Invocation{
		Path:   uv,
		Args:   args,
		Dir:    p.ws.Dir,
		Env:    map[string]string{"UV_LINK_MODE": p.cfg.LinkMode.String()},
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	}
}

// invocationError normalizes a failed Result into an error: the
// infrastructure error when the process could not run, otherwise the
// exit code.
func invocationError(res *execrun.Result) error {
	if res.Error != nil {
		return res.Error
	}
	return fmt.Errorf("uv exited with code %s", res.ExitCode)
}
