// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/launch"
	"github.com/lihrs/aifm-launcher/internal/ollama"
	"github.com/lihrs/aifm-launcher/internal/pathenv"
	"github.com/lihrs/aifm-launcher/internal/provision"
	"github.com/lihrs/aifm-launcher/internal/python"
	"github.com/lihrs/aifm-launcher/internal/singleinstance"
	"github.com/lihrs/aifm-launcher/internal/update"
	"github.com/lihrs/aifm-launcher/internal/workspace"
)

// Step names as they appear in Results.
const (
	StepUpdateCheck  = "update-check"
	StepInterpreter  = "interpreter"
	StepProvision    = "provision"
	StepInstall      = "install"
	StepLegacyConfig = "legacy-config"
	StepPathRegister = "path-registration"
	StepReadiness    = "readiness"
	StepLaunch       = "launch"
)

const (
	// StatusDone means the step performed its action.
	StatusDone Status = "done"
	// StatusSkipped means the step had nothing to do (existing state,
	// disabled feature, or a soft miss another step covers).
	StatusSkipped Status = "skipped"
	// StatusWarned means the step failed in a way that does not stop
	// the run.
	StatusWarned Status = "warned"
)

type (
	// Status classifies a step outcome.
	Status string

	// StepResult is one step's outcome, for reporting.
	StepResult struct {
		Name   string
		Status Status
		Detail string
	}

	// AppExitError reports a non-zero exit from the launched
	// application. The launcher maps it to its own failure exit.
	AppExitError struct {
		Code execrun.ExitCode
	}

	// ReadinessChecker is the readiness surface the pipeline drives.
	// Satisfied by *ollama.Checker.
	ReadinessChecker interface {
		Check(ctx context.Context) (*ollama.Outcome, error)
	}

	// UpdateChecker is the update-availability surface the pipeline
	// drives. Satisfied by *update.Updater.
	UpdateChecker interface {
		Check(ctx context.Context) (*update.UpdateCheck, error)
	}

	// Pipeline runs the bootstrap sequence. The zero value is not
	// usable; construct with New. The exported fields are seams with
	// working defaults.
	Pipeline struct {
		cfg    *config.Config
		ws     *workspace.Workspace
		runner execrun.Runner
		store  pathenv.Store

		// Logger receives step progress on stderr.
		Logger *log.Logger
		// Lock gates against a second concurrent instance. Nil disables
		// the gate.
		Lock *singleinstance.Lock
		// Readiness overrides the Ollama readiness checker.
		Readiness ReadinessChecker
		// Updates overrides the update checker.
		Updates UpdateChecker
		// Registrar overrides the PATH registrar.
		Registrar *pathenv.Registrar
		// FindPython resolves the system interpreter.
		FindPython func() (string, error)

		// Stdin/Stdout/Stderr are handed to the subprocesses that
		// interact with the user: uv, ollama pull, and the application.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		results []StepResult
	}
)

// New creates a Pipeline over the given collaborators.
func New(cfg *config.Config, ws *workspace.Workspace, runner execrun.Runner, store pathenv.Store) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		ws:         ws,
		runner:     runner,
		store:      store,
		Logger:     log.NewWithOptions(os.Stderr, log.Options{Prefix: "aifm"}),
		FindPython: python.Find,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run executes the bootstrap sequence and blocks until the application
// exits. Nil means a clean application exit. Fatal step errors come
// back as *issue.ActionableError; a non-zero application exit comes
// back as *AppExitError.
func (p *Pipeline) Run(ctx context.Context) error {
	p.results = nil

	if p.Lock != nil {
		if err := p.Lock.Acquire(); err != nil {
			return err
		}
		defer func() { _ = p.Lock.Release() }()
	}

	p.checkForUpdate(ctx)

	floor := p.floor()
	p.discoverInterpreter(ctx, floor)

	if err := p.provision(ctx, floor); err != nil {
		return err
	}
	if err := p.install(ctx); err != nil {
		return err
	}
	if err := p.neutralizeLegacyConfig(); err != nil {
		return err
	}
	p.registerToolPath()
	if err := p.ensureReadiness(ctx); err != nil {
		return err
	}
	return p.launch(ctx)
}

// Results returns the per-step outcomes of the last Run.
func (p *Pipeline) Results() []StepResult {
	return slices.Clone(p.results)
}

func (p *Pipeline) floor() python.Floor {
	spec := p.cfg.Profile.Spec()
	return python.Floor{Major: spec.PythonMajor, Minor: spec.PythonMinor}
}

// checkForUpdate is informational only: availability is printed, never
// acted on, and a failed check never stops the launch.
func (p *Pipeline) checkForUpdate(ctx context.Context) {
	if !p.cfg.Update.CheckOnStart {
		return
	}

	check, err := p.updates().Check(ctx)
	if err != nil {
		p.record(StepUpdateCheck, StatusWarned, fmt.Sprintf("update check failed: %v", err))
		p.Logger.Warn("update check failed", "error", err)
		return
	}
	p.record(StepUpdateCheck, StatusDone, check.Message)
	if check.UpdateAvailable {
		p.Logger.Info(check.Message, "hint", "run: aifm-launcher update")
	} else {
		p.Logger.Debug(check.Message)
	}
}

// discoverInterpreter reports whether a suitable system Python exists.
// Every miss — no interpreter, unreadable version, below the floor —
// routes to provisioning, where uv supplies its own toolchain.
func (p *Pipeline) discoverInterpreter(ctx context.Context, floor python.Floor) {
	exe, err := p.FindPython()
	if err != nil {
		p.record(StepInterpreter, StatusSkipped, fmt.Sprintf("no interpreter on PATH; uv will supply Python %s", floor))
		p.Logger.Info("no Python on PATH", "fallback", "uv-managed toolchain")
		return
	}

	v, err := python.QueryVersion(ctx, p.runner, exe)
	if err != nil {
		p.record(StepInterpreter, StatusSkipped, fmt.Sprintf("version of %s unreadable; uv will supply Python %s", exe, floor))
		p.Logger.Info("Python version unreadable", "exe", exe, "fallback", "uv-managed toolchain")
		return
	}
	if !v.Meets(floor) {
		p.record(StepInterpreter, StatusSkipped, fmt.Sprintf("Python %s below the %s floor; uv will supply a newer one", v, floor))
		p.Logger.Info("Python below version floor", "found", v.String(), "floor", floor.String())
		return
	}

	p.record(StepInterpreter, StatusDone, fmt.Sprintf("Python %s at %s", v, exe))
	p.Logger.Info("Python found", "version", v.String(), "path", exe)
}

func (p *Pipeline) provision(ctx context.Context, floor python.Floor) error {
	if p.ws.HasVenv(p.cfg.Provision.VenvDir) {
		p.record(StepProvision, StatusSkipped, fmt.Sprintf("virtual environment %s already present", p.cfg.Provision.VenvDir))
		p.Logger.Info("virtual environment present", "dir", p.cfg.Provision.VenvDir)
		return nil
	}

	p.Logger.Info("creating virtual environment", "dir", p.cfg.Provision.VenvDir, "python", floor.String())
	if _, err := p.provisioner().EnsureVenv(ctx, floor); err != nil {
		return err
	}
	p.record(StepProvision, StatusDone, fmt.Sprintf("created %s with Python %s", p.cfg.Provision.VenvDir, floor))
	p.Logger.Info("virtual environment created", "dir", p.cfg.Provision.VenvDir)
	return nil
}

func (p *Pipeline) install(ctx context.Context) error {
	p.Logger.Info("installing dependencies", "manifest", p.cfg.Provision.Requirements)
	if err := p.provisioner().InstallRequirements(ctx); err != nil {
		return err
	}
	p.record(StepInstall, StatusDone, fmt.Sprintf("dependencies installed from %s", p.cfg.Provision.Requirements))
	p.Logger.Info("dependencies installed")
	return nil
}

func (p *Pipeline) neutralizeLegacyConfig() error {
	renamed, err := p.ws.NeutralizeLegacyConfig()
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("neutralize legacy config").
			WithResource(p.ws.Join(workspace.LegacyConfigName)).
			WithSuggestion("Check write permissions in the application directory").
			WithSuggestion("Close any program holding " + workspace.LegacyConfigName + " open and run again").
			WithIssue(issue.LegacyConfigRenameFailedId).
			Wrap(err).
			BuildError()
	}
	if !renamed {
		p.record(StepLegacyConfig, StatusSkipped, workspace.LegacyConfigName+" not present")
		p.Logger.Debug("no legacy config to neutralize")
		return nil
	}
	p.record(StepLegacyConfig, StatusDone, fmt.Sprintf("%s renamed to %s", workspace.LegacyConfigName, workspace.LegacyConfigRenamed))
	p.Logger.Info("legacy config neutralized", "from", workspace.LegacyConfigName, "to", workspace.LegacyConfigRenamed)
	return nil
}

// registerToolPath never fails the run. A denied persist is surfaced
// with an elevate hint; the process PATH was already updated, so the
// readiness step that follows can still resolve the tool this run.
func (p *Pipeline) registerToolPath() {
	if !p.cfg.Ollama.Enabled {
		p.record(StepPathRegister, StatusSkipped, "ollama integration disabled")
		p.Logger.Debug("ollama integration disabled")
		return
	}

	res := p.registrar().Ensure()
	switch res.Status {
	case pathenv.StatusOnPath:
		p.record(StepPathRegister, StatusDone, "ollama already on PATH: "+res.ToolPath)
		p.Logger.Info("ollama on PATH", "path", res.ToolPath)
	case pathenv.StatusRegistered:
		p.record(StepPathRegister, StatusDone, "added "+res.Dir+" to the user PATH")
		p.Logger.Info("ollama registered on user PATH", "dir", res.Dir)
	case pathenv.StatusAlreadyPersisted:
		p.record(StepPathRegister, StatusDone, res.Dir+" already on the user PATH")
		p.Logger.Info("ollama install dir already on user PATH", "dir", res.Dir)
	case pathenv.StatusNotInstalled:
		p.record(StepPathRegister, StatusWarned, "Ollama not installed under "+res.Dir)
		p.Logger.Warn("Ollama not installed", "dir", res.Dir, "hint", "https://ollama.com/download")
	case pathenv.StatusUnsupported:
		p.record(StepPathRegister, StatusSkipped, "user PATH persistence is not supported on this platform")
		p.Logger.Debug("user PATH persistence unsupported on this platform")
	case pathenv.StatusPersistFailed:
		warn := issue.NewErrorContext().
			WithOperation("persist user PATH").
			WithResource(res.Dir).
			WithSuggestion("Re-run the launcher as administrator to update the user PATH").
			WithIssue(issue.PathPermissionDeniedId).
			Wrap(res.Warning).
			Build()
		p.record(StepPathRegister, StatusWarned, warn.Error())
		p.Logger.Warn(warn.Format(false))
	}
}

func (p *Pipeline) ensureReadiness(ctx context.Context) error {
	if !p.cfg.Ollama.Enabled {
		p.record(StepReadiness, StatusSkipped, "ollama integration disabled")
		return nil
	}

	p.Logger.Info("checking AI service readiness", "model", p.cfg.Ollama.Model)
	outcome, err := p.readiness().Check(ctx)
	if err != nil {
		if p.cfg.Ollama.Required {
			return err
		}
		p.record(StepReadiness, StatusWarned, fmt.Sprintf("AI service not ready: %v", err))
		p.Logger.Warn("AI service not ready, launching anyway", "error", err)
		return nil
	}

	p.record(StepReadiness, StatusDone, readinessDetail(outcome))
	p.Logger.Info("AI service ready", "model", outcome.Model)
	return nil
}

func (p *Pipeline) launch(ctx context.Context) error {
	spec := p.cfg.Profile.Spec()
	p.Logger.Info("starting application", "entrypoint", spec.Entrypoint)

	l := launch.New(p.runner, p.ws)
	l.Stdin, l.Stdout, l.Stderr = p.Stdin, p.Stdout, p.Stderr

	code, err := l.Run(ctx, p.cfg.Provision.VenvDir, spec)
	if err != nil {
		return err
	}
	if !code.IsSuccess() {
		p.record(StepLaunch, StatusWarned, fmt.Sprintf("application exited with code %s", code))
		return &AppExitError{Code: code}
	}
	p.record(StepLaunch, StatusDone, "application exited cleanly")
	p.Logger.Info("application exited cleanly")
	return nil
}

func (p *Pipeline) provisioner() *provision.Provisioner {
	prov := provision.New(p.runner, p.ws, p.cfg.Provision)
	prov.Stdout = p.Stdout
	prov.Stderr = p.Stderr
	return prov
}

func (p *Pipeline) registrar() *pathenv.Registrar {
	if p.Registrar != nil {
		return p.Registrar
	}
	return pathenv.NewRegistrar(p.store)
}

func (p *Pipeline) readiness() ReadinessChecker {
	if p.Readiness != nil {
		return p.Readiness
	}

	var opts []ollama.ClientOption
	if p.cfg.Ollama.BaseURL != "" {
		opts = append(opts, ollama.WithBaseURL(p.cfg.Ollama.BaseURL))
	}
	checker := ollama.NewChecker(ollama.NewClient(opts...), p.runner, p.cfg.Ollama)
	checker.Stdout = p.Stdout
	checker.Stderr = p.Stderr
	return checker
}

func (p *Pipeline) updates() UpdateChecker {
	if p.Updates != nil {
		return p.Updates
	}
	return update.NewUpdater(p.runner, p.ws, p.cfg.Update)
}

func (p *Pipeline) record(name string, status Status, detail string) {
	p.results = append(p.results, StepResult{Name: name, Status: status, Detail: detail})
}

func readinessDetail(o *ollama.Outcome) string {
	var service string
	switch {
	case o.ServiceWasUp:
		service = "service already up"
	case o.Started:
		service = "service started"
	default:
		service = "service came up"
	}

	model := fmt.Sprintf("model %s present", o.Model)
	if o.ModelPulled {
		model = fmt.Sprintf("model %s pulled", o.Model)
	}
	return service + "; " + model
}

// Error implements the error interface for AppExitError.
func (e *AppExitError) Error() string {
	return fmt.Sprintf("application exited with code %s", e.Code)
}
