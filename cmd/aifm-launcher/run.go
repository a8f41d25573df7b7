// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lihrs/aifm-launcher/internal/bootstrap"
	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/pathenv"
	"github.com/lihrs/aifm-launcher/internal/singleinstance"
	"github.com/lihrs/aifm-launcher/internal/workspace"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// launchParams bundles the collaborators and flags for the root
// command, enabling the bootstrap flow in runLaunch to be tested
// without a real Cobra command or real subprocesses.
type launchParams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	ws     *workspace.Workspace
	runner execrun.Runner
	store  pathenv.Store
	lock   *singleinstance.Lock

	pause   bool
	verbose bool
}

// runLaunchCmd is the root command's RunE. Every failure maps to exit
// code 1, the launcher's only fatal exit status.
func runLaunchCmd(cmd *cobra.Command, _ []string) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	p, err := newLaunchParams(cmd)
	if err != nil {
		reportLaunchFailure(cmd.ErrOrStderr(), err, verbose)
		pauseForExit(cmd.InOrStdin(), cmd.OutOrStdout(), !noPause && stdinIsTerminal())
		return &ExitError{Code: 1}
	}

	// runLaunch reports its own failures, so the ExitError stays bare.
	if err := runLaunch(cmd.Context(), p); err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}

// newLaunchParams builds the production launchParams from the parsed
// flags and the loaded configuration.
func newLaunchParams(cmd *cobra.Command) (launchParams, error) {
	cfg, err := loadConfig()
	if err != nil {
		return launchParams{}, err
	}

	ws, err := workspace.New(workDir)
	if err != nil {
		return launchParams{}, err
	}

	p := launchParams{
		stdin:   cmd.InOrStdin(),
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
		cfg:     cfg,
		ws:      ws,
		runner:  execrun.NewOSRunner(),
		store:   pathenv.NewStore(),
		pause:   cfg.UI.Pause && !noPause && stdinIsTerminal(),
		verbose: verbose,
	}
	if !noLock {
		p.lock = singleinstance.New("")
	}
	return p, nil
}

// runLaunch executes the bootstrap sequence and reports the outcome.
// Every terminal state, success included, pauses for acknowledgment
// when p.pause is set so the console window of a double-clicked
// launcher stays readable.
func runLaunch(ctx context.Context, p launchParams) error {
	pipe := bootstrap.New(p.cfg, p.ws, p.runner, p.store)
	pipe.Logger = newStepLogger(p.stderr, p.verbose)
	pipe.Lock = p.lock
	pipe.Stdin = p.stdin
	pipe.Stdout = p.stdout
	pipe.Stderr = p.stderr

	err := pipe.Run(ctx)
	if err != nil {
		reportLaunchFailure(p.stderr, err, p.verbose)
	} else {
		fmt.Fprintln(p.stdout)
		fmt.Fprintln(p.stdout, SuccessStyle.Render("✓")+" AI Fund Master exited cleanly.")
	}
	if p.verbose {
		printStepTrail(p.stderr, pipe.Results())
	}
	pauseForExit(p.stdin, p.stdout, p.pause)
	return err
}

// reportLaunchFailure prints the failure line and, when the error
// carries one, the rendered remediation card.
func reportLaunchFailure(w io.Writer, err error, verboseMode bool) {
	var appErr *bootstrap.AppExitError
	if errors.As(err, &appErr) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ErrorStyle.Render("✗ ")+appErr.Error())
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ErrorStyle.Render("Launch failed: ")+formatErrorForDisplay(err, verboseMode))
	renderIssueCard(w, err)
}

// printStepTrail lists each bootstrap step with its outcome, for
// verbose runs.
func printStepTrail(w io.Writer, results []bootstrap.StepResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseStyle.Render("Step trail:"))
	for _, r := range results {
		fmt.Fprintln(w, VerboseStyle.Render(fmt.Sprintf("  %-17s %-8s %s", r.Name, r.Status, r.Detail)))
	}
}

// newStepLogger builds the pipeline's progress logger: unstamped,
// human-readable lines on the given writer, with debug detail in
// verbose mode.
func newStepLogger(w io.Writer, verboseMode bool) *log.Logger {
	opts := log.Options{Prefix: "aifm"}
	if verboseMode {
		opts.Level = log.DebugLevel
	}
	return log.NewWithOptions(w, opts)
}
