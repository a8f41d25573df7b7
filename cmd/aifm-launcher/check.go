// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/ollama"

	"github.com/spf13/cobra"
)

type (
	// readinessChecker is the slice of *ollama.Checker the command needs.
	readinessChecker interface {
		Check(ctx context.Context) (*ollama.Outcome, error)
	}

	// checkParams bundles the collaborators for the check command,
	// enabling the readiness flow in runCheck to be tested with a fake
	// checker.
	checkParams struct {
		stdout  io.Writer
		stderr  io.Writer
		checker readinessChecker
		model   string
		verbose bool
	}
)

// checkCmd verifies the AI service without starting the application.
var checkCmd = &cobra.Command{
	Use:   "check [model]",
	Short: "Check that the local AI service and model are ready",
	Long: `Check that the local AI service and model are ready.

The check locates the Ollama executable, starts the service when it is
not answering, and ensures the model is installed, pulling it if
necessary. The application itself is not started.

The model defaults to ollama.model from the configuration; pass one
explicitly to check a different model.`,
	Example: `  # Check the configured model
  aifm-launcher check

  # Check a specific model
  aifm-launcher check qwen3:8b`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheckCmd,
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssueCard(cmd.ErrOrStderr(), err)
		return &ExitError{Code: 1}
	}
	if len(args) > 0 {
		cfg.Ollama.Model = args[0]
	}

	var opts []ollama.ClientOption
	if cfg.Ollama.BaseURL != "" {
		opts = append(opts, ollama.WithBaseURL(cfg.Ollama.BaseURL))
	}
	checker := ollama.NewChecker(ollama.NewClient(opts...), execrun.NewOSRunner(), cfg.Ollama)
	checker.Stdout = cmd.OutOrStdout()
	checker.Stderr = cmd.ErrOrStderr()

	p := checkParams{
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
		checker: checker,
		model:   cfg.Ollama.Model,
		verbose: verbose,
	}

	// runCheck reports its own failures, so the ExitError stays bare.
	if err := runCheck(cmd.Context(), p); err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}

// runCheck is the readiness flow behind the check command, separated
// from Cobra for testability.
func runCheck(ctx context.Context, p checkParams) error {
	fmt.Fprintf(p.stdout, "Checking AI service readiness for model %s...\n", CmdStyle.Render(p.model))

	outcome, err := p.checker.Check(ctx)
	if err != nil {
		fmt.Fprintln(p.stderr, ErrorStyle.Render("Not ready: ")+formatErrorForDisplay(err, p.verbose))
		renderIssueCard(p.stderr, err)
		return err
	}

	fmt.Fprintf(p.stdout, "%s ollama: %s\n", SuccessStyle.Render("✓"), outcome.ExePath)

	service := "came up"
	switch {
	case outcome.ServiceWasUp:
		service = "already running"
	case outcome.Started:
		service = "started"
	}
	fmt.Fprintf(p.stdout, "%s service: %s\n", SuccessStyle.Render("✓"), service)

	model := "installed"
	if outcome.ModelPulled {
		model = "pulled"
	}
	fmt.Fprintf(p.stdout, "%s model %s: %s\n", SuccessStyle.Render("✓"), outcome.Model, model)

	return nil
}
