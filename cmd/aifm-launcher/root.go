// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lihrs/aifm-launcher/internal/config"
	"github.com/lihrs/aifm-launcher/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// profileName overrides the configured application profile
	profileName string
	// workDir overrides the working directory (default: the launcher's
	// own directory layout, i.e. the current directory)
	workDir string
	// noPause suppresses the press-Enter-to-exit prompt
	noPause bool
	// noLock skips the single-instance guard
	noLock bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "aifm-launcher",
		Short: "Bootstrap and start AI Fund Master",
		Long: TitleStyle.Render("aifm-launcher") + SubtitleStyle.Render(" - Bootstrap and start AI Fund Master") + `

aifm-launcher prepares everything the application needs and then starts
it: it provisions a Python virtual environment with the bundled uv,
installs the dependency manifest, registers the local Ollama service on
the user PATH, verifies the AI model is ready, and launches the GUI
inside the environment.

Run it from the application directory (the directory holding uv,
requirements.txt, and the GUI scripts). Without a subcommand the full
sequence runs; subcommands expose individual pieces.

` + SubtitleStyle.Render("Examples:") + `
  aifm-launcher                   Provision, verify, and start the app
  aifm-launcher --profile pyqt5   Start the PyQt5 edition
  aifm-launcher check             Verify the AI service without launching
  aifm-launcher update --check    Check for a newer release
  aifm-launcher config show       Show the effective configuration`,
		Args: cobra.NoArgs,
		RunE: runLaunchCmd,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./aifm-launcher.toml)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "application profile (default or pyqt5)")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "application directory (default is the current directory)")

	// Launch-only flags
	rootCmd.Flags().BoolVar(&noPause, "no-pause", false, "exit without waiting for Enter")
	rootCmd.Flags().BoolVar(&noLock, "no-lock", false, "skip the single-instance guard")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(updateCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig applies the --config flag before any command loads
// configuration. Load failures are reported by the command that needs
// the configuration, not here.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}
}

// loadConfig loads the configuration and applies the --profile
// override, folding the configured verbosity into the --verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		prof := config.Profile(profileName)
		if valid, errs := prof.IsValid(); !valid {
			return nil, errs[0]
		}
		cfg.Profile = prof
	}
	if cfg.UI.Verbose {
		verbose = true
	}
	return cfg, nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssueCard prints the remediation card attached to an actionable
// error. Errors without a card, and render failures, print nothing: the
// failure line is already on screen.
func renderIssueCard(w io.Writer, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	card := ae.Card()
	if card == nil {
		return
	}
	rendered, renderErr := card.Render("dark")
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}
