// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lihrs/aifm-launcher/internal/execrun"
	"github.com/lihrs/aifm-launcher/internal/update"
	"github.com/lihrs/aifm-launcher/internal/workspace"

	"github.com/spf13/cobra"
)

type (
	// appUpdater is the slice of *update.Updater the command needs.
	appUpdater interface {
		Check(ctx context.Context) (*update.UpdateCheck, error)
		Apply(ctx context.Context, m *update.Manifest) (*update.ApplyResult, error)
	}

	// updateParams bundles the collaborators and flags for the update
	// command, enabling the flow in runUpdate to be tested without live
	// release servers.
	updateParams struct {
		stdout  io.Writer
		stderr  io.Writer
		updater appUpdater
		check   bool
		verbose bool
	}
)

// updateCheckOnly limits the update command to the availability check.
var updateCheckOnly bool

// updateCmd compares the installed version against the published
// manifest and applies a newer release.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update AI Fund Master to the published release",
	Long: `Update AI Fund Master to the published release.

The command fetches the project's version manifest, compares it against
the installed version, and applies a newer release. On Windows it
downloads the release installer and starts it detached; the launcher
then exits so the installer can replace the application files.
Elsewhere it downloads the release archive and extracts it over the
application directory.`,
	Example: `  # Check for an update without installing
  aifm-launcher update --check

  # Apply the published release
  aifm-launcher update`,
	Args: cobra.NoArgs,
	RunE: runUpdateCmd,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "check for an available update without installing")
}

func runUpdateCmd(cmd *cobra.Command, _ []string) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssueCard(cmd.ErrOrStderr(), err)
		return &ExitError{Code: 1}
	}

	ws, err := workspace.New(workDir)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	p := updateParams{
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
		updater: update.NewUpdater(execrun.NewOSRunner(), ws, cfg.Update),
		check:   updateCheckOnly,
		verbose: verbose,
	}

	if err := runUpdate(cmd.Context(), p); err != nil {
		fmt.Fprintln(p.stderr, ErrorStyle.Render("Update failed: ")+formatErrorForDisplay(err, p.verbose))
		renderIssueCard(p.stderr, err)
		return &ExitError{Code: 1}
	}
	return nil
}

// runUpdate is the update flow behind the update command, separated
// from Cobra for testability.
func runUpdate(ctx context.Context, p updateParams) error {
	check, err := p.updater.Check(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
	fmt.Fprintf(p.stdout, "Remote version:  %s\n", CmdStyle.Render(check.RemoteVersion))

	if !check.UpdateAvailable {
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		return nil
	}

	if p.check {
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		fmt.Fprintln(p.stdout, "Run "+CmdStyle.Render("aifm-launcher update")+" to install it.")
		return nil
	}

	fmt.Fprintf(p.stdout, "\nDownloading release %s...\n", check.RemoteVersion)

	result, err := p.updater.Apply(ctx, check.Manifest)
	if err != nil {
		return err
	}

	if result.ExitRequired {
		fmt.Fprintln(p.stdout, "Installer started. The launcher exits now so the installer can replace the application files.")
		return nil
	}

	fmt.Fprintf(p.stdout, "%s Updated %d files. Restart the application to pick up the new version.\n",
		SuccessStyle.Render("✓"), result.FilesReplaced)
	return nil
}
