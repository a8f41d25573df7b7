// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/lihrs/aifm-launcher/internal/config"

	"github.com/spf13/cobra"
)

// configCmd is the `aifm-launcher config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage launcher configuration",
	Long: `Manage launcher configuration.

Configuration is read from the first of:
  - the --config flag
  - ./aifm-launcher.toml (next to the application)
  - Windows: %APPDATA%\aifm-launcher\aifm-launcher.toml
  - macOS: ~/Library/Application Support/aifm-launcher/aifm-launcher.toml
  - Linux: ~/.config/aifm-launcher/aifm-launcher.toml

Missing keys fall back to built-in defaults, and AIFM_* environment
variables override both (e.g. AIFM_OLLAMA_MODEL).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file search path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE:  runConfigDump,
	})
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, path, err := config.LoadResolved()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssueCard(cmd.ErrOrStderr(), err)
		return &ExitError{Code: 1}
	}
	if profileName != "" {
		prof := config.Profile(profileName)
		if valid, errs := prof.IsValid(); !valid {
			return &ExitError{Code: 1, Err: errs[0]}
		}
		cfg.Profile = prof
	}

	printConfig(cmd.OutOrStdout(), cfg, path)
	return nil
}

// printConfig renders the effective configuration, separated from Cobra
// for testability.
func printConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	spec := cfg.Profile.Spec()
	fmt.Fprintf(w, "%s: %s  (Python >= %d.%d, entry point %s)\n",
		keyStyle.Render("profile"), valueStyle.Render(cfg.Profile.String()),
		spec.PythonMajor, spec.PythonMinor, spec.Entrypoint)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  pause: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Pause)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("provision"))
	fmt.Fprintf(w, "  venv_dir: %s\n", valueStyle.Render(cfg.Provision.VenvDir))
	if cfg.Provision.UvPath != "" {
		fmt.Fprintf(w, "  uv_path: %s\n", valueStyle.Render(cfg.Provision.UvPath))
	} else {
		fmt.Fprintf(w, "  uv_path: %s\n", SubtitleStyle.Render("(bundled)"))
	}
	fmt.Fprintf(w, "  link_mode: %s\n", valueStyle.Render(cfg.Provision.LinkMode.String()))
	fmt.Fprintf(w, "  requirements: %s\n", valueStyle.Render(cfg.Provision.Requirements))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ollama"))
	fmt.Fprintf(w, "  enabled: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Ollama.Enabled)))
	fmt.Fprintf(w, "  required: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Ollama.Required)))
	fmt.Fprintf(w, "  model: %s\n", valueStyle.Render(cfg.Ollama.Model))
	if cfg.Ollama.BaseURL != "" {
		fmt.Fprintf(w, "  base_url: %s\n", valueStyle.Render(cfg.Ollama.BaseURL))
	} else {
		fmt.Fprintf(w, "  base_url: %s\n", SubtitleStyle.Render("(from OLLAMA_HOST/OLLAMA_PORT)"))
	}
	fmt.Fprintf(w, "  serve_timeout: %s\n", valueStyle.Render(cfg.Ollama.ServeTimeout.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("update"))
	fmt.Fprintf(w, "  check_on_start: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Update.CheckOnStart)))
	fmt.Fprintf(w, "  manifest_url: %s\n", valueStyle.Render(cfg.Update.ManifestURL))
	fmt.Fprintf(w, "  app_version: %s\n", valueStyle.Render(cfg.Update.AppVersion))
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	path, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	name := config.ConfigFileName + "." + config.ConfigFileExt
	fmt.Fprintf(cmd.OutOrStdout(), "Application directory file: %s\n", filepath.Join(".", name))
	fmt.Fprintf(cmd.OutOrStdout(), "User config file: %s\n", filepath.Join(cfgDir, name))
	return nil
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	content, err := config.GenerateTOML(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
