// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lihrs/aifm-launcher/internal/issue"
	"github.com/lihrs/aifm-launcher/internal/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "aifm-launcher"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "aifm-launcher"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix is the prefix for environment variable overrides
	// (e.g. AIFM_OLLAMA_MODEL overrides ollama.model).
	EnvPrefix = "AIFM"
)

// ConfigDir returns the launcher configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the launcher configuration: built-in defaults, then the
// config file (if any), then AIFM_* environment overrides.
func Load() (*Config, error) {
	cfg, _, err := LoadResolved()
	return cfg, err
}

// LoadResolved is Load plus the path of the config file that was read
// (empty when running on pure defaults).
//
// File resolution order:
//  1. the explicit --config override, which must exist
//  2. aifm-launcher.toml in the working directory (the launcher ships
//     next to the application, so per-directory config wins)
//  3. aifm-launcher.toml in the platform config directory
func LoadResolved() (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	if configFileOverride != "" {
		if !fileExists(configFileOverride) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(configFileOverride).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'aifm-launcher config init' to create one").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", configFileOverride)).
				BuildError()
		}
		if err := readFileInto(v, configFileOverride); err != nil {
			return nil, "", err
		}
		resolvedPath = configFileOverride
	} else {
		localPath := ConfigFileName + "." + ConfigFileExt
		switch {
		case fileExists(localPath):
			if err := readFileInto(v, localPath); err != nil {
				return nil, "", err
			}
			resolvedPath = localPath
		default:
			cfgDir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
			if fileExists(userPath) {
				if err := readFileInto(v, userPath); err != nil {
					return nil, "", err
				}
				resolvedPath = userPath
			}
			// No config file found: defaults plus env overrides.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the reported fields against 'aifm-launcher config show'").
			WithSuggestion("Remove the config file to fall back to defaults").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults seeds viper with the built-in configuration so every key
// exists for env overrides and partial config files.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("profile", string(defaults.Profile))
	v.SetDefault("ui.pause", defaults.UI.Pause)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("provision.venv_dir", defaults.Provision.VenvDir)
	v.SetDefault("provision.uv_path", defaults.Provision.UvPath)
	v.SetDefault("provision.link_mode", string(defaults.Provision.LinkMode))
	v.SetDefault("provision.requirements", defaults.Provision.Requirements)
	v.SetDefault("ollama.enabled", defaults.Ollama.Enabled)
	v.SetDefault("ollama.required", defaults.Ollama.Required)
	v.SetDefault("ollama.model", defaults.Ollama.Model)
	v.SetDefault("ollama.base_url", defaults.Ollama.BaseURL)
	v.SetDefault("ollama.serve_timeout", defaults.Ollama.ServeTimeout.String())
	v.SetDefault("update.check_on_start", defaults.Update.CheckOnStart)
	v.SetDefault("update.manifest_url", defaults.Update.ManifestURL)
	v.SetDefault("update.app_version", defaults.Update.AppVersion)
}

// readFileInto reads a TOML config file into viper, wrapping failures
// into an actionable error with the config card attached.
func readFileInto(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)
	if err := v.ReadInConfig(); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid TOML syntax").
			WithSuggestion("Run 'aifm-launcher config init' to regenerate the defaults").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
