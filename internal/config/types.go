// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ProfileDefault targets the standard edition: Python 3.11 floor,
	// gui.py entry point.
	ProfileDefault Profile = "default"
	// ProfilePyQt5 targets the PyQt5 edition: Python 3.10 floor,
	// gui-pyqt5.py entry point.
	ProfilePyQt5 Profile = "pyqt5"

	// LinkModeCopy copies files from the uv cache into the environment.
	// The safest mode across filesystems and the launcher default.
	LinkModeCopy LinkMode = "copy"
	// LinkModeClone uses copy-on-write clones where the filesystem supports them.
	LinkModeClone LinkMode = "clone"
	// LinkModeHardlink hardlinks files from the uv cache.
	LinkModeHardlink LinkMode = "hardlink"
	// LinkModeSymlink symlinks files from the uv cache.
	LinkModeSymlink LinkMode = "symlink"
)

var (
	// ErrInvalidProfile is returned when a Profile value is not recognized.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidLinkMode is returned when a LinkMode value is not recognized.
	ErrInvalidLinkMode = errors.New("invalid link mode")
	// ErrInvalidVenvDir is returned when a VenvDir value is empty or whitespace-only.
	ErrInvalidVenvDir = errors.New("invalid venv directory")
	// ErrInvalidModelName is returned when an Ollama model name is empty or whitespace-only.
	ErrInvalidModelName = errors.New("invalid model name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Profile selects which edition of the application the launcher
	// provisions and starts. Each profile binds a Python version floor
	// and a GUI entry-point script.
	Profile string

	// InvalidProfileError is returned when a Profile value is not recognized.
	// It wraps ErrInvalidProfile for errors.Is() compatibility.
	InvalidProfileError struct {
		Value Profile
	}

	// LinkMode is the uv cache link strategy, exported to uv via the
	// UV_LINK_MODE environment variable on every invocation.
	LinkMode string

	// InvalidLinkModeError is returned when a LinkMode value is not recognized.
	// It wraps ErrInvalidLinkMode for errors.Is() compatibility.
	InvalidLinkModeError struct {
		Value LinkMode
	}

	// ProfileSpec carries the per-profile launch parameters.
	ProfileSpec struct {
		// PythonMajor/PythonMinor form the interpreter version floor.
		// A discovered interpreter satisfies the floor when its major
		// matches exactly and its minor is at least PythonMinor.
		PythonMajor int
		PythonMinor int

		// Entrypoint is the GUI script started inside the provisioned
		// environment.
		Entrypoint string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the launcher configuration.
	Config struct {
		// Profile selects the application edition to launch.
		Profile Profile `toml:"profile" mapstructure:"profile"`
		// UI configures terminal interaction.
		UI UIConfig `toml:"ui" mapstructure:"ui"`
		// Provision configures environment provisioning.
		Provision ProvisionConfig `toml:"provision" mapstructure:"provision"`
		// Ollama configures the AI service registration and readiness check.
		Ollama OllamaConfig `toml:"ollama" mapstructure:"ollama"`
		// Update configures the application update check.
		Update UpdateConfig `toml:"update" mapstructure:"update"`
	}

	// UIConfig configures terminal interaction.
	UIConfig struct {
		// Pause keeps the console window open on exit until the user
		// presses Enter. Suppressed automatically when stdin is not
		// interactive.
		Pause bool `toml:"pause" mapstructure:"pause"`
		// Verbose enables verbose output.
		Verbose bool `toml:"verbose" mapstructure:"verbose"`
	}

	// ProvisionConfig configures environment provisioning.
	ProvisionConfig struct {
		// VenvDir is the virtual environment directory, relative to the
		// working directory.
		VenvDir string `toml:"venv_dir" mapstructure:"venv_dir"`
		// UvPath overrides the uv executable. Empty means the bundled
		// binary in the working directory (uv.exe on Windows, uv elsewhere).
		UvPath string `toml:"uv_path" mapstructure:"uv_path"`
		// LinkMode is passed to uv via UV_LINK_MODE.
		LinkMode LinkMode `toml:"link_mode" mapstructure:"link_mode"`
		// Requirements is the dependency manifest filename.
		Requirements string `toml:"requirements" mapstructure:"requirements"`
	}

	// OllamaConfig configures the AI service steps.
	OllamaConfig struct {
		// Enabled runs the PATH registration and readiness steps.
		Enabled bool `toml:"enabled" mapstructure:"enabled"`
		// Required gates the launch on the readiness outcome. When false
		// readiness failures are reported and the app starts anyway.
		Required bool `toml:"required" mapstructure:"required"`
		// Model is the model identifier ensured before launch.
		Model string `toml:"model" mapstructure:"model"`
		// BaseURL overrides the service address. Empty derives it from
		// OLLAMA_HOST/OLLAMA_PORT with localhost:11434 as the fallback.
		BaseURL string `toml:"base_url" mapstructure:"base_url"`
		// ServeTimeout bounds the wait for a freshly started service.
		ServeTimeout time.Duration `toml:"serve_timeout" mapstructure:"serve_timeout"`
	}

	// UpdateConfig configures the application update check.
	UpdateConfig struct {
		// CheckOnStart performs a non-blocking availability check during
		// bootstrap. Updates are never applied implicitly.
		CheckOnStart bool `toml:"check_on_start" mapstructure:"check_on_start"`
		// ManifestURL is the version manifest location.
		ManifestURL string `toml:"manifest_url" mapstructure:"manifest_url"`
		// AppVersion is the installed application version compared
		// against the manifest.
		AppVersion string `toml:"app_version" mapstructure:"app_version"`
	}
)

// profileSpecs binds each known profile to its launch parameters.
var profileSpecs = map[Profile]ProfileSpec{
	ProfileDefault: {PythonMajor: 3, PythonMinor: 11, Entrypoint: "gui.py"},
	ProfilePyQt5:   {PythonMajor: 3, PythonMinor: 10, Entrypoint: "gui-pyqt5.py"},
}

// IsValid returns whether the Profile is recognized, and a list of
// validation errors if it is not.
func (p Profile) IsValid() (bool, []error) {
	if _, ok := profileSpecs[p]; !ok {
		return false, []error{&InvalidProfileError{Value: p}}
	}
	return true, nil
}

// Spec returns the launch parameters for the profile. Unknown profiles
// fall back to the default profile's spec; callers are expected to have
// validated the profile first.
func (p Profile) Spec() ProfileSpec {
	if spec, ok := profileSpecs[p]; ok {
		return spec
	}
	return profileSpecs[ProfileDefault]
}

// String returns the profile name.
func (p Profile) String() string { return string(p) }

// Error implements the error interface for InvalidProfileError.
func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile %q (valid: %q, %q)", e.Value, ProfileDefault, ProfilePyQt5)
}

// Unwrap returns ErrInvalidProfile for errors.Is() compatibility.
func (e *InvalidProfileError) Unwrap() error { return ErrInvalidProfile }

// IsValid returns whether the LinkMode is one uv accepts, and a list of
// validation errors if it is not.
func (m LinkMode) IsValid() (bool, []error) {
	switch m {
	case LinkModeCopy, LinkModeClone, LinkModeHardlink, LinkModeSymlink:
		return true, nil
	default:
		return false, []error{&InvalidLinkModeError{Value: m}}
	}
}

// String returns the link mode value as passed to UV_LINK_MODE.
func (m LinkMode) String() string { return string(m) }

// Error implements the error interface for InvalidLinkModeError.
func (e *InvalidLinkModeError) Error() string {
	return fmt.Sprintf("invalid link mode %q (valid: copy, clone, hardlink, symlink)", e.Value)
}

// Unwrap returns ErrInvalidLinkMode for errors.Is() compatibility.
func (e *InvalidLinkModeError) Unwrap() error { return ErrInvalidLinkMode }

// IsValid returns whether the Config has valid fields.
// It delegates to each typed field's IsValid() and checks the string
// fields that must not be blank.
func (c *Config) IsValid() (bool, []error) {
	var errs []error

	if valid, fieldErrs := c.Profile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Provision.LinkMode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.Provision.VenvDir) == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidVenvDir, c.Provision.VenvDir))
	}
	if c.Ollama.Enabled && strings.TrimSpace(c.Ollama.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidModelName, c.Ollama.Model))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig plus the collected field errors so
// both errors.Is(err, ErrInvalidConfig) and checks against individual
// field sentinels (e.g. ErrInvalidProfile) traverse the chain.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the built-in configuration the launcher runs
// with when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Profile: ProfileDefault,
		UI: UIConfig{
			Pause:   true,
			Verbose: false,
		},
		Provision: ProvisionConfig{
			VenvDir:      ".venv",
			UvPath:       "",
			LinkMode:     LinkModeCopy,
			Requirements: "requirements.txt",
		},
		Ollama: OllamaConfig{
			Enabled:      true,
			Required:     false,
			Model:        "qwen3:4b",
			BaseURL:      "",
			ServeTimeout: 30 * time.Second,
		},
		Update: UpdateConfig{
			CheckOnStart: false,
			ManifestURL:  "https://github.com/lihrs/AI-Fund-Master/raw/refs/heads/main/version.ini",
			AppVersion:   "4.0.0",
		},
	}
}
