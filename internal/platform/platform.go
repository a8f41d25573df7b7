// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the platform-specific path conventions the
// launcher depends on: where per-user installers place executables and
// how bare tool names map to executable filenames.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExeName appends the Windows executable suffix to a bare tool name.
// On other systems the name is returned unchanged.
func ExeName(name string) string {
	if runtime.GOOS == Windows {
		return name + ".exe"
	}
	return name
}

// LocalAppDataDir returns the per-user local application data directory
// (%LOCALAPPDATA%). When the environment variable is unset the path is
// derived from the user profile, matching what Windows itself would
// resolve. The computation is environment-driven so tests can exercise
// it on any host.
func LocalAppDataDir() (string, error) {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, "AppData", "Local"), nil
}

// UserProgramsDir returns the per-user programs directory where Windows
// installers without elevation place executables
// (%LOCALAPPDATA%\Programs). Ollama's default install lands here.
func UserProgramsDir() (string, error) {
	appData, err := LocalAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appData, "Programs"), nil
}
