// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/lihrs/aifm-launcher/internal/platform"
)

const (
	// LegacyConfigName is the project manifest uv auto-discovers. Its
	// presence would make uv treat the directory as a project and
	// override the provisioned environment.
	LegacyConfigName = "pyproject.toml"
	// LegacyConfigRenamed is the neutralized name the legacy manifest is
	// parked under.
	LegacyConfigRenamed = "pyproject-old.toml"
)

// ErrNotDirectory indicates the requested working directory does not
// exist or is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Workspace is the application directory the launcher operates in.
type Workspace struct {
	// Dir is the absolute working directory.
	Dir string
}

// New creates a Workspace rooted at dir. Empty dir means the launcher's
// current working directory. The directory must exist.
func New(dir string) (*Workspace, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	return &Workspace{Dir: abs}, nil
}

// Join resolves a path relative to the working directory.
func (w *Workspace) Join(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

// HasFile reports whether name exists in the working directory as a
// regular file.
func (w *Workspace) HasFile(name string) bool {
	info, err := os.Stat(w.Join(name))
	return err == nil && info.Mode().IsRegular()
}

// HasVenv reports whether the virtual environment directory exists.
func (w *Workspace) HasVenv(venvDir string) bool {
	info, err := os.Stat(w.Join(venvDir))
	return err == nil && info.IsDir()
}

// VenvPython returns the interpreter path inside the virtual
// environment: Scripts\python.exe on Windows, bin/python elsewhere.
func (w *Workspace) VenvPython(venvDir string) string {
	if runtime.GOOS == platform.Windows {
		return w.Join(venvDir, "Scripts", "python.exe")
	}
	return w.Join(venvDir, "bin", "python")
}

// NeutralizeLegacyConfig renames pyproject.toml to pyproject-old.toml.
// Returns false with no error when there is nothing to rename, so
// re-runs are quiet no-ops. An existing pyproject-old.toml is replaced;
// the contract is that the original name stops existing.
func (w *Workspace) NeutralizeLegacyConfig() (bool, error) {
	src := w.Join(LegacyConfigName)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", LegacyConfigName, err)
	}

	if err := os.Rename(src, w.Join(LegacyConfigRenamed)); err != nil {
		return false, fmt.Errorf("renaming %s to %s: %w", LegacyConfigName, LegacyConfigRenamed, err)
	}
	return true, nil
}
