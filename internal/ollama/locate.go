// SPDX-License-Identifier: MPL-2.0

package ollama

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/lihrs/aifm-launcher/internal/platform"
)

var (
	// ErrNotInstalled indicates no ollama executable could be found on
	// PATH or in any conventional install location.
	ErrNotInstalled = errors.New("ollama not installed")

	//nolint:gochecknoglobals // Test seam for exec.LookPath.
	lookPath = exec.LookPath
)

// Locate finds the ollama executable: PATH first (the registration step
// upstream has usually put it there already), then the conventional
// install locations. There is no whole-drive search — a machine where
// none of these hit needs an install, not a longer scan.
func Locate() (string, error) {
	if path, err := lookPath("ollama"); err == nil {
		return path, nil
	}

	for _, candidate := range candidatePaths() {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", ErrNotInstalled
}

// candidatePaths lists the conventional install locations in the order
// the original installer populates them: the per-user programs dir, the
// machine-wide Program Files variants, the roaming profile, and an
// Ollama directory next to the launcher.
func candidatePaths() []string {
	exe := platform.ExeName("ollama")
	var paths []string
	if programs, err := platform.UserProgramsDir(); err == nil {
		paths = append(paths, filepath.Join(programs, "Ollama", exe))
	}

	if runtime.GOOS == platform.Windows {
		programFiles := os.Getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		programFilesX86 := os.Getenv("ProgramFiles(x86)")
		if programFilesX86 == "" {
			programFilesX86 = `C:\Program Files (x86)`
		}
		paths = append(paths,
			filepath.Join(programFiles, "Ollama", exe),
			filepath.Join(programFilesX86, "Ollama", exe),
		)
		if roaming := os.Getenv("APPDATA"); roaming != "" {
			paths = append(paths, filepath.Join(roaming, "Ollama", exe))
		}
	}

	return append(paths, filepath.Join(".", "Ollama", exe))
}
