// SPDX-License-Identifier: MPL-2.0

package pathenv

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lihrs/aifm-launcher/internal/platform"
)

const (
	// StatusOnPath: the tool already resolves on the process PATH; the
	// step is a terminal success without touching any store.
	StatusOnPath Status = "on-path"
	// StatusNotInstalled: neither PATH nor the conventional install
	// directory has the tool.
	StatusNotInstalled Status = "not-installed"
	// StatusRegistered: the install directory was appended to the
	// persisted user PATH.
	StatusRegistered Status = "registered"
	// StatusAlreadyPersisted: the persisted user PATH already carries the
	// install directory; only the process PATH needed fixing.
	StatusAlreadyPersisted Status = "already-persisted"
	// StatusUnsupported: this platform has no persistent store; the
	// process PATH was still updated for the current run.
	StatusUnsupported Status = "unsupported"
	// StatusPersistFailed: the store write was denied; Warning carries
	// the detail. Never aborts the run.
	StatusPersistFailed Status = "persist-failed"
)

// toolName is the executable this launcher registers.
const toolName = "ollama"

type (
	// Status classifies the outcome of a Registrar.Ensure pass.
	Status string

	// EnsureResult reports what Ensure found and did.
	EnsureResult struct {
		Status Status

		// ToolPath is the resolved executable, when one was found.
		ToolPath string

		// Dir is the conventional install directory that was checked or
		// registered.
		Dir string

		// Warning carries the persist failure for StatusPersistFailed.
		Warning error
	}

	// Registrar ensures the Ollama install directory is on the user
	// PATH. The zero value is not usable; construct with NewRegistrar.
	// The exported fields are seams that tests may replace.
	Registrar struct {
		store Store

		// LookPath resolves a name on the process PATH.
		LookPath func(string) (string, error)
		// Getenv/Setenv access this process's environment.
		Getenv func(string) string
		Setenv func(string, string) error
		// InstallDir overrides the conventional per-user install
		// directory (<LocalAppData>\Programs\Ollama).
		InstallDir string
	}
)

// NewRegistrar creates a Registrar over the given store.
func NewRegistrar(store Store) *Registrar {
	return &Registrar{
		store:    store,
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
		Setenv:   os.Setenv,
	}
}

// Ensure makes the tool resolvable: already on PATH is a terminal
// success, a missing install is reported for the caller to decide on,
// and an installed-but-unregistered tool gets its directory appended to
// the persisted user PATH and prepended to this process's PATH so the
// steps that follow in the same run can use it without a restart.
//
// Ensure never fails the run itself. Denied writes come back as
// StatusPersistFailed with the cause in Warning.
func (r *Registrar) Ensure() *EnsureResult {
	if path, err := r.LookPath(toolName); err == nil {
		return &EnsureResult{Status: StatusOnPath, ToolPath: path}
	}

	dir := r.installDir()
	exe := filepath.Join(dir, platform.ExeName(toolName))
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return &EnsureResult{Status: StatusNotInstalled, Dir: dir}
	}

	r.prependProcessPath(dir)

	persisted, err := r.persist(dir)
	switch {
	case errors.Is(err, ErrStoreUnsupported):
		return &EnsureResult{Status: StatusUnsupported, ToolPath: exe, Dir: dir}
	case err != nil:
		return &EnsureResult{Status: StatusPersistFailed, ToolPath: exe, Dir: dir, Warning: err}
	case !persisted:
		return &EnsureResult{Status: StatusAlreadyPersisted, ToolPath: exe, Dir: dir}
	}
	return &EnsureResult{Status: StatusRegistered, ToolPath: exe, Dir: dir}
}

// installDir returns the directory checked for a per-user install.
func (r *Registrar) installDir() string {
	if r.InstallDir != "" {
		return r.InstallDir
	}
	programs, err := platform.UserProgramsDir()
	if err != nil {
		// No resolvable home directory. The existence check in Ensure
		// will miss and report not-installed, which is the truthful
		// answer for such an environment.
		return "Ollama"
	}
	return filepath.Join(programs, "Ollama")
}

// persist appends dir to the stored user PATH unless an entry already
// covers it. Returns whether a write happened.
func (r *Registrar) persist(dir string) (bool, error) {
	current, err := r.store.UserPath()
	if err != nil {
		return false, err
	}
	if ContainsDir(current, dir) {
		return false, nil
	}
	if err := r.store.SetUserPath(AppendDir(current, dir)); err != nil {
		return false, err
	}
	return true, nil
}

// prependProcessPath puts dir at the front of this process's PATH.
func (r *Registrar) prependProcessPath(dir string) {
	current := r.Getenv("PATH")
	if ContainsDir(current, dir) {
		return
	}
	updated := dir
	if current != "" {
		updated = dir + string(os.PathListSeparator) + current
	}
	//nolint:errcheck // Process-env update is best effort.
	r.Setenv("PATH", updated)
}

// ContainsDir reports whether the PATH list already has an entry equal
// to dir. Entries are compared whole, case-insensitively and ignoring
// trailing separators, matching Windows PATH semantics without the
// false positives of a raw substring search.
func ContainsDir(pathList, dir string) bool {
	want := canonDir(dir)
	for _, entry := range strings.Split(pathList, string(os.PathListSeparator)) {
		if canonDir(entry) == want {
			return true
		}
	}
	return false
}

// AppendDir appends dir to the PATH list with the OS list separator.
func AppendDir(pathList, dir string) string {
	if strings.TrimSpace(pathList) == "" {
		return dir
	}
	return pathList + string(os.PathListSeparator) + dir
}

func canonDir(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, `\/`)
	return strings.ToLower(s)
}
