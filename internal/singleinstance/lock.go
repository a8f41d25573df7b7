// SPDX-License-Identifier: MPL-2.0

package singleinstance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/lihrs/aifm-launcher/internal/issue"
)

// LockFileName is the lock file created in the OS temp directory.
const LockFileName = "aifm-launcher.lock"

var (
	// ErrAlreadyRunning indicates another live launcher holds the lock.
	ErrAlreadyRunning = errors.New("another launcher instance is running")

	//nolint:gochecknoglobals // Test seam for process liveness checks.
	pidExists = process.PidExists
)

// Lock is a machine-wide single-instance guard. The zero value is not
// usable; construct with New.
type Lock struct {
	path     string
	acquired bool
}

// New creates a Lock rooted in dir. An empty dir uses the OS temp
// directory, which is the machine-wide default.
func New(dir string) *Lock {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Lock{path: filepath.Join(dir, LockFileName)}
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Acquire takes the lock or reports the holder. A lock whose owner
// process no longer exists is reclaimed, once; losing the retry means
// another instance won the race and is treated as running.
func (l *Lock) Acquire() error {
	for attempt := 0; ; attempt++ {
		err := l.tryCreate()
		if err == nil {
			l.acquired = true
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("creating instance lock: %w", err)
		}
		if attempt > 0 || !l.stale() {
			return issue.NewErrorContext().
				WithOperation("acquire instance lock").
				WithResource(l.path).
				WithSuggestion("Switch to the launcher window that is already open").
				WithSuggestion("To run anyway: aifm-launcher --no-lock").
				WithIssue(issue.AlreadyRunningId).
				Wrap(ErrAlreadyRunning).
				BuildError()
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale instance lock: %w", err)
		}
	}
}

// Release removes the lock file. Safe to call repeatedly, and a no-op
// on a Lock that never acquired — it must not delete a lock owned by
// the instance that beat it.
func (l *Lock) Release() error {
	if !l.acquired {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("releasing instance lock: %w", err)
	}
	l.acquired = false
	return nil
}

// tryCreate atomically creates the lock file stamped with this PID.
func (l *Lock) tryCreate() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, werr := fmt.Fprintf(f, "%d", os.Getpid())
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// stale reports whether the current lock's owner is definitely gone.
// Unreadable or malformed content counts as live.
func (l *Lock) stale() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	if pid == os.Getpid() {
		return false
	}
	alive, err := pidExists(int32(pid))
	if err != nil {
		return false
	}
	return !alive
}
