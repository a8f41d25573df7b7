// SPDX-License-Identifier: MPL-2.0

package pathenv

import "errors"

// ErrStoreUnsupported indicates the platform has no persistent per-user
// PATH store the launcher knows how to edit.
var ErrStoreUnsupported = errors.New("persistent PATH store not supported on this platform")

// Store reads and writes the persisted per-user PATH value. Two
// operations only, so tests can fake it instead of touching real
// per-user storage.
type Store interface {
	// UserPath returns the stored user PATH value, unexpanded. A store
	// with no value yet returns "" with no error.
	UserPath() (string, error)

	// SetUserPath replaces the stored user PATH value.
	SetUserPath(value string) error
}
