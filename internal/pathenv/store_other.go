// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package pathenv

// NewStore returns the store for platforms without a persistent per-user
// PATH the launcher can edit. Both operations report ErrStoreUnsupported
// and the registration step degrades to a skip note.
func NewStore() Store { return unsupportedStore{} }

type unsupportedStore struct{}

// UserPath implements Store.
func (unsupportedStore) UserPath() (string, error) { return "", ErrStoreUnsupported }

// SetUserPath implements Store.
func (unsupportedStore) SetUserPath(string) error { return ErrStoreUnsupported }
