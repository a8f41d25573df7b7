// SPDX-License-Identifier: MPL-2.0

package pathenv

import "sync"

// Compile-time interface check
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests. ReadErr and WriteErr, when
// set, force the corresponding operation to fail.
type MemStore struct {
	mu     sync.Mutex
	value  string
	writes int

	ReadErr  error
	WriteErr error
}

// NewMemStore creates a MemStore holding the given initial PATH value.
func NewMemStore(initial string) *MemStore {
	return &MemStore{value: initial}
}

// UserPath implements Store.
func (s *MemStore) UserPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", s.ReadErr
	}
	return s.value, nil
}

// SetUserPath implements Store.
func (s *MemStore) SetUserPath(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.value = value
	s.writes++
	return nil
}

// Value returns the currently stored PATH.
func (s *MemStore) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Writes returns how many successful writes the store has seen.
func (s *MemStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
