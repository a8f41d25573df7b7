// SPDX-License-Identifier: MPL-2.0

//go:build windows

package pathenv

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	hwndBroadcast    = 0xFFFF
	wmSettingChange  = 0x001A
	smtoAbortIfHung  = 0x0002
	broadcastTimeout = 5000 // milliseconds
)

// NewStore returns the per-user registry store.
func NewStore() Store { return &registryStore{} }

// registryStore persists the user PATH in HKCU\Environment. Values are
// written as REG_EXPAND_SZ so entries like %USERPROFILE% keep expanding,
// and every write is followed by the environment-change broadcast that
// tells running shells to refresh.
type registryStore struct{}

// UserPath implements Store.
func (s *registryStore) UserPath() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, "Environment", registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening HKCU\\Environment: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue("Path")
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading user Path: %w", err)
	}
	return value, nil
}

// SetUserPath implements Store.
func (s *registryStore) SetUserPath(value string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, "Environment", registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening HKCU\\Environment for write: %w", err)
	}
	defer key.Close()

	if err := key.SetExpandStringValue("Path", value); err != nil {
		return fmt.Errorf("writing user Path: %w", err)
	}

	broadcastEnvironmentChange()
	return nil
}

// broadcastEnvironmentChange sends the WM_SETTINGCHANGE "Environment"
// notification, the same one setx sends after editing the block. Best
// effort: a shell that ignores it just needs a restart, which is no
// worse than not broadcasting.
func broadcastEnvironmentChange() {
	env, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}

	user32 := windows.NewLazySystemDLL("user32.dll")
	sendMessageTimeout := user32.NewProc("SendMessageTimeoutW")
	//nolint:errcheck // Best effort; there is nothing to do on failure.
	sendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		uintptr(broadcastTimeout),
		0,
	)
}
