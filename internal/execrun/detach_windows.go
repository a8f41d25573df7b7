// SPDX-License-Identifier: MPL-2.0

//go:build windows

package execrun

import (
	"os/exec"
	"syscall"
)

// Process creation flags for detached child processes. The detached
// process gets its own process group so the launcher's Ctrl-C does not
// propagate, and no console is inherited.
const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// configureDetach prepares cmd to run as an independent background
// process, optionally with its console window suppressed.
func configureDetach(cmd *exec.Cmd, hideWindow bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    hideWindow,
		CreationFlags: createNewProcessGroup | detachedProcess,
	}
}
