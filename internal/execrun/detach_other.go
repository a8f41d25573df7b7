// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package execrun

import (
	"os/exec"
	"syscall"
)

// configureDetach prepares cmd to run in its own session so it survives
// the launcher exiting and ignores the launcher's Ctrl-C. hideWindow has
// no meaning outside Windows.
func configureDetach(cmd *exec.Cmd, _ bool) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
