// SPDX-License-Identifier: MPL-2.0

package ollama

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ServiceProcessRunning reports whether an ollama process is alive. A
// live process with an unresponsive API means the service is still
// initializing and worth waiting for instead of starting a second one.
func ServiceProcessRunning(ctx context.Context) bool {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Permission denied or the process is already gone.
			continue
		}
		if strings.Contains(strings.ToLower(name), "ollama") {
			return true
		}
	}
	return false
}
