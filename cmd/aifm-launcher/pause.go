// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// pauseForExit holds the console open until the user presses Enter.
// The launcher is usually double-clicked on Windows, and without the
// pause every terminal state would close the window before its message
// can be read. No-op when enabled is false.
func pauseForExit(in io.Reader, out io.Writer, enabled bool) {
	if !enabled {
		return
	}
	fmt.Fprint(out, "\nPress Enter to exit...")
	//nolint:errcheck // a closed stdin just means no pause
	bufio.NewReader(in).ReadString('\n')
}

// stdinIsTerminal reports whether stdin is attached to a terminal.
// Piped or redirected stdin suppresses the exit pause so scripted runs
// never hang waiting for an acknowledgment.
func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
