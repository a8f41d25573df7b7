// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"
)

func TestPauseForExit(t *testing.T) {
	t.Parallel()

	t.Run("disabled writes nothing", func(t *testing.T) {
		t.Parallel()

		var out strings.Builder
		pauseForExit(strings.NewReader("\n"), &out, false)
		if out.Len() != 0 {
			t.Errorf("pauseForExit() wrote %q, want nothing", out.String())
		}
	})

	t.Run("enabled prompts and returns on Enter", func(t *testing.T) {
		t.Parallel()

		var out strings.Builder
		pauseForExit(strings.NewReader("\n"), &out, true)
		if !strings.Contains(out.String(), "Press Enter to exit") {
			t.Errorf("pauseForExit() wrote %q, want the prompt", out.String())
		}
	})

	t.Run("closed stdin does not block", func(t *testing.T) {
		t.Parallel()

		var out strings.Builder
		pauseForExit(strings.NewReader(""), &out, true)
		if !strings.Contains(out.String(), "Press Enter to exit") {
			t.Errorf("pauseForExit() wrote %q, want the prompt", out.String())
		}
	})
}
