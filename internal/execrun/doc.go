// SPDX-License-Identifier: MPL-2.0

// Package execrun runs external tools (the bundled uv binary, the
// provisioned Python interpreter, the ollama CLI) on behalf of the
// launcher.
//
// All invocations go through the Runner interface so higher layers can
// be exercised in tests with the scripted Fake instead of real
// processes. OSRunner is the production implementation; it supports
// blocking runs with inherited stdio, captured runs for tools whose
// output must be parsed, and detached starts for background services.
package execrun
