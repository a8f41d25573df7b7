// SPDX-License-Identifier: MPL-2.0

// Package python discovers a host Python interpreter and applies the
// launcher's version gate.
//
// Discovery is PATH-based only: Find tries the conventional interpreter
// names and QueryVersion runs a single `--version` probe whose output is
// authoritative. Version parsing is strict semver — anything the parser
// rejects counts as an unusable interpreter, and the pipeline falls
// through to provisioning rather than guessing.
package python
