// SPDX-License-Identifier: MPL-2.0

// Package workspace models the launcher's working-directory contract:
// the application directory that holds the entry-point script, the
// dependency manifest, the bundled provisioning tool, and the virtual
// environment. All paths the pipeline touches resolve through a
// Workspace so tests can point one at a temp dir.
package workspace
