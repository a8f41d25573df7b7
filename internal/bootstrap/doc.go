// SPDX-License-Identifier: MPL-2.0

// Package bootstrap sequences the launcher's steps: the single-instance
// gate, an optional update check, interpreter discovery, environment
// provisioning, dependency installation, legacy config neutralization,
// Ollama PATH registration, the readiness check, and the application
// launch.
//
// Control flow is strictly linear. Each step completes, records a soft
// miss and continues, or aborts the run with an actionable error; there
// is no retry and no rollback. Re-running on a provisioned directory is
// safe because the steps themselves gate on existing state.
package bootstrap
