// SPDX-License-Identifier: MPL-2.0

// Package provision creates the application's virtual environment and
// installs its dependencies using the uv binary bundled with the app.
//
// Provisioning is idempotent at the directory level: an existing venv is
// never recreated, while dependency installation is always a full pass —
// uv's own resolver decides what actually changes. Every uv invocation
// runs in the workspace with the configured UV_LINK_MODE and with uv's
// output passed straight through to the user.
package provision
