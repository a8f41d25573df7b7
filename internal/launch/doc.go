// SPDX-License-Identifier: MPL-2.0

// Package launch starts the application with the interpreter from the
// provisioned virtual environment.
//
// The launcher hands its console to the application: stdin, stdout and
// stderr are inherited, the working directory is the application
// directory, and the call blocks until the application exits. The
// application's exit code is reported back unchanged so the caller can
// map it to the launcher's own exit status.
package launch
