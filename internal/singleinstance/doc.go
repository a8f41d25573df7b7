// SPDX-License-Identifier: MPL-2.0

// Package singleinstance keeps two launchers from provisioning the same
// machine at once.
//
// The guard is a PID-stamped lock file in the OS temp directory created
// with O_EXCL. A conflicting lock whose owner process is gone is
// reclaimed once; a conflicting lock with a live owner (or unreadable
// content — never steal on doubt) reports the running instance.
package singleinstance
