// SPDX-License-Identifier: MPL-2.0

// Package update checks for and applies application releases.
//
// Releases are announced through a small INI manifest the project
// publishes at a fixed URL. A newer remote version is applied per
// platform: on Windows the manifest's installer is downloaded and
// started detached (the launcher then exits so the installer can
// replace files), elsewhere the manifest's tar.gz archive is extracted
// over the application directory. Version comparison is strict
// semver — a manifest that does not parse cleanly never triggers an
// update.
package update
