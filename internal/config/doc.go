// SPDX-License-Identifier: MPL-2.0

// Package config handles launcher configuration using Viper with TOML as the file format.
//
// Configuration is loaded from aifm-launcher.toml next to the launcher
// (the usual case: the launcher ships in the application directory), or
// from the platform config directory (~/.config/aifm-launcher on Linux,
// ~/Library/Application Support/aifm-launcher on macOS,
// %APPDATA%\aifm-launcher on Windows). AIFM_* environment variables
// override file values.
//
// The profile key selects the application edition; each profile binds a
// Python version floor and a GUI entry-point script, replacing the two
// near-identical launcher variants that used to exist.
package config
