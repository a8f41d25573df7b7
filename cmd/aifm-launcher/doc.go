// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for aifm-launcher.
//
// This package implements the Cobra command hierarchy for the launcher:
// the root command performs the full bootstrap-and-launch sequence, and
// the check, config, and update subcommands expose its supporting
// pieces individually.
package cmd
