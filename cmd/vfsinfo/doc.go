// SPDX-License-Identifier: MPL-2.0

// Package cmd is the vfsinfo command line entry point.
//
// The root command recognizes no flags of its own: every argument is handed
// to vfsinfo.py unchanged. Launcher settings come from the configuration file
// and VFSINFO_* environment variables instead.
package cmd
