// SPDX-License-Identifier: MPL-2.0

// Package config handles launcher configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $VFSINFO_CONFIG when set, otherwise from
// ~/.config/vfsinfo/config.cue (XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/vfsinfo on macOS, %APPDATA%\vfsinfo on Windows).
// A missing file is not an error: every key has a built-in default. Any key can be
// overridden from the environment as VFSINFO_<SECTION>_<KEY>, for example
// VFSINFO_TARGET_SETTINGS_FILE.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before
// being merged into Viper.
package config
