// SPDX-License-Identifier: MPL-2.0

package platform

// Values of runtime.GOOS that change launcher behavior.
const (
	// Windows has no SIGINT for child processes; an interrupted child is
	// killed instead, and POSIX test fixtures are skipped.
	Windows = "windows"
	// Darwin keeps the config directory under ~/Library/Application Support.
	Darwin = "darwin"
	// Linux honors XDG_CONFIG_HOME for the config directory.
	Linux = "linux"
)
