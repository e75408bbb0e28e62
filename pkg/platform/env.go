// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"runtime"
	"strings"
)

const (
	// EnvPath is the executable search path variable.
	EnvPath = "PATH"
	// EnvPythonPath is the Python import search path variable.
	EnvPythonPath = "PYTHONPATH"
	// EnvHome is the POSIX home directory variable.
	EnvHome = "HOME"
	// EnvUserProfile is the Windows home directory variable.
	EnvUserProfile = "USERPROFILE"
)

// ListSeparator is the separator used by PATH-like lists on this platform.
const ListSeparator = string(os.PathListSeparator)

// EnvKeyEqual reports whether two environment variable names refer to the
// same variable. Names are case-insensitive on Windows.
func EnvKeyEqual(a, b string) bool {
	if runtime.GOOS == Windows {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// HomeEnv returns the name of the variable holding the user's home directory.
func HomeEnv() string {
	if runtime.GOOS == Windows {
		return EnvUserProfile
	}
	return EnvHome
}
