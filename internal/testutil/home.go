// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"

	"vfsinfo-cli/pkg/platform"
)

// SetHomeDir points the platform's home variable (HOME, or USERPROFILE on
// Windows) at dir and returns a cleanup function restoring the original value.
//
// Usage:
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()
	return MustSetenv(t, platform.HomeEnv(), dir)
}
