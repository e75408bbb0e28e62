// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"testing"
)

func TestEnvKeyEqual(t *testing.T) {
	t.Parallel()

	if !EnvKeyEqual("PATH", "PATH") {
		t.Error("EnvKeyEqual(PATH, PATH) = false, want true")
	}

	got := EnvKeyEqual("PATH", "Path")
	want := runtime.GOOS == Windows
	if got != want {
		t.Errorf("EnvKeyEqual(PATH, Path) = %v, want %v on %s", got, want, runtime.GOOS)
	}
}

func TestHomeEnv(t *testing.T) {
	t.Parallel()

	want := EnvHome
	if runtime.GOOS == Windows {
		want = EnvUserProfile
	}
	if got := HomeEnv(); got != want {
		t.Errorf("HomeEnv() = %q, want %q", got, want)
	}
}
