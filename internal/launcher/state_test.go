// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"testing"

	"vfsinfo-cli/pkg/types"
)

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateStart, "start"},
		{StateEnvironmentPrepared, "environment-prepared"},
		{StateDispatched, "dispatched"},
		{StateSuccess, "success"},
		{StateFailure, "failure"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	ok := newExitCodeResult(types.ExitSuccess)
	if ok.State != StateSuccess || ok.ChildFailed() {
		t.Errorf("success result = %+v", ok)
	}

	failed := newExitCodeResult(3)
	if failed.State != StateFailure || !failed.ChildFailed() || failed.Err != nil {
		t.Errorf("child failure result = %+v", failed)
	}

	broken := newErrorResult(errors.New("boom"))
	if broken.State != StateFailure || broken.ExitCode != types.ExitFailure || broken.ChildFailed() {
		t.Errorf("error result = %+v", broken)
	}
}
