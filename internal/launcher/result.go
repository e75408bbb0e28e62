// SPDX-License-Identifier: MPL-2.0

package launcher

import "vfsinfo-cli/pkg/types"

// Result is the outcome of a launcher run.
//
// A child that ran and exited non-zero is not an error: ExitCode carries its
// status and Err stays nil. Err is set only when the child could not be
// started, in which case ExitCode is types.ExitFailure.
type Result struct {
	ExitCode types.ExitCode
	State    State
	Err      error
}

// ChildFailed reports whether the child ran and exited non-zero.
func (r *Result) ChildFailed() bool {
	return r.Err == nil && !r.ExitCode.IsSuccess()
}

func newErrorResult(err error) *Result {
	return &Result{ExitCode: types.ExitFailure, State: StateFailure, Err: err}
}

func newExitCodeResult(code types.ExitCode) *Result {
	if code.IsSuccess() {
		return &Result{ExitCode: code, State: StateSuccess}
	}
	return &Result{ExitCode: code, State: StateFailure}
}
