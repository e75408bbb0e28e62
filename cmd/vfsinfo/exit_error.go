// SPDX-License-Identifier: MPL-2.0

package cmd

import "vfsinfo-cli/pkg/types"

// ExitError carries the launcher's exit status out of RunE; Execute exits
// with Code once fang has handled the error.
//
// A nil Err stands for a child that ran and failed. The launcher already
// printed the failure message, so handleError stays silent for it.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "child exited with status " + e.Code.String()
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
