// SPDX-License-Identifier: MPL-2.0

package launcher

// State is the lifecycle state of a launcher run. Transitions only move
// forward; there are no retries.
type State int

const (
	// StateStart is the initial state, before the environment is prepared.
	StateStart State = iota
	// StateEnvironmentPrepared means the child environment has been built.
	StateEnvironmentPrepared
	// StateDispatched means the child process has been started.
	StateDispatched
	// StateSuccess means the child exited with status 0.
	StateSuccess
	// StateFailure means the child exited non-zero or could not be started.
	StateFailure
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateEnvironmentPrepared:
		return "environment-prepared"
	case StateDispatched:
		return "dispatched"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

