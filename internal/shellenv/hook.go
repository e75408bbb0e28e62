// SPDX-License-Identifier: MPL-2.0

package shellenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// captureCommand is appended to every hook script. It is intercepted by the
// exec handler and never reaches the host.
const captureCommand = "__vfsinfo_capture_env"

var (
	// ErrHookParse is returned when a hook script is not valid shell.
	ErrHookParse = errors.New("init hook is not valid shell")
	// ErrHookExited is returned when a hook script exits before its environment
	// could be captured.
	ErrHookExited = errors.New("init hook exited early")
)

type (
	// Hook derives a new environment from a base environment.
	// Implementations must not modify base.
	Hook interface {
		Apply(ctx context.Context, base EnvMap) (EnvMap, error)
	}

	// HookFunc adapts a function to the Hook interface.
	HookFunc func(ctx context.Context, base EnvMap) (EnvMap, error)

	// NopHook returns a copy of the base environment.
	NopHook struct{}

	// ScriptHook evaluates a shell snippet in the embedded interpreter and
	// returns the exported variables it leaves behind.
	ScriptHook struct {
		// Script is the shell source, e.g. `eval "$(pyenv init -)"`.
		Script string
		// Dir is the interpreter's working directory. Empty means the
		// process working directory.
		Dir string
		// Stdout and Stderr receive output of commands run by the script.
		// Nil discards it.
		Stdout io.Writer
		Stderr io.Writer
	}

	// HookError reports a hook that ran but finished with a non-zero status.
	// The environment captured before the failure is still returned alongside it.
	HookError struct {
		Status uint8
		Err    error
	}
)

// Apply calls f.
func (f HookFunc) Apply(ctx context.Context, base EnvMap) (EnvMap, error) {
	return f(ctx, base)
}

// Apply returns base unchanged (as a copy).
func (NopHook) Apply(_ context.Context, base EnvMap) (EnvMap, error) {
	return base.Clone(), nil
}

// Validate parses the script without running it.
func (h ScriptHook) Validate() error {
	_, err := h.parse()
	return err
}

// Apply runs the script with base as its environment. Only exported string
// variables are reported back; shell functions and unexported variables stay
// inside the interpreter.
//
// A non-zero status from the script itself does not prevent the capture: the
// result is returned together with a *HookError so that callers can decide
// whether to continue.
func (h ScriptHook) Apply(ctx context.Context, base EnvMap) (EnvMap, error) {
	if strings.TrimSpace(h.Script) == "" {
		return base.Clone(), nil
	}

	prog, err := h.parse()
	if err != nil {
		return nil, err
	}

	var (
		captured EnvMap
		status   uint8
	)
	capture := func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != captureCommand {
				return next(ctx, args)
			}
			hc := interp.HandlerCtx(ctx)
			captured = exportedVars(hc.Env)
			return nil
		}
	}

	runner, err := interp.New(
		interp.Dir(h.Dir),
		interp.Env(expand.ListEnviron(base.Slice()...)),
		interp.StdIO(nil, h.Stdout, h.Stderr),
		interp.ExecHandlers(statusRecorder(&status), capture),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	runErr := runner.Run(ctx, prog)
	if captured == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if runErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrHookExited, runErr)
		}
		return nil, ErrHookExited
	}

	slog.Debug("init hook evaluated", "changed", base.Diff(captured))

	if status != 0 {
		return captured, &HookError{Status: status, Err: runErr}
	}
	return captured, nil
}

// parse parses the hook script followed by the capture command.
func (h ScriptHook) parse() (*syntax.File, error) {
	src := h.Script + "\n" + captureCommand + "\n"
	prog, err := syntax.NewParser().Parse(strings.NewReader(src), "init-hook")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHookParse, err)
	}
	return prog, nil
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("init hook finished with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("init hook finished with status %d", e.Status)
}

// Unwrap returns the underlying error, if any.
func (e *HookError) Unwrap() error { return e.Err }

// statusRecorder remembers the last non-zero exit status of an external
// command run by the hook.
func statusRecorder(status *uint8) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			err := next(ctx, args)
			if len(args) > 0 && args[0] == captureCommand {
				return err
			}
			var es interp.ExitStatus
			if errors.As(err, &es) && es != 0 {
				*status = uint8(es)
			}
			return err
		}
	}
}

// exportedVars collects the exported string variables of env. Later entries
// win, so overlay values replace those of the parent environment.
func exportedVars(env expand.Environ) EnvMap {
	vars := make(EnvMap)
	env.Each(func(name string, vr expand.Variable) bool {
		if !vr.IsSet() {
			delete(vars, name)
			return true
		}
		if vr.Exported && vr.Kind == expand.String {
			vars[name] = vr.Str
		} else {
			delete(vars, name)
		}
		return true
	})
	return vars
}
