// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"vfsinfo-cli/internal/pipenv"
	"vfsinfo-cli/internal/shellenv"
	"vfsinfo-cli/pkg/platform"
	"vfsinfo-cli/pkg/types"

	"github.com/spf13/afero"
	"golang.org/x/term"
)

var errNotDirectory = errors.New("not a directory")

// Dispatch runs the tool script through pipenv with toolDir as working
// directory and env as the complete child environment, then waits for it
// without a timeout. args are forwarded verbatim, followed by
// `--setting <Options.SettingsFile>`.
//
// Cancelling ctx interrupts the child and the child's own exit status is
// still reported, so a tool that handles the interrupt and exits 0 succeeds.
// A child attached to the launcher's terminal already received the Ctrl-C
// from the terminal and is not signalled a second time.
func (l *Launcher) Dispatch(ctx context.Context, toolDir string, env shellenv.EnvMap, args []string) *Result {
	if err := validateWorkDir(l.fs, toolDir); err != nil {
		return newErrorResult(err)
	}

	tool, err := shellenv.LookPath(env, toolDir, l.opts.ToolCommand)
	if err != nil {
		return newErrorResult(fmt.Errorf("%w: %w", ErrToolNotFound, err))
	}

	argv := pipenv.RunArgs(l.opts.Interpreter, l.opts.Script, args, l.opts.SettingsFile)

	cmd := exec.CommandContext(ctx, tool, argv...)
	cmd.Dir = toolDir
	cmd.Env = env.Slice()
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	foreground := sharesTerminal(l.stdin)
	cmd.Cancel = func() error {
		if foreground {
			slog.Debug("interrupt delivered by the terminal", "pid", cmd.Process.Pid)
			return nil
		}
		if runtime.GOOS == platform.Windows {
			return cmd.Process.Kill()
		}
		return cmd.Process.Signal(os.Interrupt)
	}

	slog.Debug("dispatching", "tool", tool, "args", argv, "dir", toolDir)

	if err := cmd.Start(); err != nil {
		return newErrorResult(startError(toolDir, tool, err))
	}
	l.state = StateDispatched

	// After a cancel Wait reports ctx.Err() even for a clean exit; the
	// process state is authoritative.
	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return newErrorResult(fmt.Errorf("failed to wait for %s: %w", tool, waitErr))
	}
	if waitErr != nil && ctx.Err() != nil {
		slog.Debug("child exited after interrupt", "exit_code", cmd.ProcessState.ExitCode())
	}
	return newExitCodeResult(types.ExitCodeFromState(cmd.ProcessState))
}

// sharesTerminal reports whether stdin is a terminal, in which case the child
// runs in the terminal's foreground process group alongside the launcher.
func sharesTerminal(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// validateWorkDir checks that dir exists and is a directory.
func validateWorkDir(fsys afero.Fs, dir string) error {
	info, err := fsys.Stat(dir)
	if err != nil {
		return &WorkDirError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return &WorkDirError{Dir: dir, Err: errNotDirectory}
	}
	return nil
}

// startError classifies a failed cmd.Start. A failed chdir into the tool
// directory (e.g. permission denied) is reported as ErrWorkDir.
func startError(toolDir, tool string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op == "chdir" {
		return &WorkDirError{Dir: toolDir, Err: pathErr.Err}
	}
	return fmt.Errorf("failed to start %s in %s: %w", tool, toolDir, err)
}
