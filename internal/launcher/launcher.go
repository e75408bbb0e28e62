// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"vfsinfo-cli/internal/config"
	"vfsinfo-cli/internal/shellenv"

	"github.com/spf13/afero"
)

// FailureMessage is printed to stdout when the child exits non-zero.
const FailureMessage = "execution failed."

var (
	// ErrToolDirectory is returned when the launcher cannot locate its own
	// directory.
	ErrToolDirectory = errors.New("cannot resolve tool directory")
	// ErrWorkDir is matched by every *WorkDirError.
	ErrWorkDir = errors.New("tool directory is not accessible")
	// ErrToolNotFound is returned when pipenv is not on the child's PATH.
	ErrToolNotFound = errors.New("pipenv not found")
	// ErrInitHook is returned when the init hook cannot be evaluated at all.
	ErrInitHook = errors.New("init hook failed")
)

type (
	// WorkDirError reports a tool directory that cannot be used as the
	// child's working directory.
	WorkDirError struct {
		Dir string
		Err error
	}

	// Options holds the resolved launcher settings.
	Options struct {
		// VersionManagerRoot is exported as PYENV_ROOT.
		VersionManagerRoot string
		// InitHook is evaluated in the embedded shell; empty disables it.
		InitHook string
		// Interpreter is the command pipenv runs the script with.
		Interpreter string
		// ToolCommand is the pipenv executable, looked up on the child's PATH.
		ToolCommand string
		// VenvInProject exports PIPENV_VENV_IN_PROJECT=1.
		VenvInProject bool
		// PinPythonFromPipfile exports PYENV_VERSION from the Pipfile's
		// [requires] section unless it is already set.
		PinPythonFromPipfile bool
		// Script is the tool script, relative to the tool directory.
		Script string
		// SettingsFile is passed after --setting. It is not checked.
		SettingsFile string
		// ToolDir replaces the resolved launcher directory when set.
		ToolDir string
		// InheritDeny lists patterns of host variables dropped before the
		// environment is prepared.
		InheritDeny []string
	}

	// Launcher prepares the Python environment and runs the tool.
	Launcher struct {
		opts       Options
		hook       shellenv.Hook
		environ    func() []string
		executable func() (string, error)
		fs         afero.Fs
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer
		state      State
	}

	// Option configures a Launcher during construction.
	Option func(*Launcher)
)

func (e *WorkDirError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrWorkDir, e.Dir, e.Err)
}

// Unwrap exposes both ErrWorkDir and the underlying cause.
func (e *WorkDirError) Unwrap() []error {
	return []error{ErrWorkDir, e.Err}
}

// OptionsFromConfig maps a loaded configuration to launcher options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		VersionManagerRoot:   string(cfg.Python.VersionManagerRoot),
		InitHook:             cfg.Python.InitHook,
		Interpreter:          string(cfg.Python.Interpreter),
		ToolCommand:          string(cfg.Pipenv.Command),
		VenvInProject:        cfg.Pipenv.VenvInProject,
		PinPythonFromPipfile: cfg.Pipenv.PinPythonFromPipfile,
		Script:               string(cfg.Target.Script),
		SettingsFile:         string(cfg.Target.SettingsFile),
		ToolDir:              string(cfg.Target.ToolDir),
		InheritDeny:          cfg.Env.InheritDeny,
	}
}

// WithHook replaces the init hook derived from Options.InitHook.
func WithHook(h shellenv.Hook) Option {
	return func(l *Launcher) {
		l.hook = h
	}
}

// WithEnviron replaces os.Environ as the source of the host environment.
func WithEnviron(environ func() []string) Option {
	return func(l *Launcher) {
		l.environ = environ
	}
}

// WithExecutable replaces os.Executable when locating the tool directory.
func WithExecutable(executable func() (string, error)) Option {
	return func(l *Launcher) {
		l.executable = executable
	}
}

// WithFs sets the filesystem used for working directory and Pipfile checks.
func WithFs(fs afero.Fs) Option {
	return func(l *Launcher) {
		l.fs = fs
	}
}

// WithStdio sets the streams handed to the child. Nil values keep the
// process streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		if stdin != nil {
			l.stdin = stdin
		}
		if stdout != nil {
			l.stdout = stdout
		}
		if stderr != nil {
			l.stderr = stderr
		}
	}
}

// New creates a Launcher. Without options it reads the real process
// environment, executable path and filesystem, and the child inherits the
// process streams.
func New(opts Options, options ...Option) *Launcher {
	l := &Launcher{
		opts:       opts,
		environ:    os.Environ,
		executable: os.Executable,
		fs:         afero.NewOsFs(),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.hook == nil {
		l.hook = shellenv.ScriptHook{Script: opts.InitHook, Stdout: l.stderr, Stderr: l.stderr}
	}
	return l
}

// State returns the state reached by the last Run.
func (l *Launcher) State() State {
	return l.state
}

// Run resolves the tool directory, prepares the environment and dispatches
// the tool with args forwarded verbatim. A non-zero child status makes Run
// print FailureMessage to the launcher's stdout.
func (l *Launcher) Run(ctx context.Context, args []string) *Result {
	l.state = StateStart

	toolDir, err := l.ResolveToolDirectory()
	if err != nil {
		return l.finish(newErrorResult(err))
	}

	env, err := l.PrepareEnvironment(ctx, toolDir)
	if err != nil {
		return l.finish(newErrorResult(err))
	}
	l.state = StateEnvironmentPrepared

	result := l.Dispatch(ctx, toolDir, env, args)
	if result.ChildFailed() {
		fmt.Fprintln(l.stdout, FailureMessage)
	}
	return l.finish(result)
}

func (l *Launcher) finish(r *Result) *Result {
	l.state = r.State
	slog.Debug("launcher finished", "state", r.State, "exit_code", r.ExitCode)
	return r
}

// ResolveToolDirectory returns the canonical absolute directory containing
// the running launcher, with symlinks resolved. Options.ToolDir takes
// precedence when set.
func (l *Launcher) ResolveToolDirectory() (string, error) {
	if l.opts.ToolDir != "" {
		dir, err := filepath.Abs(l.opts.ToolDir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrToolDirectory, err)
		}
		return dir, nil
	}

	exe, err := l.executable()
	if err != nil {
		return "", fmt.Errorf("%w: determining executable path: %w", ErrToolDirectory, err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("%w: resolving symlinks for %s: %w", ErrToolDirectory, exe, err)
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolDirectory, err)
	}

	return filepath.Dir(abs), nil
}
