// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"vfsinfo-cli/internal/pipenv"
	"vfsinfo-cli/internal/shellenv"
	"vfsinfo-cli/pkg/platform"

	"github.com/spf13/afero"
)

const (
	// EnvVersionManagerRoot is the pyenv installation root.
	EnvVersionManagerRoot = "PYENV_ROOT"
	// EnvPythonVersion selects the pyenv version for the child.
	EnvPythonVersion = "PYENV_VERSION"
)

// PrepareEnvironment builds the child's environment from the host
// environment, in this order:
//
//  1. host variables matching Options.InheritDeny are dropped;
//  2. PYENV_ROOT is set to Options.VersionManagerRoot;
//  3. <PYENV_ROOT>/bin is prepended to PATH;
//  4. the init hook is applied;
//  5. PYENV_VERSION is pinned from the Pipfile when enabled and unset;
//  6. PIPENV_VENV_IN_PROJECT=1 is set when enabled;
//  7. the parent of toolDir is prepended to PYTHONPATH.
//
// Hook failures after evaluation has started are logged and the captured
// environment is kept. Only a hook that cannot run at all is an error.
func (l *Launcher) PrepareEnvironment(ctx context.Context, toolDir string) (shellenv.EnvMap, error) {
	host := shellenv.FromSlice(l.environ())
	env, err := host.Without(l.opts.InheritDeny)
	if err != nil {
		return nil, fmt.Errorf("apply env.inherit_deny: %w", err)
	}

	root := l.opts.VersionManagerRoot
	env.Set(EnvVersionManagerRoot, root)
	env.Prepend(platform.EnvPath, filepath.Join(root, "bin"))

	if ok, _ := afero.DirExists(l.fs, root); !ok {
		slog.Debug("version manager root does not exist", "path", root)
	}

	env, err = l.applyHook(ctx, env)
	if err != nil {
		return nil, err
	}

	if l.opts.PinPythonFromPipfile {
		l.pinPythonVersion(env, toolDir)
	}

	if l.opts.VenvInProject {
		env.Set(pipenv.EnvVenvInProject, "1")
		if !pipenv.InProjectVenv(l.fs, toolDir) {
			slog.Debug("no in-project virtualenv yet, pipenv will create it", "dir", toolDir)
		}
	}

	env.Prepend(platform.EnvPythonPath, filepath.Dir(toolDir))

	if ok, _ := afero.Exists(l.fs, l.opts.SettingsFile); !ok {
		slog.Debug("settings file does not exist, passing it anyway", "path", l.opts.SettingsFile)
	}

	slog.Debug("environment prepared", "changed", host.Diff(env))

	return env, nil
}

func (l *Launcher) applyHook(ctx context.Context, env shellenv.EnvMap) (shellenv.EnvMap, error) {
	hooked, err := l.hook.Apply(ctx, env)
	if err == nil {
		return hooked, nil
	}

	var hookErr *shellenv.HookError
	if errors.As(err, &hookErr) && hooked != nil {
		slog.Warn("init hook reported a failure, continuing", "status", hookErr.Status, "error", hookErr.Err)
		return hooked, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("%w: %w", ErrInitHook, err)
}

// pinPythonVersion sets PYENV_VERSION from the Pipfile in toolDir. A missing
// or unreadable Pipfile leaves the environment untouched.
func (l *Launcher) pinPythonVersion(env shellenv.EnvMap, toolDir string) {
	if v, ok := env.Get(EnvPythonVersion); ok && v != "" {
		return
	}

	pf, err := pipenv.LoadPipfile(l.fs, toolDir)
	if err != nil {
		if !errors.Is(err, pipenv.ErrNoPipfile) {
			slog.Warn("ignoring unreadable Pipfile", "dir", toolDir, "error", err)
		}
		return
	}

	if version := pf.PythonVersion(); version != "" {
		env.Set(EnvPythonVersion, version)
		slog.Debug("pinned python version from Pipfile", "version", version)
	}
}
