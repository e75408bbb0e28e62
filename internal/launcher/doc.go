// SPDX-License-Identifier: MPL-2.0

// Package launcher starts the vfsinfo tool inside its pyenv/pipenv managed
// Python environment.
//
// A run is strictly sequential and moves through the states
// start → environment-prepared → dispatched → success|failure:
//
//   - ResolveToolDirectory locates the symlink-resolved directory of the
//     running launcher binary (or the configured override).
//   - PrepareEnvironment derives the child's environment from the host
//     environment: PYENV_ROOT, the version manager's bin directory on PATH,
//     the init hook, PIPENV_VENV_IN_PROJECT and PYTHONPATH. The launcher's
//     own process environment is never modified.
//   - Dispatch runs `pipenv run python vfsinfo.py <args...> --setting <file>`
//     with the tool directory as working directory and waits for it.
//
// A child that exits non-zero makes Run print "execution failed." to stdout.
package launcher
