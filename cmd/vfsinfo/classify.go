// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"

	"vfsinfo-cli/internal/issue"
	"vfsinfo-cli/internal/launcher"
)

// classifyLaunchError turns a launcher startup failure into an
// ActionableError linked to the matching issue catalog entry. Errors that are
// already actionable are returned unchanged.
func classifyLaunchError(err error, opts launcher.Options) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ctx := issue.NewErrorContext().Wrap(err)

	switch {
	case errors.Is(err, launcher.ErrToolDirectory):
		ctx.WithOperation("resolve tool directory").
			WithSuggestion("Reinstall vfsinfo or set target.tool_dir in the configuration").
			WithIssue(issue.ToolDirectoryUnresolvedId)
	case errors.Is(err, launcher.ErrWorkDir):
		ctx.WithOperation("change to tool directory").
			WithResource(workDirOf(err, opts)).
			WithSuggestions(
				"Check that the tool directory exists and is readable",
				"Fix its permissions or point target.tool_dir elsewhere",
			).
			WithIssue(issue.WorkDirInaccessibleId)
	case errors.Is(err, launcher.ErrToolNotFound) && !dirExists(opts.VersionManagerRoot):
		ctx.WithOperation("find pyenv").
			WithResource(opts.VersionManagerRoot).
			WithSuggestions(
				"Install pyenv, e.g. `curl https://pyenv.run | bash`",
				"Set python.version_manager_root to your pyenv root",
			).
			WithIssue(issue.VersionManagerMissingId)
	case errors.Is(err, launcher.ErrToolNotFound):
		op := "find " + opts.ToolCommand
		ctx.WithOperation(op).
			WithResource(opts.ToolCommand).
			WithSuggestions(
				"Install pipenv, e.g. `pip install --user pipenv`",
				"Set pipenv.command to its absolute path",
				"Check that "+opts.VersionManagerRoot+" is your pyenv root",
			).
			WithIssue(issue.PipenvNotFoundId)
	case errors.Is(err, launcher.ErrInitHook):
		ctx.WithOperation("evaluate init hook").
			WithSuggestions(
				"Fix the shell syntax of python.init_hook",
				"Set python.init_hook to \"\" to disable it",
			).
			WithIssue(issue.InitHookFailedId)
	default:
		op := "run " + opts.Script
		ctx.WithOperation(op).
			WithIssue(issue.ExecutionFailedId)
	}

	return ctx.Build()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// workDirOf returns the directory named by a *launcher.WorkDirError, falling
// back to the configured tool directory.
func workDirOf(err error, opts launcher.Options) string {
	var wdErr *launcher.WorkDirError
	if errors.As(err, &wdErr) {
		return wdErr.Dir
	}
	return opts.ToolDir
}
