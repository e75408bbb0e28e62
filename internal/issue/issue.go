// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ToolDirectoryUnresolvedId Id = iota + 1
	WorkDirInaccessibleId
	PipenvNotFoundId
	VersionManagerMissingId
	InitHookFailedId
	ConfigLoadFailedId
	ExecutionFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		extLinks []HttpLink  // upstream docs for the failing tool
	}
)

func (i *Issue) Id() Id {
	return i.id
}

// Title returns the text of the first Markdown heading.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSuffix(title, "!")
		}
	}
	return ""
}

// Render renders the issue markdown with the given glamour style ("dark",
// "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	toolDirectoryUnresolvedIssue = &Issue{
		id: ToolDirectoryUnresolvedId,
		mdMsg: `
# Could not locate the launcher directory

The launcher looks for ` + "`vfsinfo.py`" + ` next to its own executable, after resolving symlinks.
That location could not be determined (the binary may have been moved or deleted while running).

## Things you can try
- Run the launcher again from its installed location
- Point it at the tool directory explicitly:
~~~
$ export VFSINFO_TARGET_TOOL_DIR=/path/to/vfsinfo
~~~`,
	}

	workDirInaccessibleIssue = &Issue{
		id: WorkDirInaccessibleId,
		mdMsg: `
# Tool directory is not accessible

The child process runs with the tool directory as its working directory,
and that directory is missing, not a directory, or not readable.

## Things you can try
- Check that the directory exists and that you can ` + "`cd`" + ` into it
- Fix permissions on the directory
- Check ` + "`target.tool_dir`" + ` in your config file`,
	}

	pipenvNotFoundIssue = &Issue{
		id: PipenvNotFoundId,
		mdMsg: `
# pipenv was not found

The launcher runs the script through ` + "`pipenv run`" + `, but no ` + "`pipenv`" + ` executable
is on the PATH prepared for the child (including the pyenv shims).

## Things you can try
- Install pipenv for the selected Python version:
~~~
$ pip install --user pipenv
~~~
- Set ` + "`pipenv.command`" + ` in your config file to an absolute path`,
		extLinks: []HttpLink{"https://pipenv.pypa.io/"},
	}

	versionManagerMissingIssue = &Issue{
		id: VersionManagerMissingId,
		mdMsg: `
# pyenv root not found

The configured version manager root does not exist, so no pyenv-managed
interpreter will be found on the PATH.

## Things you can try
- Install pyenv into ` + "`~/.pyenv`" + `
- Set ` + "`python.version_manager_root`" + ` (or ` + "`VFSINFO_PYTHON_VERSION_MANAGER_ROOT`" + `) to your pyenv root`,
		extLinks: []HttpLink{"https://github.com/pyenv/pyenv#installation"},
	}

	initHookFailedIssue = &Issue{
		id: InitHookFailedId,
		mdMsg: `
# Init hook could not be evaluated

The shell snippet configured as ` + "`python.init_hook`" + ` is evaluated by an embedded
POSIX shell. It could not be parsed.

## Things you can try
- Keep the default hook:
~~~
python: init_hook: "eval \"$(pyenv init -)\""
~~~
- Set the hook to an empty string to skip it`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file could not be loaded or is invalid.

## Things you can try
- Check the CUE syntax of ` + "`~/.config/vfsinfo/config.cue`" + `
- Point to another file with ` + "`VFSINFO_CONFIG`" + `
- Remove the file to fall back to the built-in defaults`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# vfsinfo.py exited with an error

The launcher prepared the environment and ran the script, but it returned a
non-zero exit status. Its own output above usually says why.

## Common causes
- The settings file passed with ` + "`--setting`" + ` does not exist
- The pipenv virtualenv has not been created yet:
~~~
$ pipenv install
~~~
- The selected Python version is not installed in pyenv`,
	}

	issues = map[Id]*Issue{
		toolDirectoryUnresolvedIssue.Id(): toolDirectoryUnresolvedIssue,
		workDirInaccessibleIssue.Id():     workDirInaccessibleIssue,
		pipenvNotFoundIssue.Id():          pipenvNotFoundIssue,
		versionManagerMissingIssue.Id():   versionManagerMissingIssue,
		initHookFailedIssue.Id():          initHookFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		executionFailedIssue.Id():         executionFailedIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}
