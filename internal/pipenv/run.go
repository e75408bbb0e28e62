// SPDX-License-Identifier: MPL-2.0

package pipenv

const (
	// EnvVenvInProject makes pipenv keep the virtualenv in <project>/.venv.
	EnvVenvInProject = "PIPENV_VENV_IN_PROJECT"

	// SettingFlag is the option every tool of the suite reads its settings
	// file from.
	SettingFlag = "--setting"

	runSubcommand = "run"
)

// RunArgs returns the arguments passed to pipenv to run script with the given
// interpreter:
//
//	run <interpreter> <script> <args...> --setting <settings>
//
// args are forwarded verbatim and the settings pair is always last, so a
// --setting supplied by the caller is overridden by the fixed one. The
// returned slice never aliases args.
func RunArgs(interpreter, script string, args []string, settings string) []string {
	argv := make([]string, 0, len(args)+5)
	argv = append(argv, runSubcommand, interpreter, script)
	argv = append(argv, args...)
	return append(argv, SettingFlag, settings)
}
