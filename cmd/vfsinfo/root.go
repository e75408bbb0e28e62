// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"vfsinfo-cli/internal/config"
	"vfsinfo-cli/internal/issue"
	"vfsinfo-cli/internal/launcher"
	"vfsinfo-cli/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// issueStyle is the glamour style used for issue guidance.
const issueStyle = "auto"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose mirrors ui.verbose for error rendering.
	verbose bool

	// provider loads the configuration; tests replace it.
	provider = config.NewProvider()

	// newLauncher builds the launcher; tests replace it to inject fakes.
	newLauncher = func(opts launcher.Options, stdout, stderr io.Writer) *launcher.Launcher {
		return launcher.New(opts, launcher.WithStdio(os.Stdin, stdout, stderr))
	}

	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vfsinfo [args...]",
		Short: "Run vfsinfo.py inside its pyenv/pipenv environment",
		Long: TitleStyle.Render("vfsinfo") + SubtitleStyle.Render(" - run vfsinfo.py inside its pyenv/pipenv environment") + `

All arguments are passed to vfsinfo.py unchanged, followed by
` + CmdStyle.Render("--setting ~/my_settings/settings.json") + `.

` + SubtitleStyle.Render("Configuration:") + `
  ` + CmdStyle.Render("$VFSINFO_CONFIG") + `            explicit config.cue
  ` + CmdStyle.Render("~/.config/vfsinfo/config.cue") + ` default location
  ` + CmdStyle.Render("VFSINFO_<SECTION>_<KEY>") + `    per-key override, e.g. VFSINFO_UI_VERBOSE=true`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLauncher(cmd.Context(), args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and exits with its status.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Flag parsing is disabled, so fang's man/completion subcommands would
	// shadow arguments meant for vfsinfo.py.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		os.Exit(int(exitCodeFor(err)))
	}
}

// runLauncher loads the configuration and runs the launcher with args.
func runLauncher(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := provider.Load(ctx, config.OptionsFromEnv())
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	verbose = cfg.UI.Verbose
	setupLogging(stderr, cfg.EffectiveLogLevel())
	slog.Debug("starting", "version", getVersionString(), "args", args)

	opts := launcher.OptionsFromConfig(cfg)
	result := newLauncher(opts, stdout, stderr).Run(ctx, args)

	switch {
	case result.Err != nil:
		return &ExitError{Code: result.ExitCode, Err: classifyLaunchError(result.Err, opts)}
	case result.ExitCode.IsSuccess():
		return nil
	case cfg.Exit.PropagateStatus:
		// The launcher already printed the failure message.
		return &ExitError{Code: result.ExitCode}
	default:
		slog.Debug("child failed, exiting 0", "exit_code", result.ExitCode)
		return nil
	}
}

// exitCodeFor maps an error returned by the root command to a process exit code.
func exitCodeFor(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// handleError prints err unless it only carries an exit status.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, styles.ErrorHeader.String())
	fmt.Fprintln(w, formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !verbose || !errors.As(err, &ae) {
		return
	}
	guide, gerr := ae.Guide(issueStyle)
	if gerr != nil {
		slog.Debug("cannot render issue", "id", ae.IssueID, "error", gerr)
		return
	}
	fmt.Fprint(w, guide)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
