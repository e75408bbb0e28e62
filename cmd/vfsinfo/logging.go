// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"vfsinfo-cli/internal/config"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog.Logger writing styled records to w. Launcher logs
// go to stderr only so that the tool's stdout stays untouched.
func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		Level:           log.Level(level.SlogLevel()),
		ReportTimestamp: level == config.LogLevelDebug,
	})
	return slog.New(handler)
}

// setupLogging installs the logger as the slog default.
func setupLogging(w io.Writer, level config.LogLevel) {
	slog.SetDefault(newLogger(w, level))
}
