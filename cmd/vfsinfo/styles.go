// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Colors for the help screen. Errors are styled by fang.
const (
	// ColorPrimary is purple, used for titles.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorHighlight is blue, used for commands and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for the command title in help output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for section headers in help output.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// CmdStyle is for command names, variables and paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
