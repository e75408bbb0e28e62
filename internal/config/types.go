// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"vfsinfo-cli/pkg/types"
)

const (
	// LogLevelDebug logs everything, including the prepared environment.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs progress messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs recoverable problems only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// DefaultInitHook initializes pyenv shims and shell integration.
	DefaultInitHook = `eval "$(pyenv init -)"`
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidCommandName is returned when an executable or script name is empty.
	ErrInvalidCommandName = errors.New("invalid command name")
	// ErrInvalidPythonConfig is the sentinel error wrapped by InvalidPythonConfigError.
	ErrInvalidPythonConfig = errors.New("invalid python config")
	// ErrInvalidPipenvConfig is the sentinel error wrapped by InvalidPipenvConfigError.
	ErrInvalidPipenvConfig = errors.New("invalid pipenv config")
	// ErrInvalidTargetConfig is the sentinel error wrapped by InvalidTargetConfigError.
	ErrInvalidTargetConfig = errors.New("invalid target config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// CommandName is the name or path of an executable or script.
	CommandName string

	// InvalidCommandNameError is returned when a CommandName is empty or
	// whitespace-only.
	InvalidCommandNameError struct {
		Field string
		Value CommandName
	}

	// InvalidPythonConfigError collects field errors of a PythonConfig.
	InvalidPythonConfigError struct {
		FieldErrors []error
	}

	// InvalidPipenvConfigError collects field errors of a PipenvConfig.
	InvalidPipenvConfigError struct {
		FieldErrors []error
	}

	// InvalidTargetConfigError collects field errors of a TargetConfig.
	InvalidTargetConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the launcher configuration.
	Config struct {
		Python PythonConfig `json:"python" mapstructure:"python"`
		Pipenv PipenvConfig `json:"pipenv" mapstructure:"pipenv"`
		Target TargetConfig `json:"target" mapstructure:"target"`
		Exit   ExitConfig   `json:"exit" mapstructure:"exit"`
		Env    EnvConfig    `json:"env" mapstructure:"env"`
		UI     UIConfig     `json:"ui" mapstructure:"ui"`
		Log    LogConfig    `json:"log" mapstructure:"log"`
	}

	// PythonConfig selects the Python runtime.
	PythonConfig struct {
		// VersionManagerRoot is exported as PYENV_ROOT; <root>/bin is put on PATH.
		VersionManagerRoot types.FilesystemPath `json:"version_manager_root" mapstructure:"version_manager_root"`
		// InitHook is evaluated in the embedded shell. Empty disables it.
		InitHook string `json:"init_hook" mapstructure:"init_hook"`
		// Interpreter is the program pipenv runs the script with.
		Interpreter CommandName `json:"interpreter" mapstructure:"interpreter"`
	}

	// PipenvConfig configures the dependency isolation tool.
	PipenvConfig struct {
		// Command is looked up on the PATH prepared for the child.
		Command CommandName `json:"command" mapstructure:"command"`
		// VenvInProject exports PIPENV_VENV_IN_PROJECT=1.
		VenvInProject bool `json:"venv_in_project" mapstructure:"venv_in_project"`
		// PinPythonFromPipfile exports PYENV_VERSION from the Pipfile's
		// [requires] section unless it is already set.
		PinPythonFromPipfile bool `json:"pin_python_from_pipfile" mapstructure:"pin_python_from_pipfile"`
	}

	// TargetConfig names the script and its settings file.
	TargetConfig struct {
		// Script is resolved relative to the tool directory.
		Script CommandName `json:"script" mapstructure:"script"`
		// SettingsFile is passed after --setting. It is not checked for existence.
		SettingsFile types.FilesystemPath `json:"settings_file" mapstructure:"settings_file"`
		// ToolDir replaces the launcher's own directory when set.
		ToolDir types.FilesystemPath `json:"tool_dir" mapstructure:"tool_dir"`
	}

	// ExitConfig controls the launcher's own exit status.
	ExitConfig struct {
		// PropagateStatus exits with the child's status. When false the
		// launcher exits 0 after a failed child, as older releases did.
		PropagateStatus bool `json:"propagate_status" mapstructure:"propagate_status"`
	}

	// EnvConfig filters the inherited environment.
	EnvConfig struct {
		// InheritDeny lists name patterns removed from the host environment
		// before it is handed to the child.
		InheritDeny []string `json:"inherit_deny" mapstructure:"inherit_deny"`
	}

	// UIConfig configures user-facing output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// SlogLevel maps the level to its slog equivalent. Unknown values map to warn.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the CommandName.
func (c CommandName) String() string { return string(c) }

// IsValid returns whether the CommandName is non-empty and not whitespace-only.
func (c CommandName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(c)) == "" {
		return false, []error{&InvalidCommandNameError{Value: c}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCommandNameError.
func (e *InvalidCommandNameError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid command name %q: must be non-empty", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid command name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidCommandName for errors.Is() compatibility.
func (e *InvalidCommandNameError) Unwrap() error { return ErrInvalidCommandName }

// IsValid returns whether the PythonConfig has valid fields.
// An empty InitHook is valid and disables the hook.
func (c PythonConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.VersionManagerRoot.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = appendCommandErrs(errs, "python.interpreter", c.Interpreter)
	if len(errs) > 0 {
		return false, []error{&InvalidPythonConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPythonConfigError.
func (e *InvalidPythonConfigError) Error() string {
	return fmt.Sprintf("invalid python config: %s", joinErrs(e.FieldErrors))
}

// Unwrap returns ErrInvalidPythonConfig for errors.Is() compatibility.
func (e *InvalidPythonConfigError) Unwrap() error { return ErrInvalidPythonConfig }

// IsValid returns whether the PipenvConfig has valid fields.
func (c PipenvConfig) IsValid() (bool, []error) {
	errs := appendCommandErrs(nil, "pipenv.command", c.Command)
	if len(errs) > 0 {
		return false, []error{&InvalidPipenvConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPipenvConfigError.
func (e *InvalidPipenvConfigError) Error() string {
	return fmt.Sprintf("invalid pipenv config: %s", joinErrs(e.FieldErrors))
}

// Unwrap returns ErrInvalidPipenvConfig for errors.Is() compatibility.
func (e *InvalidPipenvConfigError) Unwrap() error { return ErrInvalidPipenvConfig }

// IsValid returns whether the TargetConfig has valid fields. The script must
// be a plain file name or a path relative to the tool directory. ToolDir may
// be empty but must be absolute otherwise.
func (c TargetConfig) IsValid() (bool, []error) {
	errs := appendCommandErrs(nil, "target.script", c.Script)
	if filepath.IsAbs(string(c.Script)) {
		errs = append(errs, fmt.Errorf("target.script %q: must be relative to the tool directory", c.Script))
	}
	if err := c.SettingsFile.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.ToolDir != "" {
		if err := c.ToolDir.RequireAbsolute(); err != nil {
			errs = append(errs, fmt.Errorf("target.tool_dir: %w", err))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetConfigError.
func (e *InvalidTargetConfigError) Error() string {
	return fmt.Sprintf("invalid target config: %s", joinErrs(e.FieldErrors))
}

// Unwrap returns ErrInvalidTargetConfig for errors.Is() compatibility.
func (e *InvalidTargetConfigError) Unwrap() error { return ErrInvalidTargetConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each section's IsValid(); Exit, Env and UI hold no values
// that need validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Python.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Pipenv.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Target.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrs(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// EffectiveLogLevel returns debug when verbose output is on, and the
// configured level otherwise.
func (c *Config) EffectiveLogLevel() LogLevel {
	if c.UI.Verbose {
		return LogLevelDebug
	}
	return c.Log.Level
}

// DefaultConfig returns the default configuration. Paths still contain "~"
// and are expanded when the configuration is loaded.
func DefaultConfig() *Config {
	return &Config{
		Python: PythonConfig{
			VersionManagerRoot: "~/.pyenv",
			InitHook:           DefaultInitHook,
			Interpreter:        "python",
		},
		Pipenv: PipenvConfig{
			Command:              "pipenv",
			VenvInProject:        true,
			PinPythonFromPipfile: false,
		},
		Target: TargetConfig{
			Script:       "vfsinfo.py",
			SettingsFile: "~/my_settings/settings.json",
			ToolDir:      "",
		},
		Exit: ExitConfig{
			PropagateStatus: true,
		},
		Env: EnvConfig{
			InheritDeny: []string{},
		},
		UI: UIConfig{
			Verbose: false,
		},
		Log: LogConfig{
			Level: LogLevelWarn,
		},
	}
}

func appendCommandErrs(errs []error, field string, c CommandName) []error {
	if valid, fieldErrs := c.IsValid(); !valid {
		for _, err := range fieldErrs {
			var cmdErr *InvalidCommandNameError
			if errors.As(err, &cmdErr) {
				cmdErr.Field = field
			}
			errs = append(errs, err)
		}
	}
	return errs
}

func joinErrs(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
