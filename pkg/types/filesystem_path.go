// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
	ErrInvalidFilesystemPath = errors.New("invalid filesystem path")
	// ErrRelativePath is returned by RequireAbsolute for relative paths.
	ErrRelativePath = errors.New("path is not absolute")
)

type (
	// FilesystemPath represents an absolute or relative filesystem path.
	// A valid path must be non-empty and not whitespace-only.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// Validate returns an error if the FilesystemPath is empty or whitespace-only.
func (p FilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidFilesystemPathError{Value: p}
	}
	return nil
}

// RequireAbsolute returns an error unless p is valid and absolute.
func (p FilesystemPath) RequireAbsolute() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !filepath.IsAbs(string(p)) {
		return fmt.Errorf("%w: %s", ErrRelativePath, p)
	}
	return nil
}

// ExpandHome replaces a leading "~" or "$HOME" with home.
// Other values are returned unchanged.
func (p FilesystemPath) ExpandHome(home string) FilesystemPath {
	s := string(p)
	switch {
	case s == "~" || s == "$HOME":
		return FilesystemPath(home)
	case strings.HasPrefix(s, "~/"):
		return FilesystemPath(filepath.Join(home, s[2:]))
	case strings.HasPrefix(s, "$HOME/"):
		return FilesystemPath(filepath.Join(home, s[len("$HOME/"):]))
	case strings.HasPrefix(s, "${HOME}/"):
		return FilesystemPath(filepath.Join(home, s[len("${HOME}/"):]))
	}
	if os.PathSeparator == '\\' && strings.HasPrefix(s, `~\`) {
		return FilesystemPath(filepath.Join(home, s[2:]))
	}
	return p
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
