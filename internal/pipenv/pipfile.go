// SPDX-License-Identifier: MPL-2.0

package pipenv

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	// PipfileName is the name of the pipenv project file.
	PipfileName = "Pipfile"
	// VenvDirName is the directory pipenv uses for in-project virtualenvs.
	VenvDirName = ".venv"
)

// ErrNoPipfile is returned when a project directory has no Pipfile.
var ErrNoPipfile = errors.New("no Pipfile found")

type (
	// Pipfile is the subset of a Pipfile the launcher cares about.
	Pipfile struct {
		Source      []Source       `toml:"source"`
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
		Requires    Requires       `toml:"requires"`
		Scripts     map[string]any `toml:"scripts"`
	}

	// Source is a package index entry.
	Source struct {
		Name      string `toml:"name"`
		URL       string `toml:"url"`
		VerifySSL bool   `toml:"verify_ssl"`
	}

	// Requires pins the Python version of the project.
	Requires struct {
		PythonVersion     string `toml:"python_version"`
		PythonFullVersion string `toml:"python_full_version"`
	}
)

// LoadPipfile reads and parses <dir>/Pipfile from fsys.
func LoadPipfile(fsys afero.Fs, dir string) (*Pipfile, error) {
	path := filepath.Join(dir, PipfileName)
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoPipfile, dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParsePipfile(data, path)
}

// ParsePipfile parses Pipfile content. name is used in error messages only.
func ParsePipfile(data []byte, name string) (*Pipfile, error) {
	var p Pipfile
	if err := toml.Unmarshal(data, &p); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("failed to parse %s at line %d, column %d: %w", name, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &p, nil
}

// PythonVersion returns the pinned Python version, preferring the full
// version when both are present. Empty means no pin.
func (p *Pipfile) PythonVersion() string {
	if v := strings.TrimSpace(p.Requires.PythonFullVersion); v != "" {
		return v
	}
	return strings.TrimSpace(p.Requires.PythonVersion)
}

// InProjectVenv reports whether <dir>/.venv exists as a directory.
func InProjectVenv(fsys afero.Fs, dir string) bool {
	ok, err := afero.DirExists(fsys, filepath.Join(dir, VenvDirName))
	return err == nil && ok
}
