// SPDX-License-Identifier: MPL-2.0

package pipenv

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const samplePipfile = `
[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]
numpy = "*"
astropy = {version = ">=5.0", extras = ["all"]}
Python_Dateutil = "*"

[dev-packages]
pytest = "*"

[requires]
python_version = "3.8"

[scripts]
status = "python vfsinfo.py"
`

func TestLoadPipfile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	dir := filepath.FromSlash("/opt/vfsinfo")
	if err := afero.WriteFile(fsys, filepath.Join(dir, PipfileName), []byte(samplePipfile), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPipfile(fsys, dir)
	if err != nil {
		t.Fatalf("LoadPipfile() error = %v", err)
	}

	if len(p.Source) != 1 || p.Source[0].Name != "pypi" || !p.Source[0].VerifySSL {
		t.Errorf("Source = %+v", p.Source)
	}
	if got := p.PythonVersion(); got != "3.8" {
		t.Errorf("PythonVersion() = %q, want %q", got, "3.8")
	}
	if _, ok := p.Packages["astropy"]; !ok || len(p.Packages) != 3 {
		t.Errorf("Packages = %v", p.Packages)
	}
	if _, ok := p.DevPackages["pytest"]; !ok {
		t.Errorf("DevPackages = %v", p.DevPackages)
	}
	if _, ok := p.Scripts["status"]; !ok {
		t.Error("Scripts should contain 'status'")
	}
}

func TestLoadPipfile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadPipfile(afero.NewMemMapFs(), "/nowhere")
	if !errors.Is(err, ErrNoPipfile) {
		t.Errorf("LoadPipfile() error = %v, want ErrNoPipfile", err)
	}
}

func TestParsePipfile_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParsePipfile([]byte("[requires\npython_version = 3.8"), "Pipfile")
	if err == nil {
		t.Fatal("ParsePipfile() should fail on malformed TOML")
	}
	if !strings.Contains(err.Error(), "Pipfile") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestPipfile_PythonVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		requires Requires
		want     string
	}{
		{"none", Requires{}, ""},
		{"short only", Requires{PythonVersion: "3.11"}, "3.11"},
		{"full wins", Requires{PythonVersion: "3.11", PythonFullVersion: "3.11.4"}, "3.11.4"},
		{"whitespace trimmed", Requires{PythonVersion: " 3.9 "}, "3.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Pipfile{Requires: tt.requires}
			if got := p.PythonVersion(); got != tt.want {
				t.Errorf("PythonVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInProjectVenv(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if InProjectVenv(fsys, "/proj") {
		t.Error("InProjectVenv() = true for a project without .venv")
	}

	if err := afero.WriteFile(fsys, filepath.Join("/file-proj", VenvDirName), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if InProjectVenv(fsys, "/file-proj") {
		t.Error("InProjectVenv() = true when .venv is a file")
	}

	if err := fsys.MkdirAll(filepath.Join("/proj", VenvDirName, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !InProjectVenv(fsys, "/proj") {
		t.Error("InProjectVenv() = false with a .venv directory")
	}
}
