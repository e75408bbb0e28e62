// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"vfsinfo-cli/internal/config"
	"vfsinfo-cli/internal/shellenv"
	"vfsinfo-cli/internal/testutil"
	"vfsinfo-cli/pkg/platform"
	"vfsinfo-cli/pkg/types"

	"github.com/spf13/afero"
)

// fakePipenv records how it was invoked into $RECORD_DIR and exits with
// $FAKE_EXIT.
const fakePipenv = `#!/bin/sh
pwd -P > "$RECORD_DIR/cwd"
: > "$RECORD_DIR/argv"
for a in "$@"; do
  printf '%s\n' "$a" >> "$RECORD_DIR/argv"
done
printf '%s' "$PYTHONPATH" > "$RECORD_DIR/pythonpath"
printf '%s' "$PIPENV_VENV_IN_PROJECT" > "$RECORD_DIR/venv"
printf '%s' "$PYENV_ROOT" > "$RECORD_DIR/root"
exit "${FAKE_EXIT:-0}"
`

type fixture struct {
	root     string
	toolDir  string
	exe      string
	record   string
	opts     Options
	settings string
}

// newFixture lays out a tool directory containing the launcher binary and a
// pyenv root whose bin directory holds the fake pipenv.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping test that spawns processes in short mode")
	}
	if runtime.GOOS == platform.Windows {
		t.Skip("fake pipenv is a POSIX shell script")
	}

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		root:     root,
		toolDir:  filepath.Join(root, "tools", "vfsinfo"),
		record:   filepath.Join(root, "record"),
		settings: filepath.Join(root, "home", "my_settings", "settings.json"),
	}
	f.exe = filepath.Join(f.toolDir, "vfsinfo")

	testutil.MustMkdirAll(t, f.record, 0o755)
	testutil.WriteExecutable(t, f.exe, "#!/bin/sh\n")

	pyenvRoot := filepath.Join(root, "pyenv")
	testutil.WriteExecutable(t, filepath.Join(pyenvRoot, "bin", "pipenv"), fakePipenv)

	f.opts = Options{
		VersionManagerRoot: pyenvRoot,
		Interpreter:        "python",
		ToolCommand:        "pipenv",
		VenvInProject:      true,
		Script:             "vfsinfo.py",
		SettingsFile:       f.settings,
	}
	return f
}

func (f *fixture) launcher(stdout *bytes.Buffer, host ...string) *Launcher {
	host = append(host, f.hostPath(), "RECORD_DIR="+f.record)
	return New(f.opts,
		WithEnviron(environ(host...)),
		WithExecutable(func() (string, error) { return f.exe, nil }),
		WithStdio(nil, stdout, &bytes.Buffer{}),
	)
}

// hostPath keeps any pipenv installed on the machine out of reach; the fake
// only needs shell builtins.
func (f *fixture) hostPath() string {
	return "PATH=" + filepath.Join(f.root, "nobin")
}

func (f *fixture) recorded(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.record, name))
	if err != nil {
		t.Fatalf("child did not record %s: %v", name, err)
	}
	return string(data)
}

func (f *fixture) recordedArgv(t *testing.T) []string {
	t.Helper()
	return strings.Split(strings.TrimSuffix(f.recorded(t, "argv"), "\n"), "\n")
}

func TestRun_ForwardsArgumentsAndSetting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var stdout bytes.Buffer
	l := f.launcher(&stdout)

	result := l.Run(context.Background(), []string{"list", "--path", "/data"})
	if result.Err != nil {
		t.Fatalf("Run() error = %v", result.Err)
	}
	if result.ExitCode != types.ExitSuccess || result.State != StateSuccess || l.State() != StateSuccess {
		t.Errorf("Run() = %+v, want success", result)
	}

	want := []string{"run", "python", "vfsinfo.py", "list", "--path", "/data", "--setting", f.settings}
	if got := f.recordedArgv(t); !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
	if got := strings.TrimSpace(f.recorded(t, "cwd")); got != f.toolDir {
		t.Errorf("cwd = %q, want %q", got, f.toolDir)
	}
	if got := f.recorded(t, "pythonpath"); got != filepath.Join(f.root, "tools") {
		t.Errorf("PYTHONPATH = %q, want %q", got, filepath.Join(f.root, "tools"))
	}
	if got := f.recorded(t, "venv"); got != "1" {
		t.Errorf("PIPENV_VENV_IN_PROJECT = %q, want 1", got)
	}
	if got := f.recorded(t, "root"); got != f.opts.VersionManagerRoot {
		t.Errorf("PYENV_ROOT = %q, want %q", got, f.opts.VersionManagerRoot)
	}
	if stdout.Len() != 0 {
		t.Errorf("successful run should print nothing, got %q", stdout.String())
	}
}

func TestRun_NoArguments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result := f.launcher(&bytes.Buffer{}).Run(context.Background(), nil)
	if result.Err != nil || result.ExitCode != types.ExitSuccess {
		t.Fatalf("Run() = %+v", result)
	}

	want := []string{"run", "python", "vfsinfo.py", "--setting", f.settings}
	if got := f.recordedArgv(t); !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestRun_ArgumentsAreNotReinterpreted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	args := []string{"--setting", "other.json", "two words", "$HOME", "*"}
	result := f.launcher(&bytes.Buffer{}).Run(context.Background(), args)
	if result.Err != nil {
		t.Fatalf("Run() error = %v", result.Err)
	}

	want := append([]string{"run", "python", "vfsinfo.py"}, args...)
	want = append(want, "--setting", f.settings)
	if got := f.recordedArgv(t); !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestRun_PythonPathKeepsPriorValue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result := f.launcher(&bytes.Buffer{}, "PYTHONPATH=/x:/y").Run(context.Background(), nil)
	if result.Err != nil {
		t.Fatalf("Run() error = %v", result.Err)
	}

	got := strings.Split(f.recorded(t, "pythonpath"), ":")
	want := []string{filepath.Join(f.root, "tools"), "/x", "/y"}
	if !slices.Equal(got, want) {
		t.Errorf("PYTHONPATH segments = %q, want %q", got, want)
	}
}

func TestRun_ChildFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var stdout bytes.Buffer
	l := f.launcher(&stdout, "FAKE_EXIT=3")

	result := l.Run(context.Background(), []string{"list"})
	if result.Err != nil {
		t.Fatalf("a failing child is not a launcher error, got %v", result.Err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.State != StateFailure || l.State() != StateFailure {
		t.Errorf("State = %s, want failure", result.State)
	}
	if got := stdout.String(); got != FailureMessage+"\n" {
		t.Errorf("stdout = %q, want %q", got, FailureMessage+"\n")
	}
}

func TestRun_SymlinkedLauncher(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	link := filepath.Join(f.root, "bin", "vfsinfo")
	testutil.MustMkdirAll(t, filepath.Dir(link), 0o755)
	if err := os.Symlink(f.exe, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	l := New(f.opts,
		WithEnviron(environ(f.hostPath(), "RECORD_DIR="+f.record)),
		WithExecutable(func() (string, error) { return link, nil }),
		WithStdio(nil, &bytes.Buffer{}, &bytes.Buffer{}),
	)
	if result := l.Run(context.Background(), nil); result.Err != nil {
		t.Fatalf("Run() error = %v", result.Err)
	}
	if got := strings.TrimSpace(f.recorded(t, "cwd")); got != f.toolDir {
		t.Errorf("cwd = %q, want the symlink target's directory %q", got, f.toolDir)
	}
}

func TestRun_ToolNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.opts.VersionManagerRoot = filepath.Join(f.root, "missing")
	var stdout bytes.Buffer

	result := f.launcher(&stdout).Run(context.Background(), nil)
	if !errors.Is(result.Err, ErrToolNotFound) {
		t.Fatalf("Run() error = %v, want ErrToolNotFound", result.Err)
	}
	if result.ExitCode != types.ExitFailure || result.State != StateFailure {
		t.Errorf("Run() = %+v", result)
	}
	if stdout.Len() != 0 {
		t.Errorf("startup failures must not print the child failure message, got %q", stdout.String())
	}
}

func TestResolveToolDirectory(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(dir, "vfsinfo")
	testutil.MustWriteFile(t, exe, "")

	tests := []struct {
		name       string
		opts       Options
		executable func() (string, error)
		want       string
		wantErr    bool
	}{
		{
			name:       "directory of the executable",
			executable: func() (string, error) { return exe, nil },
			want:       dir,
		},
		{
			name:       "override wins",
			opts:       Options{ToolDir: filepath.Join(dir, "elsewhere")},
			executable: func() (string, error) { return "", errors.New("unused") },
			want:       filepath.Join(dir, "elsewhere"),
		},
		{
			name:       "executable unavailable",
			executable: func() (string, error) { return "", errors.New("no /proc") },
			wantErr:    true,
		},
		{
			name:       "executable deleted",
			executable: func() (string, error) { return filepath.Join(dir, "gone"), nil },
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := New(tt.opts, WithExecutable(tt.executable))
			got, err := l.ResolveToolDirectory()
			if tt.wantErr {
				if !errors.Is(err, ErrToolDirectory) {
					t.Errorf("ResolveToolDirectory() error = %v, want ErrToolDirectory", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveToolDirectory() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveToolDirectory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_ToolDirectoryFailureStopsBeforeEnvironment(t *testing.T) {
	t.Parallel()

	hookCalled := false
	hook := shellenv.HookFunc(func(_ context.Context, base shellenv.EnvMap) (shellenv.EnvMap, error) {
		hookCalled = true
		return base.Clone(), nil
	})

	l := New(Options{}, WithHook(hook), WithExecutable(func() (string, error) {
		return "", errors.New("deleted")
	}))
	result := l.Run(context.Background(), nil)

	if !errors.Is(result.Err, ErrToolDirectory) {
		t.Fatalf("Run() error = %v, want ErrToolDirectory", result.Err)
	}
	if hookCalled {
		t.Error("environment preparation must not start without a tool directory")
	}
	if l.State() != StateFailure {
		t.Errorf("State() = %s, want failure", l.State())
	}
}

func TestDispatch_WorkDir(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/srv/file", nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"/srv/missing", "/srv/file"} {
		l := New(testOptions("/srv"), WithFs(fsys))
		result := l.Dispatch(context.Background(), dir, shellenv.EnvMap{}, nil)
		if !errors.Is(result.Err, ErrWorkDir) {
			t.Errorf("Dispatch(%q) error = %v, want ErrWorkDir", dir, result.Err)
		}
		var wdErr *WorkDirError
		if !errors.As(result.Err, &wdErr) || wdErr.Dir != dir {
			t.Errorf("Dispatch(%q) error = %v, want a WorkDirError naming the directory", dir, result.Err)
		}
		if l.State() == StateDispatched {
			t.Errorf("Dispatch(%q) must not spawn the child", dir)
		}
	}
}

// trappingPipenv exits 0 on SIGINT once it has signalled readiness.
const trappingPipenv = `#!/bin/sh
trap 'exit 0' INT
: > "$RECORD_DIR/ready"
while :; do sleep 0.05; done
`

func TestDispatch_InterruptedChildReportsItsOwnStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pyenvBin := filepath.Join(f.opts.VersionManagerRoot, "bin")
	testutil.WriteExecutable(t, filepath.Join(pyenvBin, "pipenv"), trappingPipenv)

	l := New(f.opts, WithStdio(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}))
	env := shellenv.EnvMap{"PATH": pyenvBin + ":/usr/bin:/bin", "RECORD_DIR": f.record}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ready := filepath.Join(f.record, "ready")
		for {
			if _, err := os.Stat(ready); err == nil {
				cancel()
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}()

	result := l.Dispatch(ctx, f.toolDir, env, nil)
	if result.Err != nil {
		t.Fatalf("Dispatch() error = %v, want the child's clean exit", result.Err)
	}
	if result.ExitCode != types.ExitSuccess || result.State != StateSuccess {
		t.Errorf("Dispatch() = %+v, want exit 0 and success", result)
	}
	if ctx.Err() == nil {
		t.Error("context was never cancelled")
	}
}

func TestSharesTerminal(t *testing.T) {
	t.Parallel()

	file, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = file.Close() })

	tests := []struct {
		name  string
		stdin io.Reader
	}{
		{"regular file", file},
		{"reader", strings.NewReader("")},
		{"nil", nil},
	}
	for _, tt := range tests {
		if sharesTerminal(tt.stdin) {
			t.Errorf("sharesTerminal(%s) = true, want false", tt.name)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Target.ToolDir = "/opt/vfsinfo"
	cfg.Env.InheritDeny = []string{"VIRTUAL_ENV"}

	opts := OptionsFromConfig(cfg)
	if opts.ToolCommand != "pipenv" || opts.Interpreter != "python" || opts.Script != "vfsinfo.py" {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
	if opts.InitHook != config.DefaultInitHook || !opts.VenvInProject {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
	if opts.ToolDir != "/opt/vfsinfo" || !slices.Equal(opts.InheritDeny, []string{"VIRTUAL_ENV"}) {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
}
