package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinbump/pkg/errors"
)

// fakeIndex serves /{name}/json for the given versions and 404 otherwise.
func fakeIndex(t *testing.T, versions map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/json")
		v, ok := versions[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"info": map[string]any{"version": v}})
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, indexURL string, args ...string) runResult {
	t.Helper()
	t.Setenv("PINBUMP_RETRY_DELAY", "1ms")

	var stdout, stderr bytes.Buffer
	c := New(&stdout, &stderr, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--index-url", indexURL}, args...))
	err := root.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("output missing %q\n--- output ---\n%s", w, output)
		}
	}
}

func TestRootCommand_Update(t *testing.T) {
	server, hits := fakeIndex(t, map[string]string{
		"build":  "1.0.6",
		"foo":    "1.5.0",
		"pytest": "8.0.0",
	})
	dir := t.TempDir()
	t.Chdir(dir)
	writeFiles(t, dir, map[string]string{
		"pyproject.toml": "[build-system]\nrequires = [\"build==1.0.5\", \"foo>=1.0,<2.0\"]\n",
		"tox.ini":        "[testenv]\ndeps =\n    pytest==8.0.0\n    Build==1.0.5\n    nosuch==1.0\n",
	})

	res := execute(t, server.URL)
	if res.err != nil {
		t.Fatalf("execute: %v\nstderr: %s", res.err, res.stderr)
	}

	assertContains(t, res.stdout,
		"Evaluating",
		"pyproject.toml",
		" build-system.requires",
		"↑ build from 1.0.5 to 1.0.6",
		"𐄂 foo>=1.0,<2.0; requires exactly one specifier (latest: 1.5.0)",
		"1 bumped, 0 unchanged, 1 skipped",
		"tox.ini",
		" testenv",
		"✓ pytest==8.0.0 is already the latest version",
		"↑ Build from 1.0.5 to 1.0.6",
		"𐄂 nosuch==1.0; cannot determine latest version",
		"1 bumped, 1 unchanged, 1 skipped",
	)
	assertContains(t, res.stderr, "Checked 5 requirements: 4 index requests, 1 cached")

	if got, want := readFile(t, filepath.Join(dir, "pyproject.toml")), "[build-system]\nrequires = [\"build==1.0.6\", \"foo>=1.0,<2.0\"]\n"; got != want {
		t.Errorf("pyproject.toml = %q, want %q", got, want)
	}
	if got, want := readFile(t, filepath.Join(dir, "tox.ini")), "[testenv]\ndeps =\n    pytest==8.0.0\n    Build==1.0.6\n    nosuch==1.0\n"; got != want {
		t.Errorf("tox.ini = %q, want %q", got, want)
	}
	// build and Build share one lookup.
	if hits.Load() != 4 {
		t.Errorf("index hits = %d, want 4", hits.Load())
	}
}

func TestRootCommand_Subdirectory(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"build": "1.0.6"})
	dir := t.TempDir()
	t.Chdir(dir)
	writeFiles(t, dir, map[string]string{
		"pkg/pyproject.toml": "[build-system]\nrequires = ['build==1.0.6']\n",
	})

	res := execute(t, server.URL, "pkg")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	assertContains(t, res.stdout,
		filepath.Join("pkg", "pyproject.toml"),
		"✓ build==1.0.6 is already the latest version",
		"Skipping "+filepath.Join("pkg", "tox.ini")+"; not found",
	)
}

func TestRootCommand_MissingFiles(t *testing.T) {
	server, hits := fakeIndex(t, nil)
	t.Chdir(t.TempDir())

	res := execute(t, server.URL)
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	assertContains(t, res.stdout, "Skipping pyproject.toml; not found", "Skipping tox.ini; not found")
	if hits.Load() != 0 {
		t.Errorf("index hits = %d, want 0", hits.Load())
	}
}

func TestRootCommand_PathEscape(t *testing.T) {
	server, hits := fakeIndex(t, nil)
	root := t.TempDir()
	work := filepath.Join(root, "work")
	writeFiles(t, root, map[string]string{"pyproject.toml": "[build-system]\nrequires = ['build==1.0.5']\n", "work/.keep": ""})
	t.Chdir(work)

	res := execute(t, server.URL, "..")
	if !errors.Is(res.err, errors.ErrCodePathEscape) {
		t.Fatalf("err = %v, want %s", res.err, errors.ErrCodePathEscape)
	}
	if code := errors.ExitCode(res.err); code != errors.ExitPathEscape {
		t.Errorf("ExitCode = %d, want %d", code, errors.ExitPathEscape)
	}
	if !strings.Contains(errors.UserMessage(res.err), "is not a subdirectory of") {
		t.Errorf("message = %q", errors.UserMessage(res.err))
	}
	if strings.Contains(res.stdout, "Evaluating") {
		t.Errorf("stdout = %q, want nothing before validation", res.stdout)
	}
	if hits.Load() != 0 {
		t.Errorf("index hits = %d, want 0", hits.Load())
	}
}

func TestRootCommand_DryRun(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"build": "1.0.6"})
	dir := t.TempDir()
	t.Chdir(dir)
	input := "[build-system]\nrequires = [\"build==1.0.5\"]\n"
	writeFiles(t, dir, map[string]string{"pyproject.toml": input})

	res := execute(t, server.URL, "--dry-run")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	assertContains(t, res.stdout, "↑ build from 1.0.5 to 1.0.6", "(dry run, not written)")
	if got := readFile(t, filepath.Join(dir, "pyproject.toml")); got != input {
		t.Errorf("dry run wrote pyproject.toml: %q", got)
	}
}

func TestRootCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
		code  errors.Code
	}{
		{
			name:  "invalid toml",
			files: map[string]string{"pyproject.toml": "[build-system\n"},
			code:  errors.ErrCodeInvalidManifest,
		},
		{
			name:  "invalid ini",
			files: map[string]string{"tox.ini": "[testenv\ndeps = x\n"},
			code:  errors.ErrCodeInvalidManifest,
		},
		{
			name:  "bad retries",
			args:  []string{"--retries", "0"},
			code:  errors.ErrCodeInvalidConfig,
		},
		{
			name:  "index failure",
			files: map[string]string{"tox.ini": "[testenv]\ndeps = broken==1.0\n"},
			code:  errors.ErrCodeNetwork,
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			writeFiles(t, dir, tt.files)

			res := execute(t, server.URL, tt.args...)
			if !errors.Is(res.err, tt.code) {
				t.Fatalf("err = %v, want %s", res.err, tt.code)
			}
			if code := errors.ExitCode(res.err); code != errors.ExitFailure {
				t.Errorf("ExitCode = %d, want %d", code, errors.ExitFailure)
			}
		})
	}
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	t.Chdir(t.TempDir())
	res := execute(t, "https://pypi.org/pypi", "a", "b")
	if res.err == nil {
		t.Fatal("expected error for two positional arguments")
	}
}

func TestRootCommand_Verbose(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"build": "1.0.6"})
	dir := t.TempDir()
	t.Chdir(dir)
	writeFiles(t, dir, map[string]string{"pyproject.toml": "[build-system]\nrequires = [\"build==1.0.5\"]\n"})

	res := execute(t, server.URL, "-v")
	if res.err != nil {
		t.Fatalf("execute: %v", res.err)
	}
	assertContains(t, res.stderr, "fetching package metadata", "wrote file")
}
