// Package project resolves the directory pinbump operates on.
//
// The target must be the working directory or one of its descendants. Any
// other location is rejected with a PATH_ESCAPE error whose exit code is
// [errors.ExitPathEscape].
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pinbump/pkg/errors"
)

// Resolve returns the absolute, cleaned directory named by subdir, which is
// interpreted relative to cwd unless it is absolute. An empty subdir means
// cwd itself. Symbolic links are evaluated for paths that exist, so a link
// pointing outside cwd is rejected.
func Resolve(cwd, subdir string) (string, error) {
	if subdir == "" {
		subdir = "."
	}

	base, err := filepath.Abs(cwd)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", cwd)
	}
	base = evalIfExists(base)

	dir := subdir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	dir = evalIfExists(filepath.Clean(dir))

	if !within(base, dir) {
		return "", errors.New(errors.ErrCodePathEscape, "%s is not a subdirectory of %s", subdir, base).
			WithExitCode(errors.ExitPathEscape)
	}
	return dir, nil
}

// Exists reports whether path names an existing regular file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Rel renders path relative to base for display. It falls back to path
// when no relative form exists.
func Rel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

func evalIfExists(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func within(base, dir string) bool {
	if dir == base {
		return true
	}
	rel, err := filepath.Rel(base, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
