package manifest

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinbump/pkg/bump"
	pberrors "github.com/matzehuels/pinbump/pkg/errors"
)

// File names handled by the updaters in this package.
const (
	PyprojectFile = "pyproject.toml"
	ToxFile       = "tox.ini"
)

// Updater bumps the requirements of one kind of configuration file.
type Updater interface {
	// Filename returns the base name of the file the updater handles.
	Filename() string
	// Update processes dir/Filename() and returns what happened to each
	// requirement.
	Update(ctx context.Context, dir string, b *bump.Bumper) (*Report, error)
}

// Options controls how updaters report progress and persist changes.
type Options struct {
	DryRun    bool              // Decide and report, but never write
	OnSection func(name string) // Called before the requirements of each dependency group
	Logger    *log.Logger       // Debug output (default: log.Default())
}

func (o Options) section(name string) {
	if o.OnSection != nil {
		o.OnSection(name)
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Updaters returns the updaters in the order they run: pyproject.toml
// first, then tox.ini.
func Updaters(opts Options) []Updater {
	return []Updater{
		&Pyproject{Options: opts},
		&Tox{Options: opts},
	}
}

// Report summarizes one file update.
type Report struct {
	Path    string        // Absolute path of the file
	Skipped bool          // File does not exist
	Changed bool          // At least one requirement was rewritten
	Written bool          // The new content was persisted
	Results []bump.Result // One per requirement, in file order
}

// Tally counts results: bumped requirements, requirements already at the
// latest version, and everything that could not be bumped.
func (r *Report) Tally() (bumped, current, skipped int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case bump.Bumped:
			bumped++
		case bump.Current:
			current++
		default:
			skipped++
		}
	}
	return bumped, current, skipped
}

// commit records whether updated differs from original and, unless this is
// a dry run, writes it to path.
func (o Options) commit(path string, original, updated []byte, report *Report) error {
	report.Changed = !bytes.Equal(original, updated)
	if !report.Changed {
		o.logger().Debug("no changes", "file", path)
		return nil
	}
	if o.DryRun {
		o.logger().Debug("dry run, not writing", "file", path)
		return nil
	}
	if err := writeFile(path, updated); err != nil {
		return err
	}
	report.Written = true
	o.logger().Debug("wrote file", "file", path, "bytes", len(updated))
	return nil
}

// writeFile replaces path with data through a temporary file in the same
// directory, keeping the original permission bits.
func writeFile(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return pberrors.Wrap(pberrors.ErrCodeFileWrite, err, "write %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return pberrors.Wrap(pberrors.ErrCodeFileWrite, err, "write %s", path)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return pberrors.Wrap(pberrors.ErrCodeFileWrite, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeFileWrite, err, "write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeFileWrite, err, "write %s", path)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeFileRead, err, "read %s", path)
	}
	return data, nil
}
