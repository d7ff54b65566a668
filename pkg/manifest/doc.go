// Package manifest locates pinned requirements inside project
// configuration files and rewrites them in place.
//
// Two formats are supported:
//
//   - pyproject.toml: the build-system.requires array ([Pyproject])
//   - tox.ini: the deps value of every section ([Tox])
//
// Both document models edit only the bytes of individual requirement
// strings. Comments, whitespace, quoting and key order survive an update,
// and a file whose requirements are all current is not rewritten.
//
// # Updating
//
// Each [Updater] loads its file from a directory, feeds every requirement
// through a [bump.Bumper], and writes the result back atomically:
//
//	b := bump.New(pypiClient, reporter)
//	for _, u := range manifest.Updaters(manifest.Options{}) {
//	    report, err := u.Update(ctx, dir, b)
//	    ...
//	}
//
// A missing file yields a [Report] with Skipped set and no error. Files
// that exist but cannot be parsed fail with an INVALID_MANIFEST error.
package manifest
