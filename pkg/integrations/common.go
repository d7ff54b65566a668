package integrations

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrRejected is returned for client errors other than not found (4xx).
	ErrRejected = errors.New("request rejected")

	// ErrNetwork is returned for HTTP failures (connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

var nameSeparatorRE = regexp.MustCompile(`[-_.]+`)

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and collapses runs of '-', '_' and '.' into a single
// hyphen, following PEP 503 normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	return nameSeparatorRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
