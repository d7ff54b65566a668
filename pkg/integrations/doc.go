// Package integrations provides the shared HTTP layer for package registry
// APIs.
//
// # Overview
//
// Registry-specific clients live in subpackages:
//
//   - [pypi]: Python Package Index
//
// They embed [Client], which performs JSON GET requests with default
// headers and maps HTTP status codes onto the sentinel errors of this
// package:
//
//   - 200: success, body decoded as JSON
//   - 404, 410: [ErrNotFound]
//   - other 4xx: [ErrRejected]
//   - 500, 502, 504: [ErrNetwork] wrapped in [httputil.RetryableError]
//   - other 5xx and transport failures: [ErrNetwork]
//
// Retrying is left to the registry client, which decides how many
// attempts a lookup deserves with [httputil.Backoff].
//
// [pypi]: github.com/matzehuels/pinbump/pkg/integrations/pypi
// [httputil.RetryableError]: github.com/matzehuels/pinbump/pkg/httputil.RetryableError
// [httputil.Backoff]: github.com/matzehuels/pinbump/pkg/httputil.Backoff
package integrations
