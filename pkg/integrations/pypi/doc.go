// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Overview
//
// The client answers one question: what is the latest version of a
// package? It reads the info.version field of
// https://pypi.org/pypi/{name}/json.
//
// # Usage
//
//	client := pypi.NewClient(pypi.Options{})
//	version, ok, err := client.LatestVersion(ctx, "build")
//	if err != nil {
//	    return err // network failure after retries
//	}
//	if !ok {
//	    // unknown package or no version published
//	}
//
// # Caching
//
// Results are memoized in the client for its whole lifetime, keyed by the
// PEP 503 normalized name, so "Foo_Bar" and "foo-bar" share one request.
// Absence is memoized as well; errors are not.
//
// # Retries
//
// 500, 502 and 504 responses are retried with exponential backoff. Other
// statuses and transport failures are not retried.
package pypi
