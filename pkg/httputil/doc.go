// Package httputil provides HTTP utilities for the registry client.
//
// # Overview
//
//   - [NewHTTPClient]: an http.Client with separate connect and read timeouts
//   - [Backoff]: bounded retry with exponential backoff
//
// # Timeouts
//
// [NewHTTPClient] bounds connection establishment (dial and TLS handshake)
// by the connect timeout, and the wait for response headers by the read
// timeout. One client serves both http and https URLs and should be
// shared by every request of a run.
//
// # Retry
//
// [Backoff.Do] only repeats an operation whose error is wrapped in
// [RetryableError]. Registry clients wrap the server-side statuses they
// consider transient and return everything else unwrapped, so 4xx
// responses and transport faults fail on the first attempt. With a
// Logger set, each retry is logged at debug level:
//
//	b := httputil.Backoff{Attempts: 3, Delay: 500 * time.Millisecond, Logger: logger}
//	err := b.Do(ctx, url, func(attempt int) error {
//	    return client.Get(ctx, url, &data)
//	})
package httputil
