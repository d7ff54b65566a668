package httputil

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client whose dial and TLS handshake are
// bounded by connect and whose wait for response headers is bounded by read.
// A zero duration leaves the corresponding phase unbounded.
func NewHTTPClient(connect, read time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = connect
	transport.ResponseHeaderTimeout = read

	return &http.Client{Transport: transport}
}
