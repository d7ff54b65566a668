package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinbump/pkg/buildinfo"
	pberrors "github.com/matzehuels/pinbump/pkg/errors"
	"github.com/matzehuels/pinbump/pkg/httputil"
	"github.com/matzehuels/pinbump/pkg/integrations"
	"github.com/matzehuels/pinbump/pkg/observability"
)

// Defaults applied by [NewClient] for zero-valued [Options] fields.
const (
	DefaultBaseURL        = "https://pypi.org/pypi"
	DefaultConnectTimeout = 3100 * time.Millisecond
	DefaultReadTimeout    = 30 * time.Second
	DefaultAttempts       = 3
	DefaultRetryDelay     = 500 * time.Millisecond
)

// Options configures a [Client].
type Options struct {
	BaseURL        string        // Index API root (default: https://pypi.org/pypi)
	ConnectTimeout time.Duration // Dial and TLS handshake bound (default: 3.1s)
	ReadTimeout    time.Duration // Response header bound (default: 30s)
	Attempts       int           // Total attempts for 500/502/504 (default: 3)
	RetryDelay     time.Duration // Initial backoff, doubled per retry (default: 500ms)
	Logger         *log.Logger   // Debug output (default: log.Default())
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Client looks up the latest published version of PyPI packages.
//
// A Client is not safe for concurrent use; pinbump performs lookups
// strictly one at a time.
type Client struct {
	*integrations.Client
	baseURL    string
	attempts   int
	retryDelay time.Duration
	logger     *log.Logger
	versions   map[string]lookup
	requests   int
}

type lookup struct {
	version string
	ok      bool
}

// NewClient creates a PyPI client. One underlying http.Client is shared by
// every lookup made through the returned Client.
func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		Client: integrations.NewClient(
			httputil.NewHTTPClient(opts.ConnectTimeout, opts.ReadTimeout),
			map[string]string{"User-Agent": "pinbump/" + buildinfo.Version},
		),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
		versions:   make(map[string]lookup),
	}
}

// LatestVersion returns the latest version PyPI reports for name.
//
// Returns:
//   - (version, true, nil) when the registry reports a version
//   - ("", false, nil) when the package is unknown (any 4xx), the
//     response has no info.version field, or the name cannot be put in a
//     request URL
//   - ("", false, err) for exhausted retries, other 5xx
//     statuses, transport failures and undecodable bodies
//
// Each normalized name is fetched at most once per Client.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, bool, error) {
	key := integrations.NormalizePkgName(strings.TrimSpace(name))
	if err := pberrors.ValidatePythonPackageName(key); err != nil {
		c.logger.Debug("not looking up package", "package", name, "reason", pberrors.UserMessage(err))
		return "", false, nil
	}

	if hit, ok := c.versions[key]; ok {
		c.logger.Debug("version cache hit", "package", key, "version", hit.version)
		observability.Cache().OnCacheHit(ctx, key)
		return hit.version, hit.ok, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	version, ok, err := c.fetch(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.versions[key] = lookup{version: version, ok: ok}
	return version, ok, nil
}

// Requests returns the number of HTTP requests issued so far, retries
// included.
func (c *Client) Requests() int { return c.requests }

func (c *Client) fetch(ctx context.Context, pkg string) (string, bool, error) {
	endpoint := fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(pkg))

	var data apiResponse
	backoff := httputil.Backoff{Attempts: c.attempts, Delay: c.retryDelay, Logger: c.logger}
	err := backoff.Do(ctx, endpoint, func(attempt int) error {
		c.requests++
		c.logger.Debug("fetching package metadata", "url", endpoint, "attempt", attempt)
		data = apiResponse{}
		return c.Get(ctx, endpoint, &data)
	})

	switch {
	case errors.Is(err, integrations.ErrNotFound), errors.Is(err, integrations.ErrRejected):
		c.logger.Debug("package not available", "package", pkg, "reason", err)
		return "", false, nil
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return "", false, pberrors.Wrap(pberrors.ErrCodeNetwork, err, "fetch %s", endpoint)
	}

	if data.Info == nil || data.Info.Version == nil || *data.Info.Version == "" {
		c.logger.Debug("response has no info.version", "package", pkg)
		return "", false, nil
	}
	return *data.Info.Version, true, nil
}

type apiResponse struct {
	Info *apiInfo `json:"info"`
}

type apiInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version"`
}
