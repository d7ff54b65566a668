// Package config resolves pinbump settings from command-line flags,
// PINBUMP_* environment variables and built-in defaults, in that order of
// precedence.
package config

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/pinbump/pkg/errors"
	"github.com/matzehuels/pinbump/pkg/integrations/pypi"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PINBUMP"

// Setting keys. Each is also a flag name, and maps to an environment
// variable by upper-casing, replacing '-' with '_' and adding EnvPrefix,
// e.g. PINBUMP_INDEX_URL.
const (
	KeyIndexURL       = "index-url"
	KeyConnectTimeout = "connect-timeout"
	KeyReadTimeout    = "read-timeout"
	KeyRetries        = "retries"
	KeyRetryDelay     = "retry-delay"
	KeyDryRun         = "dry-run"
	KeyVerbose        = "verbose"
)

// Config holds the settings for one run.
type Config struct {
	IndexURL       string        `mapstructure:"index-url"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	Retries        int           `mapstructure:"retries"`
	RetryDelay     time.Duration `mapstructure:"retry-delay"`
	DryRun         bool          `mapstructure:"dry-run"`
	Verbose        bool          `mapstructure:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		IndexURL:       pypi.DefaultBaseURL,
		ConnectTimeout: pypi.DefaultConnectTimeout,
		ReadTimeout:    pypi.DefaultReadTimeout,
		Retries:        pypi.DefaultAttempts,
		RetryDelay:     pypi.DefaultRetryDelay,
	}
}

// RegisterFlags defines the pinbump flags on fs. The retry delay has no
// flag; it is set through PINBUMP_RETRY_DELAY only.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyIndexURL, d.IndexURL, "package index JSON API root")
	fs.Duration(KeyConnectTimeout, d.ConnectTimeout, "connection timeout for index requests")
	fs.Duration(KeyReadTimeout, d.ReadTimeout, "read timeout for index requests")
	fs.Int(KeyRetries, d.Retries, "attempts per index request on 500/502/504")
	fs.Bool(KeyDryRun, false, "report changes without writing files")
	fs.BoolP(KeyVerbose, "v", false, "enable verbose logging")
}

// Load resolves settings from fs (when non-nil), the environment and the
// defaults, then validates them.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault(KeyIndexURL, d.IndexURL)
	v.SetDefault(KeyConnectTimeout, d.ConnectTimeout)
	v.SetDefault(KeyReadTimeout, d.ReadTimeout)
	v.SetDefault(KeyRetries, d.Retries)
	v.SetDefault(KeyRetryDelay, d.RetryDelay)
	v.SetDefault(KeyDryRun, d.DryRun)
	v.SetDefault(KeyVerbose, d.Verbose)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "bind flags")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode settings")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.IndexURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid %s", KeyIndexURL)
	}
	if c.ConnectTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %s", KeyConnectTimeout, c.ConnectTimeout)
	}
	if c.ReadTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %s", KeyReadTimeout, c.ReadTimeout)
	}
	if c.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be at least 1, got %d", KeyRetries, c.Retries)
	}
	if c.RetryDelay <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %s", KeyRetryDelay, c.RetryDelay)
	}
	return nil
}

func decodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
}
