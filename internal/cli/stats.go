package cli

import (
	"context"
	"time"

	"github.com/matzehuels/pinbump/pkg/observability"
)

// runStats counts index traffic for the end-of-run log line.
type runStats struct {
	observability.NoopHTTPHooks
	observability.NoopCacheHooks

	requests int
	failures int
	cached   int
}

func (s *runStats) OnRequest(context.Context, string, string, string) { s.requests++ }

func (s *runStats) OnError(context.Context, string, string, string, error) { s.failures++ }

func (s *runStats) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	if status >= 500 {
		s.failures++
	}
}

func (s *runStats) OnCacheHit(context.Context, string) { s.cached++ }

// register installs s as the global hooks and returns a function that
// restores the defaults.
func (s *runStats) register() func() {
	observability.SetHTTPHooks(s)
	observability.SetCacheHooks(s)
	return observability.Reset
}
