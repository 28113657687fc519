package synth

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited spaces calls to the wrapped Synthesizer with a token bucket.
type RateLimited struct {
	next    Synthesizer
	limiter *rate.Limiter
}

// NewRateLimited allows rpm requests per minute with the given burst. A
// non-positive rpm disables limiting.
func NewRateLimited(next Synthesizer, rpm, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}

	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Limit(float64(rpm) / 60.0)
	}

	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// Synthesize waits for a token, then delegates. A cancelled context stops the
// wait.
func (r *RateLimited) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	err := r.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return r.next.Synthesize(ctx, req)
}
