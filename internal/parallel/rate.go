package parallel

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimiterKey struct{}

// WithRateLimiter stashes a rate limiter on ctx for WaitRateLimit to find.
// cmd/lshbench uses this to throttle per-document tokenization before work
// reaches the worker pool, without threading a limiter parameter through
// every call in the chain.
func WithRateLimiter(ctx context.Context, limiter *rate.Limiter) context.Context {
	return context.WithValue(ctx, rateLimiterKey{}, limiter)
}

// WaitRateLimit blocks until ctx's rate limiter (if any) admits one more
// event, or returns early if ctx is canceled. A context with no limiter
// stashed is a no-op.
func WaitRateLimit(ctx context.Context) error {
	limiter, ok := ctx.Value(rateLimiterKey{}).(*rate.Limiter)
	if !ok || limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
