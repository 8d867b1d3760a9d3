package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"golang.org/x/time/rate"
)

// RateLimited wraps a WeatherFetcher with a token bucket.
type RateLimited struct {
	fetcher domain.WeatherFetcher
	limiter *rate.Limiter
	metrics *observability.Metrics
}

// NewRateLimited allows rps fetches per second (fractional values are fine)
// with bursts of up to burst.
func NewRateLimited(fetcher domain.WeatherFetcher, rps float64, burst int, metrics *observability.Metrics) *RateLimited {
	return &RateLimited{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metrics,
	}
}

// Fetch waits for a token, then delegates. A cancelled wait returns the
// context error and the wrapped fetcher is not called.
func (r *RateLimited) Fetch(ctx context.Context, locality string) (domain.Weather, error) {
	start := time.Now()
	err := r.limiter.Wait(ctx)
	r.metrics.RateLimitWait.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Weather{}, fmt.Errorf("rate limit wait canceled: %w", ctxErr)
		}
		// Wait also fails when the deadline would expire before a token frees up.
		return domain.Weather{}, fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded)
	}
	return r.fetcher.Fetch(ctx, locality)
}
