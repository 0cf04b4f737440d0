package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled spaces out calls to a provider
type Throttled struct {
	Provider
	limiter *rate.Limiter
}

// Throttle wraps p so that at most perSecond requests start each second
func Throttle(p Provider, perSecond float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Throttled{
		Provider: p,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

func (t *Throttled) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.Provider.Generate(ctx, req)
}
