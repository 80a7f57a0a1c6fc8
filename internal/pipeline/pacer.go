package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates article fetches. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer returns a minimum-interval gate: at most one article fetch starts
// per interval. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
