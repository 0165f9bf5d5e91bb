package app

import (
	"context"
	"log"
	"time"
)

// DefaultTPS is the tick rate the smoothing factors are tuned for.
const DefaultTPS = 60

// RunHeadless drives Tick from a ticker without opening a window, until ctx
// is cancelled or Stop is called. It is the loop used for server-only runs
// and tests.
func (a *App) RunHeadless(ctx context.Context, tps int) error {
	if tps <= 0 {
		tps = DefaultTPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	log.Printf("Headless loop running at %d ticks/s", tps)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			return nil
		case <-ticker.C:
			a.Tick(ctx, a.Elapsed())
		}
	}
}
