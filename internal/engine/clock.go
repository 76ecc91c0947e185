package engine

import (
	"context"
	"time"

	"maker_go/pkg/quant"
)

// Clock abstracts time for the controller loop so the same decision logic
// runs under a real timer or a test-driven one.
type Clock interface {
	Now() quant.TimeStamp
	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the production Clock.
type WallClock struct{}

func (WallClock) Now() quant.TimeStamp {
	return quant.Now()
}

func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
