package analysis

import (
	"context"
	"time"
)

// TimingPolicy controls how long the model warm-up phases pause. The
// production policy uses fixed durations; tests plug in ZeroTiming.
type TimingPolicy interface {
	Warmup(ctx context.Context, phase int) error
}

// FixedTiming pauses for a fixed duration per warm-up phase.
type FixedTiming struct {
	Primary   time.Duration
	Secondary time.Duration
}

// DefaultTiming is the production warm-up schedule.
func DefaultTiming() FixedTiming {
	return FixedTiming{
		Primary:   800 * time.Millisecond,
		Secondary: 600 * time.Millisecond,
	}
}

func (t FixedTiming) Warmup(ctx context.Context, phase int) error {
	d := t.Primary
	if phase > 0 {
		d = t.Secondary
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ZeroTiming skips the warm-up pauses entirely.
type ZeroTiming struct{}

func (ZeroTiming) Warmup(ctx context.Context, phase int) error {
	return ctx.Err()
}
