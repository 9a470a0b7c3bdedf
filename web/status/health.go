package status

import (
	"context"
	"time"
)

// Health is the liveness view of the controller
type Health struct {
	Block          uint64
	ObservedAt     time.Time // zero until the first block is seen
	LastCycleBlock uint64
	LastSubmitted  bool
}

// Live reports whether a block was observed within maxAge of now
func (h Health) Live(now time.Time, maxAge time.Duration) bool {
	return !h.ObservedAt.IsZero() && now.Sub(h.ObservedAt) <= maxAge
}

// HealthReader serves the controller health
type HealthReader interface {
	Health(ctx context.Context) Health
}
