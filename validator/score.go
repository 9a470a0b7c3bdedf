package validator

import (
	"context"
	"fmt"
	"math"
)

// SellScorer scores an identity by the value it unstaked
type SellScorer struct {
	events EventFetcher
}

func NewSellScorer(events EventFetcher) *SellScorer {
	return &SellScorer{events: events}
}

// SellValue sums amount*price over the sell events of coldkey at or after startBlock.
// It only fails when ctx is done.
func (s *SellScorer) SellValue(ctx context.Context, coldkey string, startBlock uint64) (float64, error) {
	events := s.events.FetchEvents(ctx, coldkey)
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrScoringFailed, coldkey, err)
	}
	return SellValue(events, startBlock), nil
}

// SellValue is the pure scoring rule. Events with a non-finite value are skipped.
func SellValue(events []DelegationEvent, startBlock uint64) float64 {
	var total float64
	for _, e := range events {
		if e.Action != ActionSell || e.Block < startBlock {
			continue
		}
		v := e.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	return total
}
