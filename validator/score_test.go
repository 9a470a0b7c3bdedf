package validator_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/unstaker/validator"
)

func TestSellValue(t *testing.T) {
	t.Parallel()

	t.Run("it sums amount times price of sells since the start block", func(t *testing.T) {
		t.Parallel()

		// Arrange
		events := []validator.DelegationEvent{
			sell(100, 2, 0.5),
			sell(150, 4, 0.25),
		}

		// Act
		score := validator.SellValue(events, 100)

		// Assert
		assert.InDelta(t, 2.0, score, 1e-12)
	})

	t.Run("it counts a sell exactly at the start block", func(t *testing.T) {
		t.Parallel()

		// Act
		score := validator.SellValue([]validator.DelegationEvent{sell(100, 3, 1)}, 100)

		// Assert
		assert.InDelta(t, 3.0, score, 1e-12)
	})

	t.Run("it ignores sells before the start block", func(t *testing.T) {
		t.Parallel()

		// Act
		score := validator.SellValue([]validator.DelegationEvent{sell(99, 3, 1)}, 100)

		// Assert
		assert.Zero(t, score)
	})

	t.Run("it ignores buys", func(t *testing.T) {
		t.Parallel()

		// Arrange
		events := []validator.DelegationEvent{
			buy(120, 10, 1),
			sell(120, 1, 1),
		}

		// Act
		score := validator.SellValue(events, 100)

		// Assert
		assert.InDelta(t, 1.0, score, 1e-12)
	})

	t.Run("it scores zero without events", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, validator.SellValue(nil, 0))
	})

	t.Run("it skips non-finite values", func(t *testing.T) {
		t.Parallel()

		// Arrange
		events := []validator.DelegationEvent{
			sell(120, math.Inf(1), 1),
			sell(121, 1, math.NaN()),
			sell(122, 5, 1),
		}

		// Act
		score := validator.SellValue(events, 100)

		// Assert
		assert.InDelta(t, 5.0, score, 1e-12)
	})
}

func TestSellScorer(t *testing.T) {
	t.Parallel()

	t.Run("it scores the events fetched for the identity", func(t *testing.T) {
		t.Parallel()

		// Arrange
		fetcher := stubFetcher{coldkeyA: {sell(200, 2, 2), sell(50, 100, 1)}}
		scorer := validator.NewSellScorer(fetcher)

		// Act
		score, err := scorer.SellValue(t.Context(), coldkeyA, 100)

		// Assert
		require.NoError(t, err)
		assert.InDelta(t, 4.0, score, 1e-12)
	})

	t.Run("it scores zero when the identity has no events", func(t *testing.T) {
		t.Parallel()

		// Arrange
		scorer := validator.NewSellScorer(stubFetcher{})

		// Act
		score, err := scorer.SellValue(t.Context(), coldkeyB, 0)

		// Assert
		require.NoError(t, err)
		assert.Zero(t, score)
	})

	t.Run("it fails when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		// Arrange
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		scorer := validator.NewSellScorer(stubFetcher{coldkeyA: {sell(200, 2, 2)}})

		// Act
		_, err := scorer.SellValue(ctx, coldkeyA, 0)

		// Assert
		require.ErrorIs(t, err, validator.ErrScoringFailed)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

// Test helpers

func sell(block uint64, amount, price float64) validator.DelegationEvent {
	return validator.DelegationEvent{Block: block, Action: validator.ActionSell, Coldkey: coldkeyA, Amount: amount, Price: price}
}

func buy(block uint64, amount, price float64) validator.DelegationEvent {
	return validator.DelegationEvent{Block: block, Action: validator.ActionBuy, Coldkey: coldkeyA, Amount: amount, Price: price}
}

// stubFetcher implements EventFetcher from a fixed map
type stubFetcher map[string][]validator.DelegationEvent

func (s stubFetcher) FetchEvents(_ context.Context, coldkey string) []validator.DelegationEvent {
	return s[coldkey]
}
