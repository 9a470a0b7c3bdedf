package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/unstaker/validator"
	"github.com/screwyprof/unstaker/web/status"
)

func TestReportsFindWeights(t *testing.T) {
	t.Parallel()

	t.Run("it fails before any cycle completed", func(t *testing.T) {
		t.Parallel()

		// Arrange
		reports := status.NewReports()

		// Act
		_, err := reports.FindWeights(t.Context(), criteria(t, "", 1, 10))

		// Assert
		require.ErrorIs(t, err, status.ErrNoReport)
	})

	t.Run("it pages through slots in order", func(t *testing.T) {
		t.Parallel()

		// Arrange
		reports := reportsWith(cycleReport("A", "B", "A", "C", "B"))

		// Act
		first, err := reports.FindWeights(t.Context(), criteria(t, "", 1, 2))
		require.NoError(t, err)
		last, err := reports.FindWeights(t.Context(), criteria(t, "", 3, 2))
		require.NoError(t, err)

		// Assert
		assert.Equal(t, []uint16{0, 1}, uids(first.Slots))
		assert.True(t, first.HasNext())
		assert.False(t, first.HasPrevious())

		assert.Equal(t, []uint16{4}, uids(last.Slots))
		assert.False(t, last.HasNext())
		assert.True(t, last.HasPrevious())
	})

	t.Run("it filters slots by coldkey", func(t *testing.T) {
		t.Parallel()

		// Arrange
		reports := reportsWith(cycleReport("A", "B", "A", "C", "B"))

		// Act
		page, err := reports.FindWeights(t.Context(), criteria(t, "A", 1, 10))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []uint16{0, 2}, uids(page.Slots))
		assert.False(t, page.HasNext())
	})

	t.Run("it returns an empty page past the end", func(t *testing.T) {
		t.Parallel()

		// Arrange
		reports := reportsWith(cycleReport("A", "B"))

		// Act
		page, err := reports.FindWeights(t.Context(), criteria(t, "", ^uint64(0), 10))

		// Assert
		require.NoError(t, err)
		assert.Empty(t, page.Slots)
		assert.False(t, page.HasNext())
	})

	t.Run("it serves the most recently published report", func(t *testing.T) {
		t.Parallel()

		// Arrange
		reports := reportsWith(cycleReport("A"))
		newer := cycleReport("B", "C")
		newer.Block = 2000
		reports.Publish(newer)

		// Act
		page, err := reports.FindWeights(t.Context(), criteria(t, "", 1, 10))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(2000), page.Cycle.Block)
		assert.Len(t, page.Slots, 2)
		assert.Nil(t, page.Cycle.Slots)
	})
}

func TestNewWeightsCriteria(t *testing.T) {
	t.Parallel()

	t.Run("it applies defaults", func(t *testing.T) {
		t.Parallel()

		// Act
		c, err := status.NewWeightsCriteria("", 0, 0)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, status.Page(status.DefaultPage), c.Page)
		assert.Equal(t, status.PerPage(status.DefaultPerPage), c.Size)
		assert.Zero(t, c.ItemsToSkip())
	})

	t.Run("it rejects oversized pages", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := status.NewWeightsCriteria("", 1, status.MaxPerPage+1)

		// Assert
		require.ErrorIs(t, err, status.ErrInvalidPerPage)
		require.ErrorIs(t, err, status.ErrPerPageTooLarge)
	})

	t.Run("it skips previous pages", func(t *testing.T) {
		t.Parallel()

		// Act
		c, err := status.NewWeightsCriteria("", 3, 20)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(40), c.ItemsToSkip())
	})
}

// Test helpers

func criteria(t *testing.T, coldkey string, page, perPage uint64) status.WeightsCriteria {
	t.Helper()
	c, err := status.NewWeightsCriteria(coldkey, page, perPage)
	require.NoError(t, err)
	return c
}

func cycleReport(coldkeys ...string) validator.CycleReport {
	slots := make([]validator.SlotWeight, len(coldkeys))
	for i, ck := range coldkeys {
		slots[i] = validator.SlotWeight{UID: uint16(i), Coldkey: ck, Weight: 1 / float64(len(coldkeys))}
	}
	return validator.CycleReport{
		Netuid:     18,
		Block:      1358,
		StartBlock: 1000,
		Tempo:      360,
		Slots:      slots,
		Submitted:  true,
	}
}

func reportsWith(report validator.CycleReport) *status.Reports {
	reports := status.NewReports()
	reports.Publish(report)
	return reports
}

func uids(slots []validator.SlotWeight) []uint16 {
	ids := make([]uint16, len(slots))
	for i, s := range slots {
		ids[i] = s.UID
	}
	return ids
}
