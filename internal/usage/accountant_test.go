package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAccumulatesTotals(t *testing.T) {
	a := NewAccountant(0, 7)

	a.Update(100, 50, 0.01)
	a.Update(200, 100, 0.02)

	stats := a.Snapshot()
	assert.Equal(t, 450, stats.TotalTokensUsed)
	assert.Equal(t, 300, stats.TotalInputTokens)
	assert.Equal(t, 150, stats.TotalOutputTokens)
	assert.Equal(t, 2, stats.TotalRequests)
	assert.InDelta(t, 0.03, stats.TotalCost, 1e-9)
	assert.InDelta(t, 225, stats.AvgTokensPerRequest, 1e-9)
	assert.InDelta(t, 0.015, stats.AvgCostPerRequest, 1e-9)
}

func TestSnapshotEmptyAvoidsDivisionByZero(t *testing.T) {
	a := NewAccountant(0, 7)

	stats := a.Snapshot()
	assert.Zero(t, stats.TotalRequests)
	assert.Zero(t, stats.AvgTokensPerRequest)
	assert.Zero(t, stats.AvgCostPerRequest)
}

func TestUpdateBucketsByHourAndDay(t *testing.T) {
	a := NewAccountant(0, 7)
	clock := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	a.Update(100, 50, 0.01)
	a.Update(40, 10, 0.005)

	stats := a.Snapshot()
	bucket, ok := stats.RequestsByHour["2024-07-15 14:00"]
	require.True(t, ok)
	assert.Equal(t, 2, bucket.Requests)
	assert.Equal(t, 200, bucket.Tokens)
	assert.InDelta(t, 0.015, bucket.Cost, 1e-9)

	assert.InDelta(t, 0.015, stats.CostByDay["2024-07-15"], 1e-9)
}

func TestPruneDropsOldDayBuckets(t *testing.T) {
	a := NewAccountant(0, 7)
	clock := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	a.Update(10, 10, 0.001)

	// Eight days later the July 1st bucket is past the 7-day window.
	clock = time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC)
	a.Update(10, 10, 0.002)

	stats := a.Snapshot()
	assert.NotContains(t, stats.CostByDay, "2024-07-01")
	assert.Contains(t, stats.CostByDay, "2024-07-09")

	// Hourly buckets persist when hour retention is disabled.
	assert.Contains(t, stats.RequestsByHour, "2024-07-01 10:00")
	assert.Contains(t, stats.RequestsByHour, "2024-07-09 10:00")
}

func TestPruneDropsOldHourBuckets(t *testing.T) {
	a := NewAccountant(24, 7)
	clock := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	a.Update(10, 10, 0.001)

	clock = time.Date(2024, 7, 16, 10, 0, 0, 0, time.UTC)
	a.Update(10, 10, 0.001)

	stats := a.Snapshot()
	assert.NotContains(t, stats.RequestsByHour, "2024-07-15 08:00")
	assert.Contains(t, stats.RequestsByHour, "2024-07-16 10:00")
}

func TestSnapshotReturnsCopies(t *testing.T) {
	a := NewAccountant(0, 7)
	a.Update(10, 10, 0.001)

	stats := a.Snapshot()
	for k := range stats.RequestsByHour {
		delete(stats.RequestsByHour, k)
	}
	assert.NotEmpty(t, a.Snapshot().RequestsByHour)
}
