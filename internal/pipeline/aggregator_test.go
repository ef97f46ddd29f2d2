package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d.UTC()
}

func computeFor(t *testing.T, events []Event) *RollingCounts {
	t.Helper()
	SortByZoneTime(events)
	rolling, err := ComputeRollingCounts(context.Background(), events, Partitions(events), DefaultWindows, 2)
	require.NoError(t, err)
	return rolling
}

func TestAggregateDaily_GroupsByDayAndZone(t *testing.T) {
	// Zone 1: three events on day 1. Zone 2: two on day 1, one on day 2.
	events := []Event{
		{PickupNS: mustNS(t, "2025-04-01T08:00:00Z"), Zone: 1},
		{PickupNS: mustNS(t, "2025-04-01T09:00:00Z"), Zone: 1},
		{PickupNS: mustNS(t, "2025-04-01T10:00:00Z"), Zone: 1},
		{PickupNS: mustNS(t, "2025-04-01T11:00:00Z"), Zone: 2},
		{PickupNS: mustNS(t, "2025-04-01T12:00:00Z"), Zone: 2},
		{PickupNS: mustNS(t, "2025-04-02T13:00:00Z"), Zone: 2},
	}
	rolling := computeFor(t, events)
	summaries := AggregateDaily(events, rolling)

	require.Len(t, summaries, 3)
	assert.Equal(t, day(t, "2025-04-01"), summaries[0].Date)
	assert.Equal(t, int32(1), summaries[0].Zone)
	assert.Equal(t, int64(3), summaries[0].TripCount)

	assert.Equal(t, day(t, "2025-04-01"), summaries[1].Date)
	assert.Equal(t, int32(2), summaries[1].Zone)
	assert.Equal(t, int64(2), summaries[1].TripCount)

	assert.Equal(t, day(t, "2025-04-02"), summaries[2].Date)
	assert.Equal(t, int32(2), summaries[2].Zone)
	assert.Equal(t, int64(1), summaries[2].TripCount)
}

func TestAggregateDaily_MeansRoundedToTwoDecimals(t *testing.T) {
	// Three events 30 minutes apart: 1h counts are 1, 2, 2 so the
	// mean is 5/3 = 1.666... which rounds to 1.67.
	events := []Event{
		{PickupNS: mustNS(t, "2025-04-01T00:00:00Z"), Zone: 1},
		{PickupNS: mustNS(t, "2025-04-01T00:30:00Z"), Zone: 1},
		{PickupNS: mustNS(t, "2025-04-01T01:00:00Z"), Zone: 1},
	}
	rolling := computeFor(t, events)
	summaries := AggregateDaily(events, rolling)

	require.Len(t, summaries, 1)
	assert.Equal(t, 1.67, summaries[0].WindowMeans[0]) // 1h
	assert.Equal(t, 2.0, summaries[0].WindowMeans[1])  // 6h: counts 1,2,3
	assert.Equal(t, 2.0, summaries[0].WindowMeans[2])  // 24h
}

func TestAggregateDaily_TripCountsSumToZoneTotals(t *testing.T) {
	events := []Event{
		{PickupNS: mustNS(t, "2025-04-01T23:59:59Z"), Zone: 7},
		{PickupNS: mustNS(t, "2025-04-02T00:00:00Z"), Zone: 7},
		{PickupNS: mustNS(t, "2025-04-02T00:00:01Z"), Zone: 7},
		{PickupNS: mustNS(t, "2025-04-03T05:00:00Z"), Zone: 7},
		{PickupNS: mustNS(t, "2025-04-03T05:00:00Z"), Zone: 8},
	}
	rolling := computeFor(t, events)
	summaries := AggregateDaily(events, rolling)

	totals := make(map[int32]int64)
	for _, s := range summaries {
		totals[s.Zone] += s.TripCount
	}
	assert.Equal(t, int64(4), totals[7])
	assert.Equal(t, int64(1), totals[8])

	// Midnight belongs to the new day.
	require.Equal(t, day(t, "2025-04-01"), summaries[0].Date)
	assert.Equal(t, int64(1), summaries[0].TripCount)
}

func TestAggregateDaily_EmptyInput(t *testing.T) {
	rolling := &RollingCounts{Windows: DefaultWindows, Counts: [][]int32{{}, {}, {}}}
	assert.Empty(t, AggregateDaily(nil, rolling))
}

func TestDayStartNS_FloorsBeforeEpoch(t *testing.T) {
	before := time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)
	got := time.Unix(0, dayStartNS(before.UnixNano())).UTC()
	assert.Equal(t, time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC), got)
}
