package pipeline

import (
	"math"
	"sort"
	"time"
)

const dayNS = int64(24 * time.Hour)

// dayStartNS truncates a timestamp to the start of its UTC calendar
// day. Floor division keeps pre-epoch timestamps on the right day.
func dayStartNS(ns int64) int64 {
	d := ns / dayNS
	if ns%dayNS < 0 {
		d--
	}
	return d * dayNS
}

type dailyKey struct {
	dayNS int64
	zone  int32
}

type dailyAccum struct {
	trips int64
	sums  []int64 // one running sum per window
}

// AggregateDaily groups events by (UTC calendar day, zone) and reduces
// each group to its trip count plus the mean of every window's counts,
// rounded to 2 decimals. Rows come back ordered by (date, zone) so
// identical input always produces identical output.
func AggregateDaily(events []Event, rolling *RollingCounts) []DailySummary {
	groups := make(map[dailyKey]*dailyAccum)

	for i, e := range events {
		key := dailyKey{dayNS: dayStartNS(e.PickupNS), zone: e.Zone}
		acc, ok := groups[key]
		if !ok {
			acc = &dailyAccum{sums: make([]int64, len(rolling.Windows))}
			groups[key] = acc
		}
		acc.trips++
		for w := range rolling.Windows {
			acc.sums[w] += int64(rolling.Counts[w][i])
		}
	}

	summaries := make([]DailySummary, 0, len(groups))
	for key, acc := range groups {
		means := make([]float64, len(rolling.Windows))
		for w, sum := range acc.sums {
			means[w] = round2(float64(sum) / float64(acc.trips))
		}
		summaries = append(summaries, DailySummary{
			Date:        time.Unix(0, key.dayNS).UTC(),
			Zone:        key.zone,
			TripCount:   acc.trips,
			WindowMeans: means,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].Date.Equal(summaries[j].Date) {
			return summaries[i].Date.Before(summaries[j].Date)
		}
		return summaries[i].Zone < summaries[j].Zone
	})
	return summaries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
