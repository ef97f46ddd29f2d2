package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// naiveTrailingCount recounts the window the quadratic way: events at
// or before local index i whose timestamp lies in (t-span, t].
func naiveTrailingCount(ts []int64, i int, spanNS int64) int32 {
	var n int32
	for j := 0; j <= i; j++ {
		if ts[j] > ts[i]-spanNS {
			n++
		}
	}
	return n
}

func genEvents() gopter.Gen {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano()
	return gen.SliceOf(gopter.CombineGens(
		gen.Int32Range(1, 8),                           // zone
		gen.Int64Range(0, (48 * time.Hour).Nanoseconds()), // offset within two days
	).Map(func(vals []interface{}) Event {
		return Event{
			Zone:     vals[0].(int32),
			PickupNS: base + vals[1].(int64),
		}
	}))
}

func TestProperty_RollingCounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	run := func(events []Event) (*RollingCounts, []Partition, bool) {
		SortByZoneTime(events)
		parts := Partitions(events)
		rolling, err := ComputeRollingCounts(context.Background(), events, parts, DefaultWindows, 4)
		if err != nil {
			return nil, nil, false
		}
		return rolling, parts, true
	}

	properties.Property("counts are bounded by 1 and the partition length", prop.ForAll(
		func(events []Event) bool {
			rolling, parts, ok := run(events)
			if !ok {
				return false
			}
			for _, p := range parts {
				for w := range rolling.Windows {
					for i := p.Start; i < p.End; i++ {
						c := rolling.Counts[w][i]
						if c < 1 || int(c) > p.Len() {
							return false
						}
					}
				}
			}
			return true
		},
		genEvents(),
	))

	properties.Property("wider windows never shrink the count", prop.ForAll(
		func(events []Event) bool {
			rolling, _, ok := run(events)
			if !ok {
				return false
			}
			for i := range events {
				for w := 1; w < len(rolling.Windows); w++ {
					if rolling.Counts[w][i] < rolling.Counts[w-1][i] {
						return false
					}
				}
			}
			return true
		},
		genEvents(),
	))

	properties.Property("binary-search counts match the quadratic recount", prop.ForAll(
		func(events []Event) bool {
			rolling, parts, ok := run(events)
			if !ok {
				return false
			}
			ts := make([]int64, len(events))
			for i, e := range events {
				ts[i] = e.PickupNS
			}
			for _, p := range parts {
				local := ts[p.Start:p.End]
				for w, window := range rolling.Windows {
					for i := 0; i < p.Len(); i++ {
						if rolling.Counts[w][p.Start+i] != naiveTrailingCount(local, i, window.SpanNS) {
							return false
						}
					}
				}
			}
			return true
		},
		genEvents(),
	))

	properties.Property("partitions cover the sorted slice exactly once", prop.ForAll(
		func(events []Event) bool {
			SortByZoneTime(events)
			parts := Partitions(events)
			next := 0
			for _, p := range parts {
				if p.Start != next || p.End <= p.Start {
					return false
				}
				for i := p.Start; i < p.End; i++ {
					if events[i].Zone != p.Zone {
						return false
					}
				}
				next = p.End
			}
			return next == len(events)
		},
		genEvents(),
	))

	properties.TestingRun(t)
}
