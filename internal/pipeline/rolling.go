package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// countTrailing fills counts[s:e] for one partition whose timestamps
// occupy ts[s:e], already sorted ascending. The count for the event at
// local index i is the number of events in (t-span, t], the event
// itself included: i+1 minus the first local index whose timestamp
// exceeds t-span, found by binary search. O(n log n) per partition.
func countTrailing(ts []int64, counts []int32, spanNS int64) {
	for i, t := range ts {
		cutoff := t - spanNS
		// First index with ts > cutoff; everything at exactly the
		// cutoff falls outside the window.
		j := sort.Search(i, func(k int) bool { return ts[k] > cutoff })
		counts[i] = int32(i + 1 - j)
	}
}

// checkSorted verifies the partition precondition: non-decreasing
// timestamps. An out-of-order timestamp would silently corrupt every
// binary search, so the run aborts instead.
func checkSorted(ts []int64, p Partition) error {
	for i := 1; i < len(ts); i++ {
		if ts[i] < ts[i-1] {
			return fmt.Errorf("%w: zone %d index %d", ErrUnsortedPartition, p.Zone, p.Start+i)
		}
	}
	return nil
}

// ComputeRollingCounts computes, for every event and every window, the
// trailing count within that event's zone. Partitions touch disjoint
// index ranges of the shared output slices, so they run in parallel on
// up to workers goroutines with no locking. Cancellation is honored
// between partitions.
func ComputeRollingCounts(ctx context.Context, events []Event, parts []Partition, windows []Window, workers int) (*RollingCounts, error) {
	if workers <= 0 {
		workers = 1
	}

	ts := make([]int64, len(events))
	for i, e := range events {
		ts[i] = e.PickupNS
	}

	counts := make([][]int32, len(windows))
	for w := range windows {
		counts[w] = make([]int32, len(events))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range parts {
		p := p
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := ts[p.Start:p.End]
			if err := checkSorted(local, p); err != nil {
				return err
			}
			for w, window := range windows {
				countTrailing(local, counts[w][p.Start:p.End], window.SpanNS)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The caller's context, not the group-derived one: the group
	// cancels its context on every Wait, success included.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &RollingCounts{Windows: windows, Counts: counts}, nil
}
