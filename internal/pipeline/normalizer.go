package pipeline

import "math"

// Normalize turns raw loader rows into typed events, dropping rows
// with a missing pickup time or a zone id outside the int32 range.
// Dropped rows are counted, never surfaced per-row. No ordering
// guarantee is made here.
func Normalize(raw []RawTrip) ([]Event, int64) {
	events := make([]Event, 0, len(raw))
	var dropped int64

	for _, r := range raw {
		if r.Pickup == nil || r.Zone == nil {
			dropped++
			continue
		}
		if *r.Zone < math.MinInt32 || *r.Zone > math.MaxInt32 {
			dropped++
			continue
		}
		events = append(events, Event{
			PickupNS: r.Pickup.UnixNano(),
			Zone:     int32(*r.Zone),
		})
	}
	return events, dropped
}
