package pipeline

import "sort"

// SortByZoneTime sorts events in place by (zone asc, pickup time asc).
// The sort is stable so ties keep their input order and repeated runs
// over identical input produce identical downstream counts.
func SortByZoneTime(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Zone != events[j].Zone {
			return events[i].Zone < events[j].Zone
		}
		return events[i].PickupNS < events[j].PickupNS
	})
}

// Partitions scans a (zone, time)-sorted event slice and returns the
// contiguous index range of each zone. The ranges are disjoint and
// cover the slice exactly; an empty slice yields no partitions.
func Partitions(events []Event) []Partition {
	if len(events) == 0 {
		return nil
	}

	parts := make([]Partition, 0, 64)
	start := 0
	for i := 1; i < len(events); i++ {
		if events[i].Zone != events[start].Zone {
			parts = append(parts, Partition{Zone: events[start].Zone, Start: start, End: i})
			start = i
		}
	}
	parts = append(parts, Partition{Zone: events[start].Zone, Start: start, End: len(events)})
	return parts
}
