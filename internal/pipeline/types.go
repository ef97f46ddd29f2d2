package pipeline

import (
	"time"

	"github.com/sanspareilsmyn/zonepulse/internal/config"
)

// RawTrip is one record as the loaders hand it to the normalizer.
// Either field may be nil when the source row was incomplete; the
// normalizer drops such rows.
type RawTrip struct {
	Pickup *time.Time
	Zone   *int64
}

// Event is a normalized pickup: nanoseconds since epoch plus the zone id.
// Immutable once created.
type Event struct {
	PickupNS int64
	Zone     int32
}

// Window is one trailing-window duration with its output label.
type Window struct {
	Label  string
	SpanNS int64
}

// DefaultWindows is the standard trailing-window set.
var DefaultWindows = []Window{
	{Label: "1h", SpanNS: 3_600_000_000_000},
	{Label: "6h", SpanNS: 21_600_000_000_000},
	{Label: "24h", SpanNS: 86_400_000_000_000},
}

// WindowsFromConfig converts configured window durations to the
// nanosecond spans the counting engine works in.
func WindowsFromConfig(cfgs []config.WindowConfig) []Window {
	if len(cfgs) == 0 {
		return DefaultWindows
	}
	windows := make([]Window, len(cfgs))
	for i, wc := range cfgs {
		windows[i] = Window{Label: wc.Label, SpanNS: wc.Span.Nanoseconds()}
	}
	return windows
}

// Partition is the half-open index range [Start, End) of one zone's
// events within the globally sorted event slice.
type Partition struct {
	Zone  int32
	Start int
	End   int
}

// Len returns the number of events in the partition.
func (p Partition) Len() int { return p.End - p.Start }

// RollingCounts holds the per-event trailing-window counts.
// Counts[w][i] is the count for window Windows[w] at event index i of
// the sorted event slice.
type RollingCounts struct {
	Windows []Window
	Counts  [][]int32
}

// DailySummary is one reduced row per (calendar day, zone): the raw
// trip count plus the mean of each window's per-event counts.
type DailySummary struct {
	Date        time.Time // midnight UTC
	Zone        int32
	TripCount   int64
	WindowMeans []float64 // aligned with the window set used for the run
}
