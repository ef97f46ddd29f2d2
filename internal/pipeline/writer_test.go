package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleSummaries() []DailySummary {
	return []DailySummary{
		{
			Date:        time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Zone:        132,
			TripCount:   3,
			WindowMeans: []float64{1.67, 2, 2},
		},
		{
			Date:        time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
			Zone:        161,
			TripCount:   1,
			WindowMeans: []float64{1, 1, 1},
		},
	}
}

func TestWriteDailyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	err := WriteDailySummaries(path, "csv", DefaultWindows, sampleSummaries(), zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "date,zone,daily_trips,rolling_1h_mean,rolling_6h_mean,rolling_24h_mean\n" +
		"2025-04-01,132,3,1.67,2.00,2.00\n" +
		"2025-04-02,161,1,1.00,1.00,1.00\n"
	assert.Equal(t, want, string(data))
}

func TestWriteDailyCSV_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	require.NoError(t, WriteDailySummaries(a, "csv", DefaultWindows, sampleSummaries(), zap.NewNop()))
	require.NoError(t, WriteDailySummaries(b, "csv", DefaultWindows, sampleSummaries(), zap.NewNop()))

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, dataA, dataB)
}

func TestWriteDailyParquet_RequiresStandardWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.parquet")
	windows := []Window{{Label: "2h", SpanNS: 2 * time.Hour.Nanoseconds()}}
	rows := []DailySummary{{Date: time.Now().UTC(), Zone: 1, TripCount: 1, WindowMeans: []float64{1}}}

	err := WriteDailySummaries(path, "parquet", windows, rows, zap.NewNop())
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestWriteDailyParquet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.parquet")
	require.NoError(t, WriteDailySummaries(path, "parquet", DefaultWindows, sampleSummaries(), zap.NewNop()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
