package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/zonepulse/internal/config"
)

const tripCSV = `pickup_datetime,PULocationID
2025-04-01 08:00:00,1
2025-04-01 09:00:00,1
2025-04-01 10:00:00,1
2025-04-01 11:00:00,2
2025-04-01 12:00:00,2
2025-04-02 13:00:00,2
,2
2025-04-02 14:00:00,
`

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	csvPath := filepath.Join(dir, "trips.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(tripCSV), 0644))

	return &config.Config{
		Source: config.SourceConfig{Kind: "csv", Path: csvPath},
		Pipeline: config.PipelineConfig{
			Workers: 2,
			Windows: []config.WindowConfig{
				{Label: "1h", Span: time.Hour},
				{Label: "6h", Span: 6 * time.Hour},
				{Label: "24h", Span: 24 * time.Hour},
			},
		},
		Output: config.OutputConfig{Format: "csv", Path: filepath.Join(dir, "daily.csv")},
	}
}

func TestPipeline_RunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	pipe, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	result, err := pipe.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(8), result.RawRecords)
	assert.Equal(t, int64(2), result.Dropped)
	assert.Equal(t, int64(6), result.Events)
	assert.Equal(t, 2, result.Partitions)
	require.Len(t, result.Summaries, 3)

	// (day1, zone1, 3), (day1, zone2, 2), (day2, zone2, 1)
	assert.Equal(t, int64(3), result.Summaries[0].TripCount)
	assert.Equal(t, int64(2), result.Summaries[1].TripCount)
	assert.Equal(t, int64(1), result.Summaries[2].TripCount)

	_, err = os.Stat(cfg.Output.Path)
	assert.NoError(t, err)
}

func TestPipeline_RerunIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	pipe, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = pipe.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	_, err = pipe.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_EmptySourceIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Source.Path = filepath.Join(dir, "does-not-match-*.csv")

	pipe, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	result, err := pipe.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Events)
	assert.Empty(t, result.Summaries)
}

func TestPipeline_UnknownSourceKind(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Source.Kind = "sqlite"

	_, err := New(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrLoaderCreationFailed)
}
