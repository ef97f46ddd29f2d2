package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/zonepulse/internal/config"
)

// tripLoader is implemented by the parquet, CSV and Kafka sources.
type tripLoader interface {
	Load(ctx context.Context) ([]RawTrip, error)
}

// Pipeline runs one batch: load, normalize, partition, count trailing
// windows, aggregate daily, write output. Each stage owns its output
// and hands it to the next; there is no shared mutable state.
type Pipeline struct {
	cfg     *config.Config
	windows []Window
	loader  tripLoader
	logger  *zap.Logger
}

// Result summarizes a completed batch for the caller.
type Result struct {
	Windows    []Window
	Summaries  []DailySummary
	RawRecords int64
	Dropped    int64
	Events     int64
	Partitions int
}

// New creates a pipeline with the loader selected by the source config.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	var loader tripLoader
	switch cfg.Source.Kind {
	case "parquet":
		loader = NewParquetLoader(cfg.Source.Path, logger.Named("parquet-loader"))
	case "csv":
		loader = NewCSVLoader(cfg.Source.Path, logger.Named("csv-loader"))
	case "kafka":
		kl, err := NewKafkaLoader(cfg.Source.Kafka, logger.Named("kafka-loader"))
		if err != nil {
			initLogger.Error("Failed to create Kafka loader", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrLoaderCreationFailed, err)
		}
		loader = kl
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", ErrLoaderCreationFailed, cfg.Source.Kind)
	}

	windows := WindowsFromConfig(cfg.Pipeline.Windows)
	initLogger.Info("Pipeline instance created",
		zap.String("source_kind", cfg.Source.Kind),
		zap.Int("windows", len(windows)),
		zap.Int("workers", cfg.Pipeline.Workers),
	)

	return &Pipeline{
		cfg:     cfg,
		windows: windows,
		loader:  loader,
		logger:  logger.Named("pipeline"),
	}, nil
}

// Run executes the batch and returns its result. An empty batch is not
// an error; it produces empty output at every stage.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sugar := p.logger.Sugar()

	// Load
	start := time.Now()
	raw, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	rawRecordsLoaded.Add(float64(len(raw)))
	sugar.Infow("Trip batch loaded", "rows", len(raw), "elapsed", observeStage("load", start))

	// Normalize
	start = time.Now()
	events, dropped := Normalize(raw)
	recordsDropped.Add(float64(dropped))
	eventsNormalized.Add(float64(len(events)))
	sugar.Infow("Normalization complete",
		"events", len(events),
		"dropped", dropped,
		"elapsed", observeStage("normalize", start),
	)

	// Partition
	start = time.Now()
	SortByZoneTime(events)
	parts := Partitions(events)
	zonePartitions.Set(float64(len(parts)))
	sugar.Infow("Partitioning complete", "zones", len(parts), "elapsed", observeStage("partition", start))

	// Rolling window counts
	start = time.Now()
	rolling, err := ComputeRollingCounts(ctx, events, parts, p.windows, p.cfg.Pipeline.Workers)
	if err != nil {
		return nil, err
	}
	sugar.Infow("Rolling counts complete",
		"windows", len(p.windows),
		"workers", p.cfg.Pipeline.Workers,
		"elapsed", observeStage("rolling", start),
	)

	// Daily aggregation
	start = time.Now()
	summaries := AggregateDaily(events, rolling)
	dailyRowsEmitted.Set(float64(len(summaries)))
	sugar.Infow("Daily aggregation complete", "rows", len(summaries), "elapsed", observeStage("aggregate", start))

	// Write output
	start = time.Now()
	if err := WriteDailySummaries(p.cfg.Output.Path, p.cfg.Output.Format, p.windows, summaries, p.logger); err != nil {
		return nil, err
	}
	observeStage("write", start)

	return &Result{
		Windows:    p.windows,
		Summaries:  summaries,
		RawRecords: int64(len(raw)),
		Dropped:    dropped,
		Events:     int64(len(events)),
		Partitions: len(parts),
	}, nil
}
