package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/zonepulse/internal/config"
	"github.com/sanspareilsmyn/zonepulse/internal/logging"
	"github.com/sanspareilsmyn/zonepulse/internal/pipeline"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	logger     *zap.Logger
)

func main() {
	// Initialize Configuration
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Logger initialized",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
	)
	sugar.Infow("Configuration loaded successfully", "path", *configFile)

	// Initialize Pipeline
	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize pipeline", "error", err)
	}

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, cancelling batch...", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		go pipeline.ServeMetrics(ctx, cfg.Metrics.Addr, logger.Named("metrics"))
	}

	// Run Batch
	sugar.Info("Starting batch run...")
	result, runErr := pipe.Run(ctx)

	switch {
	case runErr == nil:
		printSummary(result, cfg.Output.PreviewRows)
		sugar.Infow("Batch completed",
			"raw_records", result.RawRecords,
			"dropped", result.Dropped,
			"events", result.Events,
			"zones", result.Partitions,
			"daily_rows", len(result.Summaries),
		)
	case errors.Is(runErr, context.Canceled):
		sugar.Info("Batch cancelled before completion.")
	default:
		sugar.Errorw("Batch failed", zap.Error(runErr))
		_ = logger.Sync()
		os.Exit(1)
	}

	sugar.Info("ZonePulse finished.")
}

// printSummary renders the head of the daily table plus the range
// stats the downstream consumers usually sanity-check first.
func printSummary(result *pipeline.Result, previewRows int) {
	if previewRows <= 0 || len(result.Summaries) == 0 {
		return
	}
	if previewRows > len(result.Summaries) {
		previewRows = len(result.Summaries)
	}

	header := []string{"date", "zone", "daily_trips"}
	for _, w := range result.Windows {
		header = append(header, "rolling_"+w.Label+"_mean")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, row := range result.Summaries[:previewRows] {
		line := []string{
			row.Date.Format("2006-01-02"),
			strconv.FormatInt(int64(row.Zone), 10),
			strconv.FormatInt(row.TripCount, 10),
		}
		for _, mean := range row.WindowMeans {
			line = append(line, strconv.FormatFloat(mean, 'f', 2, 64))
		}
		table.Append(line)
	}
	table.Render()

	first := result.Summaries[0].Date
	last := result.Summaries[len(result.Summaries)-1].Date
	zones := make(map[int32]struct{})
	var totalTrips int64
	for _, row := range result.Summaries {
		zones[row.Zone] = struct{}{}
		totalTrips += row.TripCount
	}
	fmt.Printf("\nDate range:   %s -> %s\n", first.Format("2006-01-02"), last.Format("2006-01-02"))
	fmt.Printf("Unique zones: %d\n", len(zones))
	fmt.Printf("Total trips:  %d\n", totalTrips)
}
