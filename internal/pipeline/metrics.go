package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Prometheus Metrics Definition
var (
	rawRecordsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zonepulse_raw_records_loaded_total",
			Help: "Total number of raw trip records read from the source.",
		},
	)
	recordsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zonepulse_records_dropped_total",
			Help: "Total number of raw records dropped for missing pickup time or zone id.",
		},
	)
	eventsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zonepulse_events_normalized_total",
			Help: "Total number of well-typed events produced by normalization.",
		},
	)
	zonePartitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zonepulse_zone_partitions",
			Help: "Number of zone partitions in the last batch.",
		},
	)
	dailyRowsEmitted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zonepulse_daily_rows_emitted",
			Help: "Number of daily summary rows produced by the last batch.",
		},
	)
	stageDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zonepulse_stage_duration_seconds",
			Help: "Wall-clock duration of each pipeline stage in the last batch.",
		},
		[]string{"stage"},
	)
)

func observeStage(stage string, start time.Time) time.Duration {
	elapsed := time.Since(start)
	stageDuration.WithLabelValues(stage).Set(elapsed.Seconds())
	return elapsed
}

// ServeMetrics exposes /metrics until the context is cancelled. It is
// optional; a batch run that nobody scrapes skips it entirely.
func ServeMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving Prometheus metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("Metrics server stopped unexpectedly", zap.Error(err))
	}
}
