package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// WriteDailySummaries persists the daily table in the configured
// format. Both writers order columns identically: date, zone, trip
// count, then one mean column per window.
func WriteDailySummaries(path, format string, windows []Window, rows []DailySummary, logger *zap.Logger) error {
	var err error
	switch format {
	case "csv":
		err = writeDailyCSV(path, windows, rows)
	case "parquet":
		err = writeDailyParquet(path, windows, rows)
	default:
		err = fmt.Errorf("%w: unknown format %q", ErrWriteFailed, format)
	}
	if err != nil {
		return err
	}
	logger.Sugar().Infow("Daily summary written", "path", path, "format", format, "rows", len(rows))
	return nil
}

func writeDailyCSV(path string, windows []Window, rows []DailySummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"date", "zone", "daily_trips"}
	for _, win := range windows {
		header = append(header, "rolling_"+win.Label+"_mean")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	record := make([]string, 0, len(header))
	for _, row := range rows {
		record = record[:0]
		record = append(record,
			row.Date.Format(dateLayout),
			strconv.FormatInt(int64(row.Zone), 10),
			strconv.FormatInt(row.TripCount, 10),
		)
		for _, mean := range row.WindowMeans {
			record = append(record, strconv.FormatFloat(mean, 'f', 2, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// dailyParquetRow is the stable exchange schema for downstream
// visualization and forecasting consumers.
type dailyParquetRow struct {
	Date           time.Time `parquet:"date"`
	Zone           int32     `parquet:"zone"`
	DailyTrips     int64     `parquet:"daily_trips"`
	Rolling1hMean  float64   `parquet:"rolling_1h_mean"`
	Rolling6hMean  float64   `parquet:"rolling_6h_mean"`
	Rolling24hMean float64   `parquet:"rolling_24h_mean"`
}

func writeDailyParquet(path string, windows []Window, rows []DailySummary) error {
	// The parquet schema is fixed; it requires the standard window set.
	idx := make(map[string]int, len(windows))
	for i, win := range windows {
		idx[win.Label] = i
	}
	i1h, ok1 := idx["1h"]
	i6h, ok2 := idx["6h"]
	i24h, ok3 := idx["24h"]
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("%w: parquet output requires the 1h/6h/24h window set", ErrWriteFailed)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[dailyParquetRow](f)
	out := make([]dailyParquetRow, len(rows))
	for i, row := range rows {
		out[i] = dailyParquetRow{
			Date:           row.Date,
			Zone:           row.Zone,
			DailyTrips:     row.TripCount,
			Rolling1hMean:  row.WindowMeans[i1h],
			Rolling6hMean:  row.WindowMeans[i6h],
			Rolling24hMean: row.WindowMeans[i24h],
		}
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
