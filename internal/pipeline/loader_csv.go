package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// csvTimeFormats are tried in order when parsing the pickup column.
var csvTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CSVLoader reads trip batches from CSV exports carrying a header row
// with pickup_datetime and a zone id column.
type CSVLoader struct {
	glob   string
	logger *zap.Logger
}

func NewCSVLoader(glob string, logger *zap.Logger) *CSVLoader {
	return &CSVLoader{glob: glob, logger: logger}
}

// Load reads the matched files in lexical order. Cells that fail to
// parse surface as missing fields so the normalizer counts them as
// dropped rather than failing the run.
func (l *CSVLoader) Load(ctx context.Context) ([]RawTrip, error) {
	sugar := l.logger.Sugar()

	paths, err := filepath.Glob(l.glob)
	if err != nil {
		return nil, fmt.Errorf("%w: bad glob %q: %w", ErrLoadFailed, l.glob, err)
	}
	sort.Strings(paths)
	sugar.Infow("Loading CSV files", "glob", l.glob, "files", len(paths))

	var batch []RawTrip
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		batch = append(batch, rows...)
		sugar.Infow("Loaded CSV file", "path", filepath.Base(path), "rows", len(rows))
	}

	sugar.Infow("CSV load complete", "total_rows", len(batch))
	return batch, nil
}

func (l *CSVLoader) loadFile(path string) ([]RawTrip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil // empty file, empty batch
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
	}

	pickupIdx, zoneIdx := -1, -1
	for i, name := range header {
		switch name {
		case "pickup_datetime":
			pickupIdx = i
		case "PULocationID", "zone", "zone_id":
			zoneIdx = i
		}
	}
	if pickupIdx < 0 || zoneIdx < 0 {
		return nil, fmt.Errorf("%w: %s: header missing pickup_datetime or zone column", ErrLoadFailed, path)
	}

	var rows []RawTrip
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
		}

		var trip RawTrip
		if pickupIdx < len(rec) {
			if t, ok := parseCSVTime(rec[pickupIdx]); ok {
				trip.Pickup = &t
			}
		}
		if zoneIdx < len(rec) {
			if z, err := strconv.ParseInt(rec[zoneIdx], 10, 64); err == nil {
				trip.Zone = &z
			}
		}
		rows = append(rows, trip)
	}
	return rows, nil
}

func parseCSVTime(s string) (time.Time, bool) {
	for _, format := range csvTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
