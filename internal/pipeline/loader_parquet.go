package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// tripRow is the projected parquet schema: only the pickup timestamp
// and zone columns are materialized, matching the TLC trip files.
// Optional pointers let null cells flow to the normalizer as missing.
type tripRow struct {
	Pickup *time.Time `parquet:"pickup_datetime,optional"`
	Zone   *int64     `parquet:"PULocationID,optional"`
}

// ParquetLoader reads every parquet file matching a glob into one
// in-memory batch.
type ParquetLoader struct {
	glob   string
	logger *zap.Logger
}

func NewParquetLoader(glob string, logger *zap.Logger) *ParquetLoader {
	return &ParquetLoader{glob: glob, logger: logger}
}

// Load reads the matched files in lexical order and concatenates their
// rows. Zero matched files is not an error; it yields an empty batch.
func (l *ParquetLoader) Load(ctx context.Context) ([]RawTrip, error) {
	sugar := l.logger.Sugar()

	paths, err := filepath.Glob(l.glob)
	if err != nil {
		return nil, fmt.Errorf("%w: bad glob %q: %w", ErrLoadFailed, l.glob, err)
	}
	sort.Strings(paths)
	sugar.Infow("Loading parquet files", "glob", l.glob, "files", len(paths))

	var batch []RawTrip
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := parquet.ReadFile[tripRow](path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
		}
		for _, r := range rows {
			batch = append(batch, RawTrip{Pickup: r.Pickup, Zone: r.Zone})
		}
		sugar.Infow("Loaded parquet file", "path", filepath.Base(path), "rows", len(rows))
	}

	sugar.Infow("Parquet load complete", "total_rows", len(batch))
	return batch, nil
}
