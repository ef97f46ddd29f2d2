package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/zonepulse/internal/config"
	"github.com/sanspareilsmyn/zonepulse/internal/record"
)

// Message field names expected on the trip topic.
const (
	fieldPickup = "pickup_datetime"
	fieldZone   = "zone_id"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// KafkaLoader drains a bounded Kafka topic of JSON trip messages into
// an in-memory batch. The pipeline is strictly batch; the drain stops
// once the topic goes idle for the configured timeout or the record
// cap is reached.
type KafkaLoader struct {
	reader *kafka.Reader
	cfg    config.KafkaConfig
	logger *zap.Logger
}

// NewKafkaLoader creates and configures a new bounded Kafka loader.
func NewKafkaLoader(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaLoader, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.String("group_id", cfg.GroupID),
		)
		return nil, ErrInvalidKafkaConfig
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
	}
	r := kafka.NewReader(readerCfg)

	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Second
	}

	logger.Info("Kafka loader created",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
		zap.Int("max_records", cfg.MaxRecords),
		zap.Duration("idle_timeout", cfg.IdleTimeout),
	)

	return &KafkaLoader{
		reader: r,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Load fetches messages until the topic is idle, the record cap is
// reached, or the context is cancelled. Messages that are not valid
// JSON or carry unusable fields become rows with missing fields so the
// normalizer accounts for them as drops.
func (l *KafkaLoader) Load(ctx context.Context) ([]RawTrip, error) {
	sugar := l.logger.Sugar()
	sugar.Info("Starting bounded Kafka drain...")

	defer func() {
		if err := l.reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	var batch []RawTrip
	for l.cfg.MaxRecords <= 0 || len(batch) < l.cfg.MaxRecords {
		fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.IdleTimeout)
		m, err := l.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				sugar.Infow("Topic idle, drain complete", "records", len(batch))
				return batch, nil
			}
			if errors.Is(err, context.Canceled) {
				l.logger.Debug("Context cancelled, stopping Kafka drain.", zap.Error(err))
				return nil, context.Canceled
			}
			l.logger.Error("Error fetching message from Kafka", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		batch = append(batch, l.parseMessage(m.Value))
	}

	sugar.Infow("Record cap reached, drain complete", "records", len(batch))
	return batch, nil
}

func (l *KafkaLoader) parseMessage(data []byte) RawTrip {
	rec, err := record.ParseDynamicJSON(data)
	if err != nil {
		l.logger.Sugar().Warnw("Failed to parse message, treating as malformed", zap.Error(err))
		return RawTrip{}
	}

	var trip RawTrip
	if t, ok := rec.GetTime(fieldPickup); ok {
		trip.Pickup = t
	} else if rec.HasNonNull(fieldPickup) {
		l.logger.Sugar().Debugw("Unparseable pickup timestamp",
			"value_snippet", rec.FieldSnippet(fieldPickup, 50))
	}
	if z, ok := rec.GetInt64(fieldZone); ok {
		trip.Zone = z
	}
	return trip
}
