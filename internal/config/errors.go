package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrConfigFileMissing    = errors.New("config file not found")
	ErrUnknownSourceKind    = errors.New("source kind must be one of: parquet, csv, kafka")
	ErrEmptySourcePath      = errors.New("source path glob cannot be empty for file sources")
	ErrEmptyKafkaBrokers    = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic      = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID    = errors.New("kafka groupID cannot be empty")
	ErrInvalidWorkerCount   = errors.New("pipeline workers must be positive")
	ErrEmptyWindowSet       = errors.New("pipeline windows cannot be empty")
	ErrInvalidWindowSpan    = errors.New("pipeline window span must be positive")
	ErrDuplicateWindowLabel = errors.New("pipeline window labels must be unique")
	ErrUnknownOutputFormat  = errors.New("output format must be one of: csv, parquet")
	ErrEmptyOutputPath      = errors.New("output path cannot be empty")
)
