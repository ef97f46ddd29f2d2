package pipeline

import "errors"

var (
	ErrLoaderCreationFailed = errors.New("failed to create trip loader")
	ErrLoadFailed           = errors.New("failed to load trip batch")
	ErrInvalidKafkaConfig   = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed     = errors.New("failed to fetch message from Kafka")
	ErrUnsortedPartition    = errors.New("partition timestamps are not sorted ascending")
	ErrWriteFailed          = errors.New("failed to write daily summary output")
)
