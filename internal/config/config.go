package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultSourceKind      = "parquet"
	defaultKafkaGroupID    = "zonepulse-default-group"
	defaultKafkaMaxRecords = 1_000_000
	defaultKafkaIdleWait   = 5 * time.Second
	defaultWorkers         = 4
	defaultPreviewRows     = 10
	defaultOutputFormat    = "csv"
	defaultOutputPath      = "daily_zone_features.csv"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultLogFileEnabled  = false
	defaultLogDirectory    = "log"
	defaultLogFilename     = "app.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 7
	defaultLogCompress     = false

	// Environment variable prefix
	envPrefix = "ZONEPULSE"
)

type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// SourceConfig selects where the trip batch is loaded from.
// Kind "parquet" and "csv" read files matching Path; kind "kafka"
// drains a bounded topic into memory.
type SourceConfig struct {
	Kind  string      `mapstructure:"kind"`
	Path  string      `mapstructure:"path"` // glob, e.g. data/fhvhv_tripdata_2025-*.parquet
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	GroupID     string        `mapstructure:"groupID"`
	MaxRecords  int           `mapstructure:"maxRecords"`  // stop draining after this many records
	IdleTimeout time.Duration `mapstructure:"idleTimeout"` // stop draining when no message arrives for this long
}

type PipelineConfig struct {
	Workers int            `mapstructure:"workers"`
	Windows []WindowConfig `mapstructure:"windows"`
}

// WindowConfig is one trailing-window duration. The default set is
// 1h/6h/24h; changing it is a configuration concern, the counting
// engine treats windows as data.
type WindowConfig struct {
	Label string        `mapstructure:"label"`
	Span  time.Duration `mapstructure:"span"`
}

type OutputConfig struct {
	Format      string `mapstructure:"format"` // "csv" or "parquet"
	Path        string `mapstructure:"path"`
	PreviewRows int    `mapstructure:"previewRows"` // 0 disables the stdout preview table
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	// Read configuration from file (error if mandatory file is missing)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal the configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	applyWindowDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", defaultSourceKind)
	v.SetDefault("source.kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("source.kafka.maxRecords", defaultKafkaMaxRecords)
	v.SetDefault("source.kafka.idleTimeout", defaultKafkaIdleWait)
	v.SetDefault("pipeline.workers", defaultWorkers)
	v.SetDefault("output.format", defaultOutputFormat)
	v.SetDefault("output.path", defaultOutputPath)
	v.SetDefault("output.previewRows", defaultPreviewRows)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9104")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// applyWindowDefaults fills in the standard 1h/6h/24h trailing windows
// when the config file does not override them.
func applyWindowDefaults(cfg *Config) {
	if len(cfg.Pipeline.Windows) == 0 {
		cfg.Pipeline.Windows = []WindowConfig{
			{Label: "1h", Span: time.Hour},
			{Label: "6h", Span: 6 * time.Hour},
			{Label: "24h", Span: 24 * time.Hour},
		}
	}
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case "parquet", "csv":
		if cfg.Source.Path == "" {
			return ErrEmptySourcePath
		}
	case "kafka":
		if len(cfg.Source.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Source.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Source.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	default:
		return ErrUnknownSourceKind
	}

	if cfg.Pipeline.Workers <= 0 {
		return ErrInvalidWorkerCount
	}
	if len(cfg.Pipeline.Windows) == 0 {
		return ErrEmptyWindowSet
	}
	seen := make(map[string]struct{}, len(cfg.Pipeline.Windows))
	for _, w := range cfg.Pipeline.Windows {
		if w.Span <= 0 {
			return ErrInvalidWindowSpan
		}
		if _, dup := seen[w.Label]; dup {
			return ErrDuplicateWindowLabel
		}
		seen[w.Label] = struct{}{}
	}

	switch cfg.Output.Format {
	case "csv", "parquet":
	default:
		return ErrUnknownOutputFormat
	}
	if cfg.Output.Path == "" {
		return ErrEmptyOutputPath
	}
	return nil
}
