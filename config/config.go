package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Molit holds settings for the MOLIT open-data API
	Molit struct {
		// Service credential issued by data.go.kr
		ServiceKey string `env:"MOLIT_API_KEY"`

		// Delay applied before every upstream call (rate limiting)
		RequestDelayMillis int `env:"API_REQUEST_DELAY_MS" envDefault:"100"`

		// Per-call HTTP timeout in seconds
		TimeoutSeconds int `env:"API_TIMEOUT_SECONDS" envDefault:"15"`

		// Rows requested per page
		PageSize int `env:"API_PAGE_SIZE" envDefault:"100"`
	}

	// Cache holds search snapshot settings
	Cache struct {
		// Lifetime of a cached search snapshot in hours
		TTLHours int `env:"CACHE_TTL_HOURS" envDefault:"24"`
	}

	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/aptrack.db"`
	}

	Regions struct {
		// Optional tab-separated administrative code listing; the static
		// hierarchy is used when the file is absent
		CodeFile string `env:"REGION_CODE_FILE" envDefault:""`
	}

	// BatchProcessing configuration for the transaction persistence pipeline
	BatchProcessing struct {
		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Buffer size of the in-memory batch queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"16"`
	}
}

// ErrMissingServiceKey is returned when no MOLIT credential is configured.
// The fetcher cannot operate without one, so startup treats this as fatal.
var ErrMissingServiceKey = errors.New("MOLIT_API_KEY is not set")

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Molit.ServiceKey == "" {
		return nil, ErrMissingServiceKey
	}
	return cfg, nil
}
