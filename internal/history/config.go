package history

import (
	"time"

	"codeberg.org/mutker/stackchart/internal/errors"
)

const (
	defaultBatchSize    = 30
	defaultBatchTimeout = 10 * time.Second
	defaultRetention    = 24 * time.Hour
)

type Config struct {
	DBPath       string
	Enabled      bool
	BatchSize    int
	BatchTimeout time.Duration
	// Retention drops samples older than this on every flush. Zero keeps
	// everything.
	Retention time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Retention:    defaultRetention,
		Enabled:      false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if history is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 || c.Retention < 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "negative history batching or retention")
	}

	return nil
}
