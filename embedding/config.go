package embedding

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config controls how a Batcher talks to the embedder.
type Config struct {
	// Model names the embedding model. It is part of every cache key.
	Model string

	// BatchSize is the number of texts sent per EmbedTexts call.
	// Default: 64
	BatchSize int

	// MaxRetries is the number of attempts per batch.
	// Default: 3
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	// Default: 500ms
	RetryDelay time.Duration

	// PoolSize is the number of batches embedded concurrently.
	// Default: runtime.NumCPU() / 2, with a minimum of 1.
	PoolSize int
}

// DefaultConfig returns the default batching configuration for model.
func DefaultConfig(model string) Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return Config{
		Model:      model,
		BatchSize:  64,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		PoolSize:   poolSize,
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Model) == "":
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size %d", ErrInvalidConfig, c.BatchSize)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max retries %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay %s", ErrInvalidConfig, c.RetryDelay)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size %d", ErrInvalidConfig, c.PoolSize)
	}
	return nil
}
