package storage

import "context"

// VectorCache persists embedding vectors between process runs.
// Keys are content keys derived from the model name and the embedded text
// (see core.ContentKey). Implementations must be thread-safe.
type VectorCache interface {
	// GetVectors returns the cached vectors for keys that were produced by
	// model. Keys with no entry, or with an entry from another model, are
	// absent from the result.
	GetVectors(ctx context.Context, model string, keys []string) (map[string][]float32, error)

	// PutVectors stores vectors produced by model, replacing existing entries.
	PutVectors(ctx context.Context, model string, vectors map[string][]float32) error

	// Close releases resources held by the cache.
	Close() error
}
