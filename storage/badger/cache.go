// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rejestr/storage"
)

// VectorCache implements storage.VectorCache for BadgerDB.
type VectorCache struct {
	backend *Backend
	owned   bool
	logger  *slog.Logger
}

var _ storage.VectorCache = (*VectorCache)(nil)

// newVectorCache is an internal constructor that returns the concrete type.
func newVectorCache(backend *Backend) *VectorCache {
	return &VectorCache{
		backend: backend,
		logger:  slog.Default().With("component", "vector-cache"),
	}
}

// NewVectorCache creates a vector cache on an open backend.
// Closing the cache leaves the backend open.
func NewVectorCache(backend *Backend) (storage.VectorCache, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return newVectorCache(backend), nil
}

// OpenVectorCache opens a backend at path and returns a cache that owns it.
func OpenVectorCache(path string) (storage.VectorCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	c := newVectorCache(backend)
	c.owned = true
	c.logger.Debug("opened vector cache", "path", path)
	return c, nil
}

// GetVectors returns cached vectors for keys produced by model.
func (c *VectorCache) GetVectors(ctx context.Context, model string, keys []string) (map[string][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	found := make(map[string][]float32, len(keys))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeVectorKey(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var cached *storage.CachedVector
			err = item.Value(func(val []byte) error {
				var unmarshalErr error
				cached, unmarshalErr = storage.UnmarshalCachedVector(val)
				return unmarshalErr
			})
			if err != nil {
				c.logger.Warn("ignoring unreadable cache entry", "key", key, "err", err)
				continue
			}
			if cached.Model != model {
				continue
			}
			found[key] = cached.Values
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cache lookup", "requested", len(keys), "hits", len(found))
	return found, nil
}

// PutVectors stores vectors produced by model.
func (c *VectorCache) PutVectors(ctx context.Context, model string, vectors map[string][]float32) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(vectors) == 0 {
		return nil
	}

	return c.backend.WriteBatch(func(wb *badger.WriteBatch) error {
		for key, values := range vectors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := storage.ValidateVector(values); err != nil {
				return err
			}
			value := storage.MarshalCachedVector(&storage.CachedVector{Model: model, Values: values})
			if err := wb.Set(makeVectorKey(key), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of cached vectors across all models.
func (c *VectorCache) Count(ctx context.Context) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = vectorKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close closes the backend if the cache opened it.
func (c *VectorCache) Close() error {
	if !c.owned {
		return nil
	}
	return c.backend.Close()
}
