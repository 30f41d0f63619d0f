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


package embedding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rejestr/ai"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/storage"
)

// cacheAgreement is the minimum cosine similarity between a cached vector and
// a fresh embedding of the same text for the cache to be trusted.
const cacheAgreement = 0.99

// Stats describes one Embed call.
type Stats struct {
	Texts     int // texts requested, including repeats
	Unique    int // distinct texts
	CacheHits int // distinct texts served from the cache
	Embedded  int // distinct texts sent to the embedder
	Batches   int // EmbedTexts calls that succeeded
}

// Batcher embeds texts in batches on a worker pool.
type Batcher struct {
	embedder ai.Embedder
	cache    storage.VectorCache
	config   Config
	pool     *ants.Pool
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Batcher.
type Option func(*Batcher) error

// WithConfig replaces the batching configuration.
func WithConfig(cfg Config) Option {
	return func(b *Batcher) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		b.config = cfg
		return nil
	}
}

// WithCache sets a vector cache consulted before the embedder.
// Default is no cache.
func WithCache(cache storage.VectorCache) Option {
	return func(b *Batcher) error {
		b.cache = cache
		return nil
	}
}

// WithProgress reports batch progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *Batcher) error {
		b.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Batcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBatcher creates a batcher for embedder. The default model name is
// "default"; pass WithConfig to set the real one so cache entries from
// different models never mix. Call Release when done.
func NewBatcher(embedder ai.Embedder, opts ...Option) (*Batcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Batcher{
		embedder: embedder,
		config:   DefaultConfig("default"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "embedding-batcher", "model", b.config.Model)

	pool, err := ants.NewPool(b.config.PoolSize)
	if err != nil {
		return nil, err
	}
	b.pool = pool
	return b, nil
}

// Model returns the model name used for cache keys.
func (b *Batcher) Model() string {
	return b.config.Model
}

// Release stops the worker pool.
func (b *Batcher) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Embed returns one unit vector per text, in input order. Repeated texts are
// embedded once. Every returned vector has the same dimension.
func (b *Batcher) Embed(ctx context.Context, texts []string) ([][]float32, Stats, error) {
	stats := Stats{Texts: len(texts)}
	if len(texts) == 0 {
		return [][]float32{}, stats, nil
	}

	unique := make([]string, 0, len(texts))
	position := make(map[string]int, len(texts))
	for _, text := range texts {
		if _, ok := position[text]; !ok {
			position[text] = len(unique)
			unique = append(unique, text)
		}
	}
	stats.Unique = len(unique)

	keys := make([]string, len(unique))
	for i, text := range unique {
		keys[i] = core.ContentKey(b.config.Model, text)
	}

	vectors := make([][]float32, len(unique))
	b.fromCache(ctx, keys, vectors)

	var missing []int
	for i, v := range vectors {
		if v == nil {
			missing = append(missing, i)
		}
	}
	stats.CacheHits = len(unique) - len(missing)
	stats.Embedded = len(missing)

	batches, err := b.embedMissing(ctx, unique, keys, missing, vectors)
	stats.Batches = batches
	if err != nil {
		return nil, stats, err
	}

	if stats.CacheHits > 0 {
		stale, err := b.staleHits(ctx, unique, missing, vectors)
		if err != nil {
			return nil, stats, err
		}
		if len(stale) > 0 {
			b.logger.Warn("cached vectors do not match the embedder, re-embedding", "count", len(stale))
			stats.CacheHits -= len(stale)
			stats.Embedded += len(stale)
			batches, err := b.embedMissing(ctx, unique, keys, stale, vectors)
			stats.Batches += batches
			if err != nil {
				return nil, stats, err
			}
		}
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, stats, fmt.Errorf("%w: %q has %d dimensions, expected %d",
				ErrDimensionMismatch, unique[i], len(v), dim)
		}
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectors[position[text]]
	}

	b.logger.Info("embedded texts",
		"texts", stats.Texts,
		"unique", stats.Unique,
		"cache_hits", stats.CacheHits,
		"embedded", stats.Embedded,
		"batches", stats.Batches)
	return out, stats, nil
}

// fromCache fills vectors with cache hits. Cache failures are logged and
// treated as misses.
func (b *Batcher) fromCache(ctx context.Context, keys []string, vectors [][]float32) {
	if b.cache == nil {
		return
	}
	cached, err := b.cache.GetVectors(ctx, b.config.Model, keys)
	if err != nil {
		b.logger.Warn("vector cache lookup failed", "err", err)
		return
	}
	for i, key := range keys {
		if v, ok := cached[key]; ok && storage.ValidateVector(v) == nil {
			vectors[i] = v
		}
	}
}

// staleHits re-embeds one cached text and returns the cache hits that the
// current embedder would not produce. If the reference vector disagrees with
// its cached copy every hit is stale; otherwise only hits of a different
// dimension are.
func (b *Batcher) staleHits(ctx context.Context, unique []string, missing []int, vectors [][]float32) ([]int, error) {
	fresh := make(map[int]bool, len(missing))
	for _, i := range missing {
		fresh[i] = true
	}
	var hits []int
	for i := range vectors {
		if !fresh[i] {
			hits = append(hits, i)
		}
	}

	var probe []float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		probe, err = b.embedder.EmbedText(ctx, unique[hits[0]])
		return err
	}, b.config.MaxRetries, b.config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", b.config.MaxRetries, err)
	}
	if err := storage.ValidateVector(probe); err != nil {
		return nil, fmt.Errorf("text %q: %w", unique[hits[0]], err)
	}

	dim := len(probe)
	if !agrees(NormalizeVector(probe), vectors[hits[0]]) {
		return hits, nil
	}
	var stale []int
	for _, i := range hits {
		if len(vectors[i]) != dim {
			stale = append(stale, i)
		}
	}
	return stale, nil
}

func agrees(fresh, cached []float32) bool {
	similarity, err := Dot(fresh, cached)
	if err != nil {
		return false
	}
	return similarity >= cacheAgreement || (isZero(fresh) && isZero(cached))
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// embedMissing embeds the unique texts listed in missing and writes the
// results into vectors. Batches run concurrently; the first failure cancels
// the rest. It returns the number of batches that succeeded.
func (b *Batcher) embedMissing(ctx context.Context, unique, keys []string, missing []int, vectors [][]float32) (int, error) {
	if len(missing) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(missing), b.config.BatchSize)
		tracker.Start()
		defer tracker.Finish()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(missing); start += b.config.BatchSize {
		batch := missing[start:min(start+b.config.BatchSize, len(missing))]

		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			if err := b.embedBatch(ctx, unique, keys, batch, vectors); err != nil {
				fail(err)
				return
			}
			mu.Lock()
			done++
			mu.Unlock()
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	return done, firstErr
}

// embedBatch embeds one batch with retry, normalizes the vectors and stores
// them in vectors and the cache. Batches write disjoint indexes.
func (b *Batcher) embedBatch(ctx context.Context, unique, keys []string, batch []int, vectors [][]float32) error {
	texts := make([]string, len(batch))
	for i, idx := range batch {
		texts[i] = unique[idx]
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.config.MaxRetries, b.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", b.config.MaxRetries, err)
	}
	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(texts), len(embeddings))
	}

	fresh := make(map[string][]float32, len(batch))
	for i, idx := range batch {
		if err := storage.ValidateVector(embeddings[i]); err != nil {
			return fmt.Errorf("text %q: %w", texts[i], err)
		}
		v := NormalizeVector(embeddings[i])
		vectors[idx] = v
		fresh[keys[idx]] = v
	}

	if b.cache != nil {
		if err := b.cache.PutVectors(ctx, b.config.Model, fresh); err != nil {
			b.logger.Warn("vector cache store failed", "err", err, "count", len(fresh))
		}
	}
	return nil
}
