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


// Package rejestr serves the pesticide registry: a workbook loaded once into
// an immutable table, queried by substring filters and, when an embedder is
// configured, ranked by semantic similarity.
package rejestr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/rejestr/ai"
	"github.com/poiesic/rejestr/ai/openai"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/dataset"
	"github.com/poiesic/rejestr/embedding"
	"github.com/poiesic/rejestr/filter"
	"github.com/poiesic/rejestr/search"
	"github.com/poiesic/rejestr/storage"
	"github.com/poiesic/rejestr/storage/badger"
)

const (
	readyMessage       = "Rejestr wczytany: %d rekordów"
	unavailableMessage = "Brak danych Excel. Sprawdź logi."
)

// Registry is the application context shared by every request. It is built
// once and never mutated, so it is safe for concurrent use.
type Registry struct {
	source string
	table  *core.Table
	index  *search.Index
	cache  storage.VectorCache
	err    error
	logger *slog.Logger
}

// Status reports whether the registry can answer queries.
type Status struct {
	Available bool   `json:"available"`
	Rows      int    `json:"rows"`
	Semantic  bool   `json:"semantic"`
	Message   string `json:"message"`
}

// Open loads the registry workbook at source and, when an embedder is
// configured, builds the semantic index. Open never fails: a load error
// leaves the registry unavailable and is reported by Err and by every query.
func Open(ctx context.Context, source string, opts ...Option) *Registry {
	o := newOptions(opts...)
	logger := o.logger.With("component", "registry")

	var loadOpts []dataset.Option
	if o.sheet != "" {
		loadOpts = append(loadOpts, dataset.WithSheet(o.sheet))
	}
	if o.schema != nil {
		loadOpts = append(loadOpts, dataset.WithSchema(o.schema))
	}
	loadOpts = append(loadOpts, dataset.WithLogger(o.logger))

	table, err := dataset.Load(source, loadOpts...)
	if err != nil {
		logger.Error("registry data unavailable", "source", source, "err", err)
		return &Registry{source: source, err: err, logger: logger}
	}
	return build(ctx, source, table, o, logger)
}

// FromTable wraps an already loaded table.
func FromTable(ctx context.Context, table *core.Table, opts ...Option) *Registry {
	o := newOptions(opts...)
	logger := o.logger.With("component", "registry")
	const source = "<table>"

	if table == nil {
		err := &core.LoadError{Source: source, Err: search.ErrTableRequired}
		logger.Error("registry data unavailable", "err", err)
		return &Registry{source: source, err: err, logger: logger}
	}
	return build(ctx, source, table, o, logger)
}

func build(ctx context.Context, source string, table *core.Table, o *registryOptions, logger *slog.Logger) *Registry {
	r := &Registry{source: source, table: table, logger: logger}

	embedder, err := o.resolveEmbedder()
	if err != nil {
		return r.unavailable(o, err)
	}
	if embedder == nil {
		logger.Info("semantic search disabled", "rows", table.Len())
		return r
	}

	if o.cacheDir != "" {
		if o.modelName() == "" {
			return r.unavailable(o, ErrCacheModelRequired)
		}
		cache, err := badger.OpenVectorCache(o.cacheDir)
		if err != nil {
			logger.Warn("vector cache unavailable, embedding without it", "dir", o.cacheDir, "err", err)
		} else {
			r.cache = cache
		}
	}

	cfg := embedding.DefaultConfig(o.model())
	if o.embeddingConfig != nil {
		cfg = *o.embeddingConfig
		cfg.Model = o.model()
	}
	batcherOpts := []embedding.Option{
		embedding.WithConfig(cfg),
		embedding.WithLogger(o.logger),
	}
	if r.cache != nil {
		batcherOpts = append(batcherOpts, embedding.WithCache(r.cache))
	}
	if o.progress != nil {
		batcherOpts = append(batcherOpts, embedding.WithProgress(o.progress))
	}
	batcher, err := embedding.NewBatcher(embedder, batcherOpts...)
	if err != nil {
		return r.unavailable(o, err)
	}
	defer batcher.Release()

	indexOpts := append([]search.Option{search.WithLogger(o.logger)}, o.indexOpts...)
	indexOpts = append(indexOpts, search.WithBatcher(batcher))
	index, err := search.Build(ctx, table, embedder, indexOpts...)
	if err != nil {
		return r.unavailable(o, err)
	}
	r.index = index
	return r
}

func (o *registryOptions) resolveEmbedder() (ai.Embedder, error) {
	if o.embedder != nil {
		return o.embedder, nil
	}
	if o.aiConfig == nil {
		return nil, nil
	}
	return openai.NewEmbedder(o.aiConfig, openai.WithLogger(o.logger))
}

// unavailable drops the table and records err as the load failure. The
// semantic index is part of loading, so a model that cannot build it makes
// the whole registry unavailable.
func (r *Registry) unavailable(o *registryOptions, err error) *Registry {
	var loadErr *core.LoadError
	if !errors.As(err, &loadErr) {
		sheet := o.sheet
		if sheet == "" {
			sheet = dataset.DefaultSheet
		}
		loadErr = &core.LoadError{Source: r.source, Sheet: sheet, Err: err}
	}
	r.logger.Error("registry data unavailable", "source", r.source, "err", loadErr)
	r.closeCache()
	r.table = nil
	r.err = loadErr
	return r
}

// Err returns the load failure, or nil when the registry is available.
func (r *Registry) Err() error {
	return r.err
}

// Available reports whether the registry loaded.
func (r *Registry) Available() bool {
	return r.err == nil
}

// Table returns the loaded table, or nil when the registry is unavailable.
func (r *Registry) Table() *core.Table {
	return r.table
}

// Index returns the semantic index, or nil when semantic search is disabled.
func (r *Registry) Index() *search.Index {
	return r.index
}

func (r *Registry) check() error {
	if r.err != nil {
		return fmt.Errorf("%w: %w", core.ErrDataUnavailable, r.err)
	}
	return nil
}

// Filter returns the records whose fields contain every criterion value.
func (r *Registry) Filter(criteria map[string]string) (*core.Result, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return filter.Records(r.table, criteria)
}

// Search ranks records by similarity to query.
func (r *Registry) Search(ctx context.Context, query string, threshold float32, limit search.Limit) (*core.ScoredResult, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	if r.index == nil {
		return nil, ErrSemanticDisabled
	}
	matches, err := r.index.RankWithMonitor(ctx, query, threshold, limit, &search.LogMonitor{Logger: r.logger})
	if err != nil {
		return nil, err
	}
	return search.Results(r.table, matches), nil
}

// SearchFields ranks records by their best matching field.
func (r *Registry) SearchFields(ctx context.Context, query string, threshold float32, limit search.Limit) (*core.ScoredResult, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	if r.index == nil {
		return nil, ErrSemanticDisabled
	}
	matches, err := r.index.RankFields(ctx, query, threshold, limit)
	if err != nil {
		return nil, err
	}
	return search.FieldResults(r.table, matches), nil
}

// Status describes the registry state.
func (r *Registry) Status() Status {
	if r.err != nil {
		return Status{Message: unavailableMessage}
	}
	return Status{
		Available: true,
		Rows:      r.table.Len(),
		Semantic:  r.index != nil,
		Message:   fmt.Sprintf(readyMessage, r.table.Len()),
	}
}

// Close releases the vector cache. It is safe to call more than once.
func (r *Registry) Close() error {
	return r.closeCache()
}

func (r *Registry) closeCache() error {
	if r.cache == nil {
		return nil
	}
	err := r.cache.Close()
	r.cache = nil
	if err != nil {
		r.logger.Error("error closing vector cache", "err", err)
		return err
	}
	return nil
}
