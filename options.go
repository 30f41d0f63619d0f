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


package rejestr

import (
	"io"
	"log/slog"

	"github.com/poiesic/rejestr/ai"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/embedding"
	"github.com/poiesic/rejestr/search"
)

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	sheet           string
	schema          *core.Schema
	embedder        ai.Embedder
	aiConfig        *ai.Config
	cacheDir        string
	indexOpts       []search.Option
	embeddingConfig *embedding.Config
	progress        io.Writer
	logger          *slog.Logger
}

// WithSheet selects the worksheet to load.
func WithSheet(name string) Option {
	return func(o *registryOptions) {
		o.sheet = name
	}
}

// WithSchema sets the keep-projection and display mapping.
func WithSchema(schema *core.Schema) Option {
	return func(o *registryOptions) {
		o.schema = schema
	}
}

// WithEmbedder enables semantic search with the given embedder.
// It takes precedence over WithAIConfig.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *registryOptions) {
		o.embedder = embedder
	}
}

// WithAIConfig enables semantic search against an OpenAI-compatible
// embedding endpoint.
func WithAIConfig(config *ai.Config) Option {
	return func(o *registryOptions) {
		o.aiConfig = config
	}
}

// WithCacheDir persists document vectors in a BadgerDB directory so that
// restarts only embed new or changed texts. Cache entries are keyed by model
// name, so the model must be named through WithAIConfig or
// WithEmbeddingConfig.
func WithCacheDir(dir string) Option {
	return func(o *registryOptions) {
		o.cacheDir = dir
	}
}

// WithIndexOptions passes options through to search.Build.
func WithIndexOptions(opts ...search.Option) Option {
	return func(o *registryOptions) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// WithEmbeddingConfig overrides batch size, retries and pool size for the
// index build.
func WithEmbeddingConfig(cfg embedding.Config) Option {
	return func(o *registryOptions) {
		o.embeddingConfig = &cfg
	}
}

// WithProgress reports index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *registryOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *registryOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

func newOptions(opts ...Option) *registryOptions {
	o := &registryOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// modelName returns the configured embedding model name, or "" when only an
// anonymous embedder was given.
func (o *registryOptions) modelName() string {
	switch {
	case o.embeddingConfig != nil && o.embeddingConfig.Model != "":
		return o.embeddingConfig.Model
	case o.aiConfig != nil && o.aiConfig.EmbeddingModel != "":
		return o.aiConfig.EmbeddingModel
	}
	return ""
}

func (o *registryOptions) model() string {
	if name := o.modelName(); name != "" {
		return name
	}
	return "default"
}
