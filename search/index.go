package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/rejestr/ai"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/embedding"
)

// DefaultSeparator joins column values into a record's document text.
const DefaultSeparator = " | "

// docVector is the document-level vector of one record.
type docVector struct {
	record int
	vector []float32
}

// fieldVector is the vector of one (record, field) pair.
type fieldVector struct {
	record int
	field  core.Field
	vector []float32
}

// Index holds precomputed unit vectors for the records of one table.
// It is immutable after Build and safe for concurrent use.
type Index struct {
	table    *core.Table
	embedder ai.Embedder
	dim      int
	docs     []docVector
	fields   []fieldVector
	perField bool
	logger   *slog.Logger
}

type indexConfig struct {
	textField *core.Field
	separator string
	perField  bool
	batcher   *embedding.Batcher
	logger    *slog.Logger
}

// Option configures Build.
type Option func(*indexConfig) error

// WithTextField embeds only the given field instead of the whole record.
func WithTextField(f core.Field) Option {
	return func(c *indexConfig) error {
		c.textField = &f
		return nil
	}
}

// WithSeparator sets the string joining column values in document text.
// Default is DefaultSeparator.
func WithSeparator(sep string) Option {
	return func(c *indexConfig) error {
		c.separator = sep
		return nil
	}
}

// WithPerField additionally builds one vector per (record, field) pair for
// RankFields.
func WithPerField(enabled bool) Option {
	return func(c *indexConfig) error {
		c.perField = enabled
		return nil
	}
}

// WithBatcher embeds through b, sharing its cache and pool. The caller keeps
// ownership of b. By default Build creates and releases its own batcher.
func WithBatcher(b *embedding.Batcher) Option {
	return func(c *indexConfig) error {
		c.batcher = b
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *indexConfig) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Build embeds every record of table once and returns the index.
//
// Document text is the designated text field, or every non-null column of
// the record (including columns outside the keep-projection) joined by the
// separator. Records with blank text are left out of the index and can never
// be ranked. All texts go to the embedder through a single batcher call.
func Build(ctx context.Context, table *core.Table, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if table == nil {
		return nil, ErrTableRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	cfg := &indexConfig{
		separator: DefaultSeparator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.textField != nil && !table.Schema().Has(*cfg.textField) {
		return nil, fmt.Errorf("%w: text field %s", core.ErrUnknownField, *cfg.textField)
	}

	batcher := cfg.batcher
	if batcher == nil {
		var err error
		batcher, err = embedding.NewBatcher(embedder, embedding.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
		defer batcher.Release()
	}

	ix := &Index{
		table:    table,
		embedder: embedder,
		perField: cfg.perField,
		logger:   cfg.logger.With("component", "search-index"),
	}

	var texts []string
	for _, r := range table.Records() {
		if text := cfg.documentText(table, r); text != "" {
			ix.docs = append(ix.docs, docVector{record: r.Index()})
			texts = append(texts, text)
		}
	}
	if cfg.perField {
		for _, r := range table.Records() {
			for _, f := range table.Schema().Fields() {
				if text := strings.TrimSpace(table.Value(r, f).Text()); text != "" {
					ix.fields = append(ix.fields, fieldVector{record: r.Index(), field: f})
					texts = append(texts, text)
				}
			}
		}
	}

	vectors, _, err := batcher.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	for i := range ix.docs {
		ix.docs[i].vector = vectors[i]
	}
	for i := range ix.fields {
		ix.fields[i].vector = vectors[len(ix.docs)+i]
	}
	if len(vectors) > 0 {
		ix.dim = len(vectors[0])
	}

	ix.logger.Info("built index",
		"records", len(ix.docs),
		"skipped", table.Len()-len(ix.docs),
		"field_vectors", len(ix.fields),
		"dimension", ix.dim)
	return ix, nil
}

func (c *indexConfig) documentText(t *core.Table, r core.Record) string {
	if c.textField != nil {
		return strings.TrimSpace(t.Value(r, *c.textField).Text())
	}
	parts := make([]string, 0, len(t.Columns()))
	for _, v := range t.Values(r) {
		if text := strings.TrimSpace(v.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, c.separator)
}

// Table returns the indexed table.
func (ix *Index) Table() *core.Table {
	return ix.table
}

// Len returns the number of records with a document vector.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Dimension returns the vector size, or 0 for an empty index.
func (ix *Index) Dimension() int {
	return ix.dim
}

// PerField reports whether RankFields is available.
func (ix *Index) PerField() bool {
	return ix.perField
}
