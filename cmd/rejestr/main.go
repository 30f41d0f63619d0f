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


package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/rejestr"
	"github.com/poiesic/rejestr/ai"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/dataset"
	"github.com/poiesic/rejestr/search"
	"github.com/urfave/cli/v2"
)

const defaultSource = "Rejestr_zastosowanie.xlsx"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rejestr",
		Usage: "Query the plant protection product registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Path to the registry workbook",
				Value:   defaultSource,
				EnvVars: []string{"REJESTR_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "sheet",
				Usage:   "Worksheet holding the registry",
				Value:   dataset.DefaultSheet,
				EnvVars: []string{"REJESTR_SHEET"},
			},
			&cli.StringSliceFlag{
				Name:  "display",
				Usage: "Override a display name (field=name), repeatable",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Report whether the registry loaded",
				Action: statusCommand,
			},
			{
				Name:   "filter",
				Usage:  "List records whose fields contain every given value",
				Action: filterCommand,
				Flags:  filterFlags(),
			},
			{
				Name:      "search",
				Usage:     "Rank records by semantic similarity to QUERY",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(embeddingFlags(),
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum cosine similarity in [-1, 1]",
						Value: float64(search.DefaultThreshold),
					},
					&cli.StringFlag{
						Name:  "limit",
						Usage: "Maximum number of results, or \"all\"",
						Value: search.DefaultLimit.String(),
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Return every record meeting the threshold",
					},
					&cli.BoolFlag{
						Name:  "per-field",
						Usage: "Rank each record by its best matching field",
					},
					&cli.StringFlag{
						Name:  "text-field",
						Usage: "Embed only this field instead of the whole record",
					},
				),
			},
			{
				Name:   "warm-cache",
				Usage:  "Embed every record into the vector cache",
				Action: warmCacheCommand,
				Flags: append(embeddingFlags(),
					&cli.BoolFlag{
						Name:  "per-field",
						Usage: "Also embed individual field values",
					},
				),
			},
		},
	}
}

func embeddingFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   defaults.EmbeddingHost,
			EnvVars: []string{"REJESTR_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: []string{"REJESTR_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:  "embedding-token",
			Usage: "API token for the embedding service",
			Value: defaults.APIToken,
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "BadgerDB directory for cached vectors",
			EnvVars: []string{"REJESTR_CACHE_DIR"},
		},
	}
}

func filterFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(core.AllFields())+1)
	for _, f := range core.AllFields() {
		flags = append(flags, &cli.StringFlag{
			Name:  fieldFlagName(f),
			Usage: fmt.Sprintf("Substring of %s", f.DefaultDisplayName()),
		})
	}
	return append(flags, &cli.StringSliceFlag{
		Name:  "field",
		Usage: "Filter by any field name (key=value), repeatable",
	})
}

func fieldFlagName(f core.Field) string {
	return strings.ToLower(f.SourceName())
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// parseSchema applies --display overrides to the default schema.
func parseSchema(c *cli.Context) (*core.Schema, error) {
	overrides := c.StringSlice("display")
	if len(overrides) == 0 {
		return core.DefaultSchema(), nil
	}
	opts := make([]core.SchemaOption, 0, len(overrides))
	for _, o := range overrides {
		key, name, err := splitPair(o)
		if err != nil {
			return nil, fmt.Errorf("--display: %w", err)
		}
		f, ok := core.FieldBySourceName(key)
		if !ok {
			return nil, fmt.Errorf("--display: %w: %q", core.ErrUnknownField, key)
		}
		opts = append(opts, core.WithDisplayName(f, name))
	}
	return core.NewSchema(opts...)
}

func splitPair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return key, value, nil
}

func registryOptions(c *cli.Context) ([]rejestr.Option, *core.Schema, error) {
	schema, err := parseSchema(c)
	if err != nil {
		return nil, nil, err
	}
	return []rejestr.Option{
		rejestr.WithSheet(c.String("sheet")),
		rejestr.WithSchema(schema),
	}, schema, nil
}

func semanticOptions(c *cli.Context) []rejestr.Option {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("embedding-token")),
	)
	opts := []rejestr.Option{rejestr.WithAIConfig(config)}
	if dir := c.String("cache-dir"); dir != "" {
		opts = append(opts, rejestr.WithCacheDir(dir))
	}
	return opts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusCommand(c *cli.Context) error {
	opts, _, err := registryOptions(c)
	if err != nil {
		return err
	}
	r := rejestr.Open(c.Context, c.String("source"), opts...)
	defer r.Close()
	return writeJSON(c.App.Writer, r.Status())
}

func filterCommand(c *cli.Context) error {
	opts, schema, err := registryOptions(c)
	if err != nil {
		return err
	}

	criteria := make(map[string]string)
	given := make(map[string]string)
	add := func(key, value string) error {
		canonical := key
		if f, err := schema.ParseField(key); err == nil {
			canonical = f.SourceName()
		}
		if prev, ok := given[canonical]; ok {
			return fmt.Errorf("%w: field %q given more than once (%q, %q)",
				core.ErrInvalidQuery, canonical, prev, key)
		}
		given[canonical] = key
		criteria[key] = value
		return nil
	}

	for _, f := range core.AllFields() {
		if name := fieldFlagName(f); c.IsSet(name) {
			if err := add(f.SourceName(), c.String(name)); err != nil {
				return err
			}
		}
	}
	for _, pair := range c.StringSlice("field") {
		key, value, err := splitPair(pair)
		if err != nil {
			return fmt.Errorf("--field: %w", err)
		}
		if err := add(key, value); err != nil {
			return fmt.Errorf("--field: %w", err)
		}
	}

	r := rejestr.Open(c.Context, c.String("source"), opts...)
	defer r.Close()

	result, err := r.Filter(criteria)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result)
}

type searchRequest struct {
	query     string
	threshold float32
	limit     search.Limit
	perField  bool
	textField string
}

func parseSearchRequest(c *cli.Context) (*searchRequest, error) {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}
	limit := search.All
	if !c.Bool("all") {
		var err error
		limit, err = search.ParseLimit(c.String("limit"))
		if err != nil {
			return nil, err
		}
	}
	threshold := c.Float64("threshold")
	if threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("%w: %v", search.ErrInvalidThreshold, threshold)
	}
	return &searchRequest{
		query:     query,
		threshold: float32(threshold),
		limit:     limit,
		perField:  c.Bool("per-field"),
		textField: c.String("text-field"),
	}, nil
}

func searchCommand(c *cli.Context) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return err
	}

	opts, schema, err := registryOptions(c)
	if err != nil {
		return err
	}
	var indexOpts []search.Option
	if req.textField != "" {
		f, err := schema.ParseField(req.textField)
		if err != nil {
			return err
		}
		indexOpts = append(indexOpts, search.WithTextField(f))
	}
	if req.perField {
		indexOpts = append(indexOpts, search.WithPerField(true))
	}
	opts = append(opts, semanticOptions(c)...)
	opts = append(opts, rejestr.WithIndexOptions(indexOpts...))

	r := rejestr.Open(c.Context, c.String("source"), opts...)
	defer r.Close()

	var result *core.ScoredResult
	if req.perField {
		result, err = r.SearchFields(c.Context, req.query, req.threshold, req.limit)
	} else {
		result, err = r.Search(c.Context, req.query, req.threshold, req.limit)
	}
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result)
}

func warmCacheCommand(c *cli.Context) error {
	if c.String("cache-dir") == "" {
		return errors.New("--cache-dir is required")
	}
	opts, _, err := registryOptions(c)
	if err != nil {
		return err
	}
	opts = append(opts, semanticOptions(c)...)
	opts = append(opts, rejestr.WithProgress(c.App.ErrWriter))
	if c.Bool("per-field") {
		opts = append(opts, rejestr.WithIndexOptions(search.WithPerField(true)))
	}

	r := rejestr.Open(c.Context, c.String("source"), opts...)
	defer r.Close()
	if err := r.Err(); err != nil {
		return err
	}
	return writeJSON(c.App.Writer, r.Status())
}
