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


package dataset

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/rejestr/core"
)

// DefaultSheet is the registry sheet holding crop and pest applications.
const DefaultSheet = "Rejestr_zastosowanie"

var (
	// ErrEmptySheetName is returned by WithSheet for a blank name.
	ErrEmptySheetName = errors.New("sheet name required")

	// ErrNilSchema is returned by WithSchema for a nil schema.
	ErrNilSchema = errors.New("schema required")
)

type loader struct {
	source string
	sheet  string
	schema *core.Schema
	logger *slog.Logger
}

// Option configures a load.
type Option func(*loader) error

// WithSheet selects the sheet to read.
// Default is DefaultSheet.
func WithSheet(name string) Option {
	return func(l *loader) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptySheetName
		}
		l.sheet = name
		return nil
	}
}

// WithSchema sets the keep-projection and display mapping.
// Default is core.DefaultSchema().
func WithSchema(schema *core.Schema) Option {
	return func(l *loader) error {
		if schema == nil {
			return ErrNilSchema
		}
		l.schema = schema
		return nil
	}
}

// WithSourceName sets the name reported in errors and logs for LoadReader.
func WithSourceName(name string) Option {
	return func(l *loader) error {
		if name != "" {
			l.source = name
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

func newLoader(source string, opts ...Option) (*loader, error) {
	l := &loader{
		source: source,
		sheet:  DefaultSheet,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return l, l.fail(err)
		}
	}
	if l.schema == nil {
		l.schema = core.DefaultSchema()
	}
	l.logger = l.logger.With("component", "dataset")
	return l, nil
}

func (l *loader) fail(err error) *core.LoadError {
	return &core.LoadError{Source: l.source, Sheet: l.sheet, Err: err}
}
