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


package core

import (
	"fmt"
	"slices"
	"strings"
)

// Schema is the keep-projection and display mapping of a table.
// It is immutable once built.
//
// Two kept fields may map to the same display name. Both stay distinct
// fields; on output the later one is keyed as "<display name> (<source name>)"
// so that neither value is dropped.
type Schema struct {
	fields  []Field
	display map[Field]string
	keys    []string
}

// SchemaOption configures a Schema.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	fields  []Field
	display map[Field]string
}

// WithFields restricts the keep-projection to the given fields, in that order.
func WithFields(fields ...Field) SchemaOption {
	return func(c *schemaConfig) {
		c.fields = slices.Clone(fields)
	}
}

// WithDisplayName overrides the external name of a field.
func WithDisplayName(f Field, name string) SchemaOption {
	return func(c *schemaConfig) {
		c.display[f] = name
	}
}

// NewSchema builds a schema from the default keep-projection and display
// mapping with the options applied.
func NewSchema(opts ...SchemaOption) (*Schema, error) {
	cfg := &schemaConfig{
		fields:  AllFields(),
		display: make(map[Field]string, len(fieldDisplayNames)),
	}
	for f, name := range fieldDisplayNames {
		cfg.display[f] = name
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}
	seen := make(map[Field]bool, len(cfg.fields))
	for _, f := range cfg.fields {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidSchema, ErrUnknownField, f)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: field %s listed twice", ErrInvalidSchema, f)
		}
		seen[f] = true
	}
	for f, name := range cfg.display {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidSchema, ErrUnknownField, f)
		}
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty display name for %s", ErrInvalidSchema, f)
		}
	}

	s := &Schema{
		fields:  cfg.fields,
		display: make(map[Field]string, len(cfg.fields)),
		keys:    make([]string, len(cfg.fields)),
	}
	used := make(map[string]bool, len(cfg.fields))
	for i, f := range cfg.fields {
		name := strings.TrimSpace(cfg.display[f])
		s.display[f] = name
		key := name
		if used[key] {
			key = name + " (" + f.SourceName() + ")"
		}
		used[key] = true
		s.keys[i] = key
	}
	return s, nil
}

// DefaultSchema returns the full keep-projection with the default display mapping.
func DefaultSchema() *Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the kept fields in output order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Len returns the number of kept fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Has reports whether f is part of the keep-projection.
func (s *Schema) Has(f Field) bool {
	return slices.Contains(s.fields, f)
}

// DisplayName returns the configured external name of f.
func (s *Schema) DisplayName(f Field) string {
	return s.display[f]
}

// OutputKey returns the collision-free key under which f is emitted.
func (s *Schema) OutputKey(f Field) string {
	i := slices.Index(s.fields, f)
	if i < 0 {
		return ""
	}
	return s.keys[i]
}

// OutputKeys returns the output keys in field order.
func (s *Schema) OutputKeys() []string {
	return slices.Clone(s.keys)
}

// Collisions returns the fields whose display name was already taken by an
// earlier field and were therefore suffixed on output.
func (s *Schema) Collisions() []Field {
	var out []Field
	for i, f := range s.fields {
		if s.keys[i] != s.display[f] {
			out = append(out, f)
		}
	}
	return out
}

// ParseField resolves a caller-supplied name to a kept field. Source names,
// display names and output keys are accepted, ignoring case. When a display
// name is shared, it resolves to the first field carrying it.
func (s *Schema) ParseField(name string) (Field, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		for _, f := range s.fields {
			if strings.EqualFold(f.SourceName(), trimmed) {
				return f, nil
			}
		}
		for i, f := range s.fields {
			if strings.EqualFold(s.keys[i], trimmed) || strings.EqualFold(s.display[f], trimmed) {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}
