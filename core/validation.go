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
	"strings"
)

// ValidateColumns validates a resolved header against a schema.
//
// Validation rules:
//   - Column names must not be empty
//   - Column names must be unique
//   - Every kept field must have a column named by its source name
//
// NOT validated:
//   - Extra columns (kept for embedding text, never exposed)
func ValidateColumns(schema *Schema, columns []string) error {
	seen := make(map[string]bool, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrInvalidSchema, i)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
	}

	var missing []string
	for _, f := range schema.fields {
		if !seen[f.SourceName()] {
			missing = append(missing, f.SourceName())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateRow checks that a row has exactly one value per column.
func ValidateRow(row []Value, width int) error {
	if len(row) != width {
		return fmt.Errorf("%w: %d values for %d columns", ErrInvalidRow, len(row), width)
	}
	return nil
}
