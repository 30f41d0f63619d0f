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
	"errors"
	"fmt"
)

// Load errors. These need an operator fix (file, sheet or model configuration).
var (
	// ErrLoad is matched by every *LoadError.
	ErrLoad = errors.New("registry load failed")

	// ErrDataUnavailable is returned by queries against a registry whose load failed.
	ErrDataUnavailable = errors.New("registry data unavailable")

	// ErrSheetNotFound indicates the workbook has no sheet with the configured name.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptySheet indicates the sheet has no header row.
	ErrEmptySheet = errors.New("sheet has no header row")

	// ErrMissingColumn indicates a kept field has no backing column.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidRow indicates a row does not match the column count.
	ErrInvalidRow = errors.New("invalid row")

	// ErrInvalidSchema indicates an invalid field set or display mapping.
	ErrInvalidSchema = errors.New("invalid schema")
)

// Caller errors. These need a client fix.
var (
	// ErrUnknownField indicates a filter or option names a field outside the schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrEmptyQuery indicates a semantic search with an empty query string.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInvalidQuery is wrapped by other caller-input errors such as an
	// out-of-range threshold or limit.
	ErrInvalidQuery = errors.New("invalid query")
)

// LoadError is the fatal, process-lifetime failure of loading the registry.
type LoadError struct {
	Source string
	Sheet  string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("load %s (sheet %q): %v", e.Source, e.Sheet, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrLoad so callers can test any load failure without errors.As.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// IsCallerError reports whether err was caused by invalid caller input
// rather than by data or configuration problems.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrInvalidQuery)
}
