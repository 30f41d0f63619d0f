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
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/rejestr/core"
	"github.com/xuri/excelize/v2"
)

// Load reads the registry sheet from the workbook at path.
func Load(path string, opts ...Option) (*core.Table, error) {
	l, err := newLoader(path, opts...)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, l.fail(err)
	}
	defer f.Close()

	return l.read(f)
}

// LoadReader reads the registry sheet from a workbook stream.
// Use WithSourceName to label the stream in errors.
func LoadReader(r io.Reader, opts ...Option) (*core.Table, error) {
	l, err := newLoader("<reader>", opts...)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, l.fail(err)
	}
	defer f.Close()

	return l.read(f)
}

func (l *loader) read(f *excelize.File) (*core.Table, error) {
	if !slices.Contains(f.GetSheetList(), l.sheet) {
		return nil, l.fail(fmt.Errorf("%w: %q", core.ErrSheetNotFound, l.sheet))
	}

	cells, err := newCellReader(f, l.sheet)
	if err != nil {
		return nil, l.fail(err)
	}

	rows, err := f.Rows(l.sheet)
	if err != nil {
		return nil, l.fail(err)
	}
	defer rows.Close()

	var (
		columns []string
		keep    []int // workbook column index for each entry in columns
		data    [][]core.Value
		rowNum  int
	)
	for rows.Next() {
		rowNum++
		raw, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, l.fail(fmt.Errorf("row %d: %w", rowNum, err))
		}
		if isBlank(raw) {
			continue
		}

		if columns == nil {
			columns, keep = l.resolveHeader(raw)
			continue
		}

		values := make([]core.Value, len(keep))
		for i, col := range keep {
			if col >= len(raw) || raw[col] == "" {
				values[i] = core.NullValue()
				continue
			}
			v, err := cells.value(raw[col], col+1, rowNum)
			if err != nil {
				return nil, l.fail(fmt.Errorf("row %d column %q: %w", rowNum, columns[i], err))
			}
			values[i] = v
		}
		data = append(data, values)
	}
	if err := rows.Error(); err != nil {
		return nil, l.fail(err)
	}
	if columns == nil {
		return nil, l.fail(core.ErrEmptySheet)
	}

	table, err := core.NewTable(l.schema, columns, data)
	if err != nil {
		return nil, l.fail(err)
	}

	l.logger.Info("loaded registry sheet",
		"source", l.source,
		"sheet", l.sheet,
		"rows", table.Len(),
		"columns", columns)
	return table, nil
}

// resolveHeader names every header cell and drops repeats, keeping the first.
// It returns the surviving names and their workbook column indexes.
func (l *loader) resolveHeader(raw []string) ([]string, []int) {
	names := make([]string, 0, len(raw))
	keep := make([]int, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for i, cell := range raw {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if first, ok := seen[name]; ok {
			l.logger.Warn("dropping duplicate column",
				"column", name,
				"position", i,
				"kept_position", first)
			continue
		}
		seen[name] = i
		names = append(names, name)
		keep = append(keep, i)
	}
	return names, keep
}

func isBlank(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
