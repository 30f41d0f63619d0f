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
	"github.com/poiesic/rejestr/core"
	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves rows to a new workbook at path with a single sheet.
// The first row is written as the header. Intended for tests and fixtures.
func WriteWorkbook(path, sheet string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// Header returns the workbook header carrying every kept field, in
// keep-projection order.
func Header() []any {
	fields := core.AllFields()
	header := make([]any, len(fields))
	for i, f := range fields {
		header[i] = f.SourceName()
	}
	return header
}
