// Package dataset loads the pesticide registry workbook into a core.Table.
//
// The loader reads one sheet of an .xlsx workbook, treats the first
// non-empty row as the header and coerces every cell into a core.Value:
//   - shared and inline strings stay strings
//   - numbers become integers when integral, floats otherwise
//   - numbers with a date or time number format become ISO 8601 strings
//   - error cells and blank cells become null
//
// Header names are trimmed. Blank headers are named "Unnamed: <index>" and
// repeated headers are dropped, keeping the first occurrence. Every failure is
// reported as a *core.LoadError.
package dataset
