package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/rejestr/core"
	"github.com/xuri/excelize/v2"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"

	// Largest float64 magnitude that still holds every integer exactly.
	maxExactInt = 1 << 53
)

// cellReader turns raw cell text into typed values using the cell's type and
// number format. Style lookups are memoized per style index.
type cellReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	isDate   map[int]bool
}

func newCellReader(f *excelize.File, sheet string) (*cellReader, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	c := &cellReader{
		f:      f,
		sheet:  sheet,
		isDate: make(map[int]bool),
	}
	if props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c, nil
}

// value coerces the raw text of the cell at (col, row), both 1-based.
func (c *cellReader) value(raw string, col, row int) (core.Value, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return core.NullValue(), err
	}
	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return core.NullValue(), err
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return core.StringValue(raw), nil
	case excelize.CellTypeError:
		return core.NullValue(), nil
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return core.StringValue(raw), nil
		}
		return core.BoolValue(b), nil
	case excelize.CellTypeDate:
		if t, ok := parseISO(raw); ok {
			return core.StringValue(formatTime(t)), nil
		}
		return core.StringValue(raw), nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return core.StringValue(raw), nil
	}
	dated, err := c.dateFormatted(cell)
	if err != nil {
		return core.NullValue(), err
	}
	if dated {
		t, err := excelize.ExcelDateToTime(n, c.date1904)
		if err != nil {
			return core.NullValue(), err
		}
		return core.StringValue(formatTime(t)), nil
	}
	return numberValue(n), nil
}

func (c *cellReader) dateFormatted(cell string) (bool, error) {
	idx, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil {
		return false, err
	}
	if dated, ok := c.isDate[idx]; ok {
		return dated, nil
	}

	style, err := c.f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	dated := isBuiltinDateFormat(style.NumFmt)
	if style.CustomNumFmt != nil {
		dated = isDateFormatCode(*style.CustomNumFmt)
	}
	c.isDate[idx] = dated
	return dated, nil
}

func numberValue(n float64) core.Value {
	if n == math.Trunc(n) && math.Abs(n) < maxExactInt {
		return core.IntValue(int64(n))
	}
	return core.FloatValue(n)
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

func parseISO(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, dateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isBuiltinDateFormat reports whether a built-in number format id renders a
// date or time.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58,
		id >= 71 && id <= 81:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code uses date or time
// tokens outside of quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	var (
		quoted  bool
		bracket bool
		escaped bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case r == 'y', r == 'd', r == 'h':
			return true
		}
	}
	return false
}
