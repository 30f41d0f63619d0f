package core

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ContentKey returns a deterministic hex key for the given parts using
// BLAKE2b, so identical content always maps to the same key.
func ContentKey(parts ...string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Record is one row of a Table. Values are aligned with Table.Columns and are
// never mutated after the table is built.
type Record struct {
	index  int
	values []Value
}

// Index returns the position of the record in its source table.
func (r Record) Index() int {
	return r.index
}

// Table is the normalized, immutable, in-memory registry.
type Table struct {
	schema   *Schema
	columns  []string
	colIndex map[string]int
	fieldCol map[Field]int
	records  []Record
}

// NewTable validates and builds a table. Columns must be unique, every kept
// field must have a column carrying its source name, and every row must have
// exactly one value per column. Rows are copied.
func NewTable(schema *Schema, columns []string, rows [][]Value) (*Table, error) {
	if schema == nil {
		schema = DefaultSchema()
	}
	if err := ValidateColumns(schema, columns); err != nil {
		return nil, err
	}

	t := &Table{
		schema:   schema,
		columns:  slices.Clone(columns),
		colIndex: make(map[string]int, len(columns)),
		fieldCol: make(map[Field]int, schema.Len()),
		records:  make([]Record, len(rows)),
	}
	for i, name := range columns {
		t.colIndex[name] = i
	}
	for _, f := range schema.fields {
		t.fieldCol[f] = t.colIndex[f.SourceName()]
	}
	for i, row := range rows {
		if err := ValidateRow(row, len(columns)); err != nil {
			return nil, err
		}
		t.records[i] = Record{index: i, values: slices.Clone(row)}
	}
	return t, nil
}

// Schema returns the table's keep-projection and display mapping.
func (t *Table) Schema() *Schema {
	return t.schema
}

// Columns returns every resolved column, including ones outside the keep-projection.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns all records in source order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Record returns the record at index i.
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// Value returns the value of a kept field. Fields outside the schema are null.
func (t *Table) Value(r Record, f Field) Value {
	col, ok := t.fieldCol[f]
	if !ok {
		return NullValue()
	}
	return r.values[col]
}

// Column returns the value of any resolved column by name.
func (t *Table) Column(r Record, name string) (Value, bool) {
	col, ok := t.colIndex[name]
	if !ok {
		return NullValue(), false
	}
	return r.values[col], true
}

// Values returns the record's values aligned with Columns.
func (t *Table) Values(r Record) []Value {
	return slices.Clone(r.values)
}

// Display projects a record onto the schema's output keys.
func (t *Table) Display(r Record) DisplayRecord {
	d := DisplayRecord{
		keys:   t.schema.OutputKeys(),
		values: make([]Value, len(t.schema.fields)),
	}
	for i, f := range t.schema.fields {
		d.values[i] = t.Value(r, f)
	}
	return d
}

// DisplayRecord is an API-facing record: display keys in schema order.
type DisplayRecord struct {
	keys   []string
	values []Value
}

// Keys returns the output keys in order.
func (d DisplayRecord) Keys() []string {
	return slices.Clone(d.keys)
}

// Get returns the value under key.
func (d DisplayRecord) Get(key string) (Value, bool) {
	i := slices.Index(d.keys, key)
	if i < 0 {
		return NullValue(), false
	}
	return d.values[i], true
}

// Map returns the record as a plain map of JSON scalars.
func (d DisplayRecord) Map() map[string]any {
	m := make(map[string]any, len(d.keys))
	for i, k := range d.keys {
		m[k] = d.values[i].Interface()
	}
	return m
}

// MarshalJSON emits the keys in schema order.
func (d DisplayRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := d.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the output of a filter call.
type Result struct {
	Count   int             `json:"count"`
	Results []DisplayRecord `json:"results"`
}

// NewResult projects records of t into a Result.
func NewResult(t *Table, records []Record) *Result {
	out := make([]DisplayRecord, len(records))
	for i, r := range records {
		out[i] = t.Display(r)
	}
	return &Result{Count: len(out), Results: out}
}

// ScoredRecord is one ranked record. Field is set for per-field matches.
type ScoredRecord struct {
	Score  float32       `json:"score"`
	Field  string        `json:"field,omitempty"`
	Record DisplayRecord `json:"record"`
}

// ScoredResult is the output of a semantic search call.
type ScoredResult struct {
	Count   int            `json:"count"`
	Results []ScoredRecord `json:"results"`
}
