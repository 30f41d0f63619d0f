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


package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/poiesic/rejestr/core"
)

// Criterion is a case-insensitive substring constraint on one field.
type Criterion struct {
	Field core.Field
	Term  string

	needle string
}

// NewCriterion builds a criterion for field f.
func NewCriterion(f core.Field, term string) Criterion {
	return Criterion{Field: f, Term: term, needle: strings.ToLower(term)}
}

// Matches reports whether record r of table t satisfies the criterion.
func (c Criterion) Matches(t *core.Table, r core.Record) bool {
	if c.needle == "" {
		return true
	}
	v := t.Value(r, c.Field)
	if v.IsNull() {
		return false
	}
	return strings.Contains(strings.ToLower(v.Text()), c.needle)
}

// Description returns a human readable form of the criterion.
func (c Criterion) Description() string {
	return fmt.Sprintf("%s contains %q", c.Field.SourceName(), c.Term)
}

// Filter is the AND of its criteria. A Filter with no criteria passes every record.
type Filter struct {
	Criteria []Criterion
}

// Parse resolves caller-supplied field names against schema and builds a
// Filter. Keys may be source names, display names or output keys, compared
// without regard to case. Every key is validated, including those with empty
// terms; the first unknown key in sorted order is reported as
// core.ErrUnknownField. Two keys resolving to the same field are kept as
// independent criteria.
func Parse(schema *core.Schema, criteria map[string]string) (*Filter, error) {
	f := &Filter{}
	for _, key := range slices.Sorted(maps.Keys(criteria)) {
		field, err := schema.ParseField(key)
		if err != nil {
			return nil, err
		}
		term := criteria[key]
		if term == "" {
			continue
		}
		f.Criteria = append(f.Criteria, NewCriterion(field, term))
	}
	return f, nil
}

// Matches reports whether r passes every criterion.
func (f *Filter) Matches(t *core.Table, r core.Record) bool {
	for _, c := range f.Criteria {
		if !c.Matches(t, r) {
			return false
		}
	}
	return true
}

// Apply returns the records of t passing the filter, in table order.
func (f *Filter) Apply(t *core.Table) []core.Record {
	out := make([]core.Record, 0)
	for _, r := range t.Records() {
		if f.Matches(t, r) {
			out = append(out, r)
		}
	}
	return out
}

// Description joins the criteria descriptions with AND.
func (f *Filter) Description() string {
	if len(f.Criteria) == 0 {
		return "empty filter"
	}
	descriptions := make([]string, len(f.Criteria))
	for i, c := range f.Criteria {
		descriptions[i] = c.Description()
	}
	return "(" + strings.Join(descriptions, " AND ") + ")"
}

// Match parses criteria against the table's schema and returns matching records.
func Match(t *core.Table, criteria map[string]string) ([]core.Record, error) {
	f, err := Parse(t.Schema(), criteria)
	if err != nil {
		return nil, err
	}
	return f.Apply(t), nil
}

// Records filters t and projects the matches onto the display schema.
func Records(t *core.Table, criteria map[string]string) (*core.Result, error) {
	records, err := Match(t, criteria)
	if err != nil {
		return nil, err
	}
	return core.NewResult(t, records), nil
}
