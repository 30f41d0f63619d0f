package search

import "github.com/poiesic/rejestr/core"

// Results projects matches onto the display schema of t.
func Results(t *core.Table, matches []Match) *core.ScoredResult {
	out := make([]core.ScoredRecord, len(matches))
	for i, m := range matches {
		out[i] = core.ScoredRecord{Score: m.Score, Record: t.Display(m.Record)}
	}
	return &core.ScoredResult{Count: len(out), Results: out}
}

// FieldResults projects field matches onto the display schema of t. Each
// entry names the matching field by its output key.
func FieldResults(t *core.Table, matches []FieldMatch) *core.ScoredResult {
	out := make([]core.ScoredRecord, len(matches))
	for i, m := range matches {
		out[i] = core.ScoredRecord{
			Score:  m.Score,
			Field:  t.Schema().OutputKey(m.Field),
			Record: t.Display(m.Record),
		}
	}
	return &core.ScoredResult{Count: len(out), Results: out}
}
