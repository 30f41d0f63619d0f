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


package search

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/embedding"
	"github.com/poiesic/rejestr/storage"
)

// Match is a record ranked by document similarity.
type Match struct {
	Record core.Record
	Score  float32
}

// FieldMatch is a record ranked by its best matching field.
type FieldMatch struct {
	Field  core.Field
	Record core.Record
	Score  float32
}

// Rank returns the records whose similarity to query is at least threshold,
// highest first, ties in table order, capped at limit. The query is embedded
// exactly once; stored vectors are never recomputed.
func (ix *Index) Rank(ctx context.Context, query string, threshold float32, limit Limit) ([]Match, error) {
	return ix.RankWithMonitor(ctx, query, threshold, limit, nil)
}

// RankWithMonitor is Rank with stage callbacks.
func (ix *Index) RankWithMonitor(ctx context.Context, query string, threshold float32, limit Limit, monitor RankMonitor) ([]Match, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := validateRequest(query, threshold, limit); err != nil {
		return nil, err
	}
	monitor.Start(query, threshold, limit)

	matches := make([]Match, 0)
	if len(ix.docs) == 0 {
		monitor.Finish(0)
		return matches, nil
	}

	q, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(q))

	for _, doc := range ix.docs {
		score, err := embedding.Dot(q, doc.vector)
		if err != nil {
			return nil, err
		}
		if score >= threshold {
			matches = append(matches, Match{Record: ix.table.Record(doc.record), Score: score})
		}
	}
	monitor.AfterScoring(len(ix.docs), len(matches))

	slices.SortStableFunc(matches, func(a, b Match) int {
		return compareScores(a.Score, b.Score)
	})
	matches = matches[:limit.apply(len(matches))]

	monitor.Finish(len(matches))
	return matches, nil
}

// RankFields ranks records by their best single field. Each record appears at
// most once, under the field with the highest score; ties go to the field
// earlier in the schema. Threshold, ordering and limit follow Rank.
func (ix *Index) RankFields(ctx context.Context, query string, threshold float32, limit Limit) ([]FieldMatch, error) {
	if !ix.perField {
		return nil, ErrPerFieldDisabled
	}
	if err := validateRequest(query, threshold, limit); err != nil {
		return nil, err
	}

	matches := make([]FieldMatch, 0)
	if len(ix.fields) == 0 {
		return matches, nil
	}

	q, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// Field vectors are grouped by record in table order.
	best := make(map[int]int)
	for _, fv := range ix.fields {
		score, err := embedding.Dot(q, fv.vector)
		if err != nil {
			return nil, err
		}
		if i, ok := best[fv.record]; ok {
			if score > matches[i].Score {
				matches[i].Field = fv.field
				matches[i].Score = score
			}
			continue
		}
		best[fv.record] = len(matches)
		matches = append(matches, FieldMatch{Field: fv.field, Record: ix.table.Record(fv.record), Score: score})
	}

	matches = slices.DeleteFunc(matches, func(m FieldMatch) bool {
		return m.Score < threshold
	})
	slices.SortStableFunc(matches, func(a, b FieldMatch) int {
		return compareScores(a.Score, b.Score)
	})
	return matches[:limit.apply(len(matches))], nil
}

func validateRequest(query string, threshold float32, limit Limit) error {
	if strings.TrimSpace(query) == "" {
		return core.ErrEmptyQuery
	}
	if math.IsNaN(float64(threshold)) || threshold < -1 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return limit.Validate()
}

// embedQuery embeds and normalizes the query. Failures are request-time
// errors and never fall back to substring matching.
func (ix *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	v, err := ix.embedder.EmbedText(ctx, query)
	if err != nil {
		ix.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	if err := storage.ValidateVector(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	if len(v) != ix.dim {
		return nil, fmt.Errorf("%w: %w: query has %d dimensions, index has %d",
			ErrQueryEmbedding, embedding.ErrDimensionMismatch, len(v), ix.dim)
	}
	return embedding.NormalizeVector(v), nil
}

// compareScores orders scores descending.
func compareScores(a, b float32) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
