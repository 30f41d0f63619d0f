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


// Package search ranks registry records by semantic similarity.
//
// Build embeds every record once and keeps the unit vectors in an immutable
// Index. Rank embeds the query once per call and scores it against every
// stored vector with a dot product, which equals cosine similarity for unit
// vectors. Results below the threshold are dropped, the rest are sorted by
// descending score with ties kept in table order, and the list is capped at
// the limit unless the caller passes All.
//
// With WithPerField the index also holds one vector per (record, field) pair,
// and RankFields reports each record under its best matching field.
package search
