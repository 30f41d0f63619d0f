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
	"errors"
	"fmt"

	"github.com/poiesic/rejestr/core"
)

var (
	// ErrTableRequired is returned when no table is provided.
	ErrTableRequired = errors.New("table required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrPerFieldDisabled is returned by RankFields on an index built without per-field vectors.
	ErrPerFieldDisabled = errors.New("per-field vectors not built")

	// ErrQueryEmbedding is returned when the query cannot be embedded at request time.
	ErrQueryEmbedding = errors.New("query embedding failed")

	// ErrInvalidThreshold is returned for a threshold outside [-1, 1].
	ErrInvalidThreshold = fmt.Errorf("%w: threshold", core.ErrInvalidQuery)

	// ErrInvalidLimit is returned for a limit that is neither positive nor All.
	ErrInvalidLimit = fmt.Errorf("%w: limit", core.ErrInvalidQuery)
)
