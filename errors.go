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


package rejestr

import "errors"

var (
	// ErrSemanticDisabled is returned by semantic queries on a registry opened
	// without an embedder.
	ErrSemanticDisabled = errors.New("semantic search is not configured")

	// ErrCacheModelRequired is the load failure of a registry given a cache
	// directory but no embedding model name to key the cache by.
	ErrCacheModelRequired = errors.New("vector cache requires an embedding model name")
)
