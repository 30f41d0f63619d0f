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


// Package storage provides the persistence abstraction for embedding vectors.
//
// The registry keeps its table and index in memory. The only persisted state
// is a cache of embedding vectors, so restarting a process against the same
// workbook and model does not re-embed every record.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interfaces:
//
//	cache, err := badger.NewVectorCache(backend)  // returns storage.VectorCache
//
// # Serialization
//
// Values are stored in MUS format (github.com/mus-format/mus-go). Each entry
// records the model that produced it; a lookup under a different model name
// misses.
//
// # Thread Safety
//
// All cache implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
