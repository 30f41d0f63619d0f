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


// Package ai provides the embedding abstraction used for semantic search.
//
// The Embedder interface is the only model dependency of the registry: index
// construction embeds every record once through EmbedTexts, and each semantic
// query embeds the query string once through EmbedText.
//
// # Implementation Packages
//
//   - ai/openai: implementation for OpenAI-compatible embedding APIs
//   - ai/mock: deterministic test doubles
//
// Production constructors (openai.NewEmbedder) return the ai.Embedder
// interface. Test constructors (mock.NewMockEmbedder) return concrete types so
// tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("embeddinggemma"))
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := embedder.EmbedText(ctx, "stonka ziemniaczana")
package ai
