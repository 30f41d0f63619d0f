// Package mock provides test doubles for ai.Embedder.
//
// The mocks let tests run without an embedding service and give controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Hash-based unit vectors
//	embedder := mock.NewMockEmbedder()
//
//	// Vectors that count vocabulary terms, for meaningful similarity scores
//	embedder := mock.NewVocabularyEmbedder("ziemniak", "stonka")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("model offline")
//	}
//
//	// Check call counts
//	batches := embedder.BatchCalls()
package mock
