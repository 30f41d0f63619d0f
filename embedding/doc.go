// Package embedding turns record texts into unit-length vectors.
//
// A Batcher deduplicates its input, looks every text up in an optional
// storage.VectorCache, and sends the misses to the ai.Embedder in fixed-size
// batches on an ants worker pool. Each batch is retried with exponential
// backoff. Vectors are normalized before they are cached or returned, so
// cosine similarity between any two of them is a plain dot product.
package embedding
