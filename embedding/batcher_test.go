package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/rejestr/ai/mock"
	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig("test-model")
	cfg.BatchSize = 2
	cfg.RetryDelay = time.Millisecond
	cfg.PoolSize = 2
	return cfg
}

func newTestBatcher(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Batcher {
	t.Helper()
	opts = append([]Option{WithConfig(testConfig())}, opts...)
	b, err := NewBatcher(embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func TestNewBatcher_RequiresEmbedder(t *testing.T) {
	_, err := NewBatcher(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestNewBatcher_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 0
	_, err := NewBatcher(mock.NewMockEmbedder(), WithConfig(cfg))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBatcher_Embed(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 16
	b := newTestBatcher(t, embedder)

	texts := []string{"a", "b", "c", "a", "d", "e"}
	vectors, stats, err := b.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	assert.Equal(t, vectors[0], vectors[3], "repeated text shares its vector")
	for _, v := range vectors {
		assert.Len(t, v, 16)
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}

	assert.Equal(t, Stats{Texts: 6, Unique: 5, CacheHits: 0, Embedded: 5, Batches: 3}, stats)
	assert.Equal(t, 3, embedder.BatchCalls())
	assert.Equal(t, 5, embedder.EmbeddedTexts())
	assert.Equal(t, 0, embedder.TextCalls())
}

func TestBatcher_EmbedKeepsOrder(t *testing.T) {
	embedder := mock.NewVocabularyEmbedder("a", "b", "c", "d", "e")
	b := newTestBatcher(t, embedder)

	vectors, _, err := b.Embed(context.Background(), []string{"e", "d", "c", "b", "a"})
	require.NoError(t, err)
	for i, v := range vectors {
		want := make([]float32, 5)
		want[4-i] = 1
		assert.Equal(t, want, v, "text %d", i)
	}
}

func TestBatcher_EmbedEmpty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	b := newTestBatcher(t, embedder)

	vectors, stats, err := b.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, stats.Batches)
	assert.Zero(t, embedder.CallCount())
}

func TestBatcher_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 1}
		}
		return out, nil
	}
	b := newTestBatcher(t, embedder)

	vectors, _, err := b.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBatcher_PersistentFailure(t *testing.T) {
	boom := errors.New("model offline")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, boom
	}
	b := newTestBatcher(t, embedder)

	_, _, err := b.Embed(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, boom)
}

func TestBatcher_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	b := newTestBatcher(t, embedder)

	_, _, err := b.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestBatcher_DimensionMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = make([]float32, len(text))
			out[i][0] = 1
		}
		return out, nil
	}
	b := newTestBatcher(t, embedder)

	_, _, err := b.Embed(context.Background(), []string{"a", "bb"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBatcher_UsesCache(t *testing.T) {
	cache, err := badger.NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8
	b := newTestBatcher(t, embedder, WithCache(cache))

	first, stats, err := b.Embed(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Embedded)

	embedder.Reset()
	second, stats, err := b.Embed(ctx, []string{"c", "a", "b", "d"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CacheHits)
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 1, embedder.EmbeddedTexts())
	assert.Equal(t, first[2], second[0])
	assert.Equal(t, first[0], second[1])

	cached, err := cache.GetVectors(ctx, "test-model", []string{core.ContentKey("test-model", "d")})
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestBatcher_CacheIsPerModel(t *testing.T) {
	cache, err := badger.NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	b := newTestBatcher(t, embedder, WithCache(cache))
	_, _, err = b.Embed(ctx, []string{"a"})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Model = "other-model"
	other := newTestBatcher(t, embedder, WithCache(cache), WithConfig(cfg))
	_, stats, err := other.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CacheHits)
}

func TestBatcher_CacheFromOtherDimensionIsReembedded(t *testing.T) {
	cache, err := badger.NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()
	texts := []string{"stonka", "mszyce", "zaraza"}

	small := mock.NewVocabularyEmbedder("stonka", "mszyce", "zaraza")
	_, _, err = newTestBatcher(t, small, WithCache(cache)).Embed(ctx, texts)
	require.NoError(t, err)

	large := mock.NewMockEmbedder()
	vectors, stats, err := newTestBatcher(t, large, WithCache(cache)).Embed(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CacheHits)
	assert.Equal(t, 3, stats.Embedded)
	for _, v := range vectors {
		assert.Len(t, v, mock.DefaultDimension)
	}

	cached, err := cache.GetVectors(ctx, "test-model", []string{core.ContentKey("test-model", "stonka")})
	require.NoError(t, err)
	assert.Len(t, cached[core.ContentKey("test-model", "stonka")], mock.DefaultDimension, "cache entry is replaced")
}

func TestBatcher_CacheFromOtherModelSameDimensionIsReembedded(t *testing.T) {
	cache, err := badger.NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()
	texts := []string{"a", "b"}

	first := mock.NewMockEmbedder()
	first.Dimension = 8
	_, _, err = newTestBatcher(t, first, WithCache(cache)).Embed(ctx, texts)
	require.NoError(t, err)

	source := mock.NewMockEmbedder()
	source.Dimension = 8
	second := mock.NewMockEmbedder()
	second.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return source.EmbedText(ctx, "other:"+text)
	}
	second.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i], _ = source.EmbedText(ctx, "other:"+text)
		}
		return out, nil
	}

	vectors, stats, err := newTestBatcher(t, second, WithCache(cache)).Embed(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CacheHits)
	assert.Equal(t, 2, stats.Embedded)

	want, err := source.EmbedText(ctx, "other:a")
	require.NoError(t, err)
	assert.Equal(t, NormalizeVector(want), vectors[0])
}

func TestBatcher_CacheHitsCheckOneText(t *testing.T) {
	cache, err := badger.NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	b := newTestBatcher(t, embedder, WithCache(cache))
	_, _, err = b.Embed(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)

	embedder.Reset()
	_, stats, err := b.Embed(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CacheHits)
	assert.Equal(t, 0, embedder.BatchCalls())
	assert.Equal(t, 1, embedder.TextCalls())
}

func TestBatcher_Progress(t *testing.T) {
	var buf bytes.Buffer
	b := newTestBatcher(t, mock.NewMockEmbedder(), WithProgress(&buf))

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}
	_, _, err := b.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "10/10")
}
