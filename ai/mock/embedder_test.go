package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/rejestr/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ai.Embedder = (*MockEmbedder)(nil)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v1, err := m.EmbedText(ctx, "Aceplan")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "Aceplan")
	require.NoError(t, err)
	other, err := m.EmbedText(ctx, "Stonker")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, other)
	assert.Len(t, v1, DefaultDimension)
	assert.InDelta(t, 1.0, norm(v1), 1e-5)
	assert.Equal(t, 3, m.TextCalls())
}

func TestMockEmbedder_Batch(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimension = 8

	vectors, err := m.EmbedTexts(context.Background(), []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.Len(t, vectors[1], 8)

	assert.Equal(t, 1, m.BatchCalls())
	assert.Equal(t, 3, m.EmbeddedTexts())
	assert.Equal(t, 1, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}

func TestMockEmbedder_InjectedError(t *testing.T) {
	boom := errors.New("model offline")
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestMockEmbedder_ConcurrentCounts(t *testing.T) {
	m := NewMockEmbedder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedTexts(context.Background(), []string{"x", "y"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.BatchCalls())
	assert.Equal(t, 100, m.EmbeddedTexts())
}

func TestVocabularyEmbedder(t *testing.T) {
	m := NewVocabularyEmbedder("ziemniak", "pszenica", "stonka")
	ctx := context.Background()

	v, err := m.EmbedText(ctx, "Stonka na ziemniaku, stonka wszędzie")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 2}, v)

	vectors, err := m.EmbedTexts(ctx, []string{"pszenica ozima", "kukurydza"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1, 0}, {0, 0, 0}}, vectors)
	assert.Equal(t, 3, m.Dimension)
}
