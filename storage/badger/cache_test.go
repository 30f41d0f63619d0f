package badger

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/poiesic/rejestr/core"
	"github.com/poiesic/rejestr/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorCache_PutGet(t *testing.T) {
	cache, err := NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	k1 := core.ContentKey("embeddinggemma", "Aceplan")
	k2 := core.ContentKey("embeddinggemma", "Stonker")
	err = cache.PutVectors(ctx, "embeddinggemma", map[string][]float32{
		k1: {0.6, 0.8},
		k2: {1, 0},
	})
	require.NoError(t, err)

	got, err := cache.GetVectors(ctx, "embeddinggemma", []string{k1, k2, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{k1: {0.6, 0.8}, k2: {1, 0}}, got)

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorCache_ModelMismatchMisses(t *testing.T) {
	cache, err := NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.PutVectors(ctx, "model-a", map[string][]float32{"k": {1}}))

	got, err := cache.GetVectors(ctx, "model-b", []string{"k"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVectorCache_RejectsInvalidVectors(t *testing.T) {
	cache, err := NewMemoryVectorCache()
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	err = cache.PutVectors(ctx, "m", map[string][]float32{"k": {float32(math.NaN())}})
	assert.ErrorIs(t, err, storage.ErrInvalidVector)

	got, err := cache.GetVectors(ctx, "m", []string{"k"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVectorCache_Closed(t *testing.T) {
	cache, err := NewMemoryVectorCache()
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	_, err = cache.GetVectors(context.Background(), "m", []string{"k"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	err = cache.PutVectors(context.Background(), "m", map[string][]float32{"k": {1}})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestVectorCache_SharedBackendStaysOpen(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	cache, err := NewVectorCache(backend)
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	assert.False(t, backend.IsClosed())
}

func TestOpenVectorCache_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vectors")
	ctx := context.Background()

	cache, err := OpenVectorCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.PutVectors(ctx, "m", map[string][]float32{"k": {0.5, 0.5}}))
	require.NoError(t, cache.Close())

	reopened, err := OpenVectorCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetVectors(ctx, "m", []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, got["k"])
}
