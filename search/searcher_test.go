package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kanddle/modelvec/ai/mock"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
	"github.com/kanddle/modelvec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) storage.VectorRepository {
	sourceRepo, vectorRepo, backend, err := badger.NewMemoryRepositories("vector_data")
	require.NoError(t, err)

	t.Cleanup(func() {
		vectorRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})

	return vectorRepo
}

func TestNewSearcher(t *testing.T) {
	vectorRepo := setupTestRepository(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(vectorRepo, provider)
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("nil vector repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.ErrorIs(t, err, ErrVectorRepositoryRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(vectorRepo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestFindSimilar_EmptyDatabase(t *testing.T) {
	vectorRepo := setupTestRepository(t)

	s, err := NewSearcher(vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := s.FindSimilar(context.Background(), "image classification", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_Ranking(t *testing.T) {
	vectorRepo := setupTestRepository(t)
	ctx := context.Background()

	// Embedder returns a fixed query vector so rankings are predictable
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	docs := []*core.VectorDocument{
		{ID: "aligned", Text: "a", Embedding: []float32{1, 0, 0}},
		{ID: "close", Text: "b", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "far", Text: "c", Embedding: []float32{0, 1, 0}},
	}
	_, err := vectorRepo.InsertVectors(ctx, docs)
	require.NoError(t, err)

	s, err := NewSearcher(vectorRepo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	results, err := s.FindSimilar(ctx, "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "aligned", results[0].Document.ID)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestFindSimilar_TopKLimit(t *testing.T) {
	vectorRepo := setupTestRepository(t)
	ctx := context.Background()

	docs := []*core.VectorDocument{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.5, 0.5}},
		{ID: "c", Embedding: []float32{0, 1}},
	}
	_, err := vectorRepo.InsertVectors(ctx, docs)
	require.NoError(t, err)

	s, err := NewSearcher(vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := s.FindSimilar(ctx, "query", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilar_InvalidInput(t *testing.T) {
	vectorRepo := setupTestRepository(t)

	s, err := NewSearcher(vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)

	ctx := context.Background()

	_, err = s.FindSimilar(ctx, "", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.FindSimilar(ctx, "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = s.FindSimilar(ctx, "query", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindSimilar_EmbedderFailure(t *testing.T) {
	vectorRepo := setupTestRepository(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model unavailable")
	}

	s, err := NewSearcher(vectorRepo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	_, err = s.FindSimilar(context.Background(), "query", 5)
	assert.Error(t, err)
}
