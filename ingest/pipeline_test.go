package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kanddle/modelvec/ai/mock"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
	"github.com/kanddle/modelvec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepositories(t *testing.T) (storage.SourceRepository, storage.VectorRepository) {
	sourceRepo, vectorRepo, backend, err := badger.NewMemoryRepositories("vector_data")
	require.NoError(t, err)

	t.Cleanup(func() {
		vectorRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})

	return sourceRepo, vectorRepo
}

func seedRecords(t *testing.T, repo storage.SourceRepository, collection string, n int) {
	records := make([]*core.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &core.Record{
			Key: fmt.Sprintf("model-%03d", i),
			Fields: core.Fields{
				{Key: "name", Value: fmt.Sprintf("model-%03d", i)},
				{Key: "framework", Value: "pytorch"},
			},
		})
	}
	_, err := repo.InsertRecords(context.Background(), collection, records...)
	require.NoError(t, err)
}

func TestNewPipeline(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(sourceRepo, vectorRepo, provider)
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})

	t.Run("with pool size", func(t *testing.T) {
		p, err := NewPipeline(sourceRepo, vectorRepo, provider, WithPoolSize(2))
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})

	t.Run("nil source repository", func(t *testing.T) {
		_, err := NewPipeline(nil, vectorRepo, provider)
		assert.ErrorIs(t, err, ErrSourceRepositoryRequired)
	})

	t.Run("nil vector repository", func(t *testing.T) {
		_, err := NewPipeline(sourceRepo, nil, provider)
		assert.ErrorIs(t, err, ErrVectorRepositoryRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(sourceRepo, vectorRepo, nil)
		assert.ErrorIs(t, err, ErrProviderRequired)
	})
}

func TestRunEndToEnd(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	seedRecords(t, sourceRepo, "source_data", 25)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	summary, err := p.Run(ctx, "source_data", 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 25, summary.TotalProcessed)
	assert.Equal(t, 3, summary.PagesProcessed)
	assert.Equal(t, 3, summary.TotalPages)

	progress, err := p.Progress(ctx, "source_data")
	require.NoError(t, err)
	assert.Equal(t, 25, progress.TotalDocuments)
	assert.Equal(t, 25, progress.ProcessedDocuments)
	assert.Equal(t, 0, progress.RemainingDocuments)
	assert.Equal(t, 100.0, progress.ProgressPercentage)

	// Vector document ids mirror source keys
	doc, err := vectorRepo.GetVector(ctx, "model-000")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Text)
	assert.NotEmpty(t, doc.Embedding)
	assert.Equal(t, "source_data", doc.Metadata["source"])
}

func TestRunClampsPageRange(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	seedRecords(t, sourceRepo, "source_data", 25)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	summary, err := p.Run(context.Background(), "source_data", 10, 0, 999)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.PagesProcessed)
	assert.Equal(t, 25, summary.TotalProcessed)
}

func TestRunPartialRange(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	seedRecords(t, sourceRepo, "source_data", 25)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	summary, err := p.Run(context.Background(), "source_data", 10, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 1, summary.PagesProcessed)
	assert.Equal(t, 10, summary.TotalProcessed)
}

func TestRunEmptyCollection(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	summary, err := p.Run(context.Background(), "source_data", 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 0, summary.TotalProcessed)
	assert.Equal(t, 0, summary.PagesProcessed)
	assert.Equal(t, 0, summary.TotalPages)
}

func TestRunInvalidPageSize(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Run(context.Background(), "source_data", 0, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestRunFailureIsolation(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	seedRecords(t, sourceRepo, "source_data", 25)

	embedder := mock.NewMockEmbedder()
	batchCalls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls++
		if batchCalls == 2 {
			return nil, errors.New("embedder down")
		}
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		return embeddings, nil
	}

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	summary, err := p.Run(ctx, "source_data", 10, 0, 0)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, 10, summary.TotalProcessed)
	assert.Equal(t, 1, summary.PagesProcessed)

	// Page 1's inserts remain, pages 2 and 3 were never written
	count, err := vectorRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	_, err = vectorRepo.GetVector(ctx, "model-000")
	assert.NoError(t, err)
	_, err = vectorRepo.GetVector(ctx, "model-015")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunIsUpsert(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)
	seedRecords(t, sourceRepo, "source_data", 10)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()

	_, err = p.Run(ctx, "source_data", 5, 0, 0)
	require.NoError(t, err)
	_, err = p.Run(ctx, "source_data", 5, 0, 0)
	require.NoError(t, err)

	// Re-running the same range does not duplicate documents
	count, err := vectorRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestEmbedding(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	record := &core.Record{
		Key: "model-1",
		Fields: core.Fields{
			{Key: "name", Value: "bert-base"},
		},
	}

	embedding, err := p.Embedding(context.Background(), record)
	require.NoError(t, err)
	assert.Len(t, embedding, mock.DefaultDim)

	// Vector store untouched
	count, err := vectorRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEmbeddingInvalidRecord(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Embedding(context.Background(), nil)
	assert.Error(t, err)
}

func TestProgressEmptySource(t *testing.T) {
	sourceRepo, vectorRepo := setupTestRepositories(t)

	p, err := NewPipeline(sourceRepo, vectorRepo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	progress, err := p.Progress(context.Background(), "source_data")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalDocuments)
	assert.Equal(t, 0.0, progress.ProgressPercentage)
}
