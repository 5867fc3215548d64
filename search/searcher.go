package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kanddle/modelvec/ai"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
)

// Searcher answers free-text similarity queries over the vector store.
type Searcher struct {
	vectorRepository storage.VectorRepository
	embedder         ai.Embedder
	logger           *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	vectorRepository storage.VectorRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if vectorRepository == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		vectorRepository: vectorRepository,
		embedder:         provider.Embedder(),
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar embeds the query and returns up to topK stored documents
// ranked by cosine similarity, highest first.
func (s *Searcher) FindSimilar(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		return nil, storage.ErrInvalidQuery
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	results, err := s.vectorRepository.FindSimilar(ctx, embedding, topK)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	s.logger.Debug("search complete", "query", query, "hits", len(results))
	return results, nil
}
