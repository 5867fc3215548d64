package badger

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
// A repository instance is bound to one vector collection.
type VectorRepository struct {
	backend    *Backend
	collection string
	logger     *slog.Logger
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository over the named
// vector collection.
func NewVectorRepository(backend *Backend, collection string) *VectorRepository {
	return &VectorRepository{
		backend:    backend,
		collection: collection,
		logger:     slog.Default().With("component", "vector-repository", "collection", collection),
	}
}

// Close releases resources. The shared backend is closed by its owner.
func (r *VectorRepository) Close() error {
	return nil
}

// InsertVectors persists a batch of vector documents.
// The batch is validated in full before any write.
func (r *VectorRepository) InsertVectors(ctx context.Context, docs []*core.VectorDocument) (int, error) {
	if len(docs) == 0 {
		return 0, storage.ErrEmptyBatch
	}
	for _, doc := range docs {
		if err := core.ValidateVectorDocument(doc); err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			doc.InsertedAt = now
			doc.UpdatedAt = now
			key := makeVectorKey(r.collection, doc.ID)
			if err := tx.Set(key, storage.MarshalVectorDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	r.logger.Info("inserted vector documents", "count", len(docs))
	return len(docs), nil
}

// UpdateVector partially updates a stored document. Metadata replaces the
// stored value wholesale; the embedding is replaced only when non-empty, so
// an absent embedding never clobbers a real one. A missing id is logged and
// the call is a no-op.
func (r *VectorRepository) UpdateVector(ctx context.Context, id string, metadata map[string]string, embedding []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(r.collection, id)
		doc, err := r.readVectorDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			r.logger.Warn("no vector document found", "id", id)
			return nil
		}

		doc.Metadata = metadata
		if len(embedding) > 0 {
			doc.Embedding = embedding
		}
		doc.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalVectorDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteVector removes a document by id. A missing id is logged and the
// call is a no-op.
func (r *VectorRepository) DeleteVector(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(r.collection, id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				r.logger.Warn("no vector document found", "id", id)
				return nil
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves a single document by id.
func (r *VectorRepository) GetVector(ctx context.Context, id string) (*core.VectorDocument, error) {
	var doc *core.VectorDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = r.readVectorDocument(tx, makeVectorKey(r.collection, id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindSimilar returns up to limit documents ranked by cosine similarity to
// the query vector, highest first. Similarity search delegates to a full
// scan; the collection is small enough that no index is maintained.
func (r *VectorRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPrefix(r.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.VectorDocument
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalVectorDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil || len(doc.Embedding) == 0 {
				continue
			}

			results = append(results, &core.SearchResult{
				Document: doc,
				Score:    cosineSimilarity(vector, doc.Embedding),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of documents in the vector collection.
func (r *VectorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPrefix(r.collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// readVectorDocument reads a document inside a transaction.
// Returns nil without error when the key is absent.
func (r *VectorRepository) readVectorDocument(tx *badger.Txn, key []byte) (*core.VectorDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.VectorDocument
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalVectorDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix; zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
