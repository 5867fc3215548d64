package storage

import (
	"context"

	"github.com/kanddle/modelvec/core"
)

// SourceRepository provides read-side access to origin collections.
// Implementations must be thread-safe and support concurrent access.
type SourceRepository interface {
	// Count returns the total number of records in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// FetchPage returns one fixed-size window of records in the collection's
	// stable natural order. Pages are 1-indexed: page 1 holds the first
	// pageSize records. A page past the end returns an empty slice, never
	// an error.
	FetchPage(ctx context.Context, collection string, page, pageSize int) ([]*core.Record, error)

	// Get retrieves a single record by its key.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, collection, key string) (*core.Record, error)

	// InsertRecords adds records to a collection. This is the upstream
	// producer's write path; the ingestion pipeline itself only reads.
	// Returns the number of records inserted.
	InsertRecords(ctx context.Context, collection string, records ...*core.Record) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// VectorRepository provides write/update/delete/search access to a vector
// collection. Implementations must be thread-safe and support concurrent
// access; individual document operations provide their own concurrency
// safety, no caller-side locking is expected.
type VectorRepository interface {
	// InsertVectors persists a batch of vector documents and returns the
	// inserted count. An empty batch or a document failing validation is
	// rejected before any write (ErrEmptyBatch, core validation errors).
	// Documents with an already-present ID are overwritten.
	InsertVectors(ctx context.Context, docs []*core.VectorDocument) (int, error)

	// UpdateVector partially updates a stored document: metadata replaces
	// the stored value wholesale, embedding replaces the stored vector only
	// when non-empty. A nil or empty embedding never overwrites a real one.
	// A missing id is logged as a warning and the call is a no-op, not an
	// error.
	UpdateVector(ctx context.Context, id string, metadata map[string]string, embedding []float32) error

	// DeleteVector removes a document by id. A missing id is logged as a
	// warning and the call is a no-op, not an error.
	DeleteVector(ctx context.Context, id string) error

	// GetVector retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetVector(ctx context.Context, id string) (*core.VectorDocument, error)

	// FindSimilar returns up to limit documents ranked by cosine similarity
	// to the query vector, highest first.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of documents in the vector collection.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}
