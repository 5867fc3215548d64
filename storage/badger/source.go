package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
)

// SourceRepository implements storage.SourceRepository for BadgerDB.
// Records within a collection are kept in lexicographic key order, which
// serves as the collection's stable natural order for pagination.
type SourceRepository struct {
	backend *Backend
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) *SourceRepository {
	return &SourceRepository{backend: backend}
}

// Close releases resources. The shared backend is closed by its owner.
func (r *SourceRepository) Close() error {
	return nil
}

// Count returns the total number of records in a collection.
func (r *SourceRepository) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSourcePrefix(collection)
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

// FetchPage returns one 1-indexed page of records in natural order.
// A page past the end yields an empty slice, never an error.
func (r *SourceRepository) FetchPage(ctx context.Context, collection string, page, pageSize int) ([]*core.Record, error) {
	if page < 1 || pageSize < 1 {
		return nil, storage.ErrInvalidQuery
	}

	skip := (page - 1) * pageSize
	records := make([]*core.Record, 0, pageSize)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSourcePrefix(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		pos := 0
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if pos < skip {
				pos++
				continue
			}
			if len(records) >= pageSize {
				break
			}

			item := iter.Item()
			key := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				record, err := storage.UnmarshalRecord(key, val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
			pos++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get retrieves a single record by its key.
func (r *SourceRepository) Get(ctx context.Context, collection, key string) (*core.Record, error) {
	var record *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSourceKey(collection, key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalRecord(key, val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// InsertRecords adds records to a collection. Records with an existing key
// are overwritten.
func (r *SourceRepository) InsertRecords(ctx context.Context, collection string, records ...*core.Record) (int, error) {
	if len(records) == 0 {
		return 0, storage.ErrEmptyBatch
	}
	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return 0, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			value, err := storage.MarshalRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(makeSourceKey(collection, record.Key), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
