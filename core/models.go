package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent derives a deterministic document ID from text content using
// BLAKE2b hashing. Identical content always produces the same ID, which makes
// re-ingestion of an unkeyed document an overwrite rather than a duplicate.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Field is a single key/value pair of a source record.
// Value may be a scalar (string, bool, json.Number, int, int64, float64),
// a nested Fields mapping, or a []any sequence.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered field mapping. Unlike a Go map it preserves the
// insertion order of keys, which keeps record flattening deterministic.
type Fields []Field

// Get returns the value for key and whether it was present.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// GetFields returns the nested mapping for key, or nil if the key is absent
// or its value is not a mapping.
func (f Fields) GetFields(key string) Fields {
	v, ok := f.Get(key)
	if !ok {
		return nil
	}
	nested, ok := v.(Fields)
	if !ok {
		return nil
	}
	return nested
}

// Record represents a single raw document from a source collection.
// Records are read-only to the pipeline; only the upstream system that
// produces them ever writes them back.
type Record struct {
	Key    string // Unique key within the source collection
	Fields Fields // Document content in insertion order
}

// VectorDocument is the persisted unit in a vector collection.
type VectorDocument struct {
	ID         string
	Text       string // Normalized text the embedding was derived from (optional)
	Embedding  []float32
	Metadata   map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SearchResult pairs a stored vector document with its similarity score.
type SearchResult struct {
	Document *VectorDocument
	Score    float32
}
