// Copyright 2025 Kanddle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kanddle/modelvec/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Vector documents have a fixed shape, so they use compact MUS encoding.
// Source records are dynamic mappings and round-trip through the ordered
// JSON codec in core instead.
var (
	embeddingMUS = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS  = ord.NewMapSer[string, string](ord.String, ord.String)
)

// vectorDocumentSer serializes core.VectorDocument. Timestamps are stored
// as Unix microseconds.
type vectorDocumentSer struct{}

// VectorDocumentMUS is the MUS serializer for vector documents.
var VectorDocumentMUS = vectorDocumentSer{}

func (vectorDocumentSer) Marshal(d core.VectorDocument, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Text, bs[n:])
	n += embeddingMUS.Marshal(d.Embedding, bs[n:])
	n += metadataMUS.Marshal(d.Metadata, bs[n:])
	n += varint.Int64.Marshal(d.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(d.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (vectorDocumentSer) Unmarshal(bs []byte) (d core.VectorDocument, n int, err error) {
	var n1 int
	d.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Embedding, n1, err = embeddingMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.InsertedAt = time.UnixMicro(micros).UTC()
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (vectorDocumentSer) Size(d core.VectorDocument) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.Text)
	size += embeddingMUS.Size(d.Embedding)
	size += metadataMUS.Size(d.Metadata)
	size += varint.Int64.Size(d.InsertedAt.UnixMicro())
	size += varint.Int64.Size(d.UpdatedAt.UnixMicro())
	return
}

func (s vectorDocumentSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// MarshalVectorDocument serializes a VectorDocument to bytes.
func MarshalVectorDocument(doc *core.VectorDocument) []byte {
	buf := make([]byte, VectorDocumentMUS.Size(*doc))
	VectorDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalVectorDocument deserializes a VectorDocument from bytes.
func UnmarshalVectorDocument(data []byte) (*core.VectorDocument, error) {
	doc, _, err := VectorDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalRecord serializes a source record's fields as ordered JSON.
// The record key lives in the storage key, not in the value.
func MarshalRecord(record *core.Record) ([]byte, error) {
	data, err := json.Marshal(record.Fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalRecord deserializes a source record from bytes.
func UnmarshalRecord(key string, data []byte) (*core.Record, error) {
	var fields core.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &core.Record{Key: key, Fields: fields}, nil
}
