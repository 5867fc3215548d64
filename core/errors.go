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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidVectorDocument indicates a VectorDocument failed validation.
	ErrInvalidVectorDocument = errors.New("invalid vector document")

	// ErrEmptyKey indicates the record key is empty.
	ErrEmptyKey = errors.New("record key cannot be empty")

	// ErrEmptyDocumentID indicates the vector document ID is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyEmbedding indicates the vector document carries no embedding.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")
)
