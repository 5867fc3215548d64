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

import "fmt"

// ValidateRecord validates a source record according to domain rules.
//
// Validation rules:
//   - Key must not be empty
//
// NOT validated:
//   - Fields (records may have any shape, including no fields at all)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyKey)
	}

	return nil
}

// ValidateVectorDocument validates a vector document before it is persisted.
//
// Validation rules:
//   - ID must not be empty
//   - Embedding must not be empty
//
// NOT validated:
//   - Text (optional)
//   - Metadata (optional)
func ValidateVectorDocument(doc *VectorDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidVectorDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVectorDocument, ErrEmptyDocumentID)
	}

	if len(doc.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVectorDocument, ErrEmptyEmbedding)
	}

	return nil
}
