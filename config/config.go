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

// Package config holds process-wide settings. A Settings value is built
// once at startup from flags and environment and passed into constructors
// unchanged thereafter.
package config

import "errors"

// Defaults applied by NewSettings.
const (
	DefaultDataDir          = "modelvec_data"
	DefaultSourceCollection = "source_data"
	DefaultVectorCollection = "vector_data"
	DefaultListenAddr       = ":8080"
	DefaultPageSize         = 50
)

var (
	// ErrDataDirRequired is returned when the data directory is empty.
	ErrDataDirRequired = errors.New("data directory required")

	// ErrCollectionRequired is returned when a collection name is empty.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Settings holds all process configuration. Treated as immutable after
// construction.
type Settings struct {
	// DataDir is the BadgerDB directory.
	DataDir string

	// SourceCollection names the collection holding source records.
	SourceCollection string

	// VectorCollection names the collection holding vector documents.
	VectorCollection string

	// EmbeddingHost is the OpenAI-compatible embedding endpoint.
	EmbeddingHost string

	// EmbeddingModel names the embedding model.
	EmbeddingModel string

	// TargetDim projects embeddings down to this dimension when positive.
	TargetDim int

	// ProjectionSeed seeds the projection weight matrix.
	ProjectionSeed int64

	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// PageSize is the default ingestion page size.
	PageSize int
}

// NewSettings returns Settings populated with defaults. Embedding fields are
// left zero so the ai package defaults apply.
func NewSettings() Settings {
	return Settings{
		DataDir:          DefaultDataDir,
		SourceCollection: DefaultSourceCollection,
		VectorCollection: DefaultVectorCollection,
		ListenAddr:       DefaultListenAddr,
		PageSize:         DefaultPageSize,
	}
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if s.DataDir == "" {
		return ErrDataDirRequired
	}
	if s.SourceCollection == "" || s.VectorCollection == "" {
		return ErrCollectionRequired
	}
	if s.PageSize < 1 {
		return ErrInvalidPageSize
	}
	return nil
}
