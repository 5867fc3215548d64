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

package modelvec

import (
	"log/slog"

	"github.com/kanddle/modelvec/ai"
	"github.com/kanddle/modelvec/ai/openai"
	"github.com/kanddle/modelvec/ingest"
	"github.com/kanddle/modelvec/search"
	"github.com/kanddle/modelvec/storage"
	"github.com/kanddle/modelvec/storage/badger"
)

// Database wires the storage backend, repositories and AI provider together.
// Construct one per process and pass it by reference.
type Database struct {
	backend    *badger.Backend
	sourceRepo storage.SourceRepository
	vectorRepo storage.VectorRepository
	provider   ai.Provider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig         *ai.Config
	vectorCollection string
}

// WithAIConfig overrides the default AI configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithVectorCollection overrides the vector collection name.
// Default is "vector_data".
func WithVectorCollection(name string) DatabaseOption {
	return func(o *databaseOptions) {
		if name != "" {
			o.vectorCollection = name
		}
	}
}

// NewDatabase opens the storage backend at filePath and constructs the
// repositories and AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:         ai.DefaultConfig(),
		vectorCollection: "vector_data",
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	sourceRepo := badger.NewSourceRepository(backend)
	vectorRepo := badger.NewVectorRepository(backend, options.vectorCollection)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		vectorRepo.Close()
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:    backend,
		sourceRepo: sourceRepo,
		vectorRepo: vectorRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.vectorRepo.Close(); err != nil {
		db.logger.Error("error closing vector repository", "err", err)
		return err
	}
	if err := db.sourceRepo.Close(); err != nil {
		db.logger.Error("error closing source repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) SourceRepository() storage.SourceRepository {
	return db.sourceRepo
}

func (db *Database) VectorRepository() storage.VectorRepository {
	return db.vectorRepo
}

func (db *Database) NewPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(db.sourceRepo, db.vectorRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.vectorRepo, db.provider, opts...)
}
