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

package server

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kanddle/modelvec/config"
	"github.com/kanddle/modelvec/ingest"
	"github.com/kanddle/modelvec/search"
	"github.com/kanddle/modelvec/storage"
)

var (
	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")
)

// Server hosts the HTTP surface over the pipeline, searcher and vector store.
type Server struct {
	settings   config.Settings
	pipeline   *ingest.Pipeline
	searcher   *search.Searcher
	vectorRepo storage.VectorRepository
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a new HTTP server over the given components.
func NewServer(
	settings config.Settings,
	pipeline *ingest.Pipeline,
	searcher *search.Searcher,
	vectorRepo storage.VectorRepository,
	opts ...Option,
) (*Server, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if vectorRepo == nil {
		return nil, ErrVectorRepositoryRequired
	}

	s := &Server{
		settings:   settings,
		pipeline:   pipeline,
		searcher:   searcher,
		vectorRepo: vectorRepo,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/ingest", s.handleIngest)
		api.GET("/progress", s.handleProgress)
		api.POST("/vectors", s.handleInsertVectors)
		api.PUT("/vectors/:id", s.handleUpdateVector)
		api.DELETE("/vectors/:id", s.handleDeleteVector)
		api.GET("/search", s.handleSearch)
		api.POST("/embeddings", s.handleEmbeddings)
	}

	return router
}

// Run starts the HTTP server on the configured listen address.
// Blocks until the server stops.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP server", "addr", s.settings.ListenAddr)
	return s.Router().Run(s.settings.ListenAddr)
}
