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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kanddle/modelvec/core"
)

// topK bounds enforced at the HTTP boundary.
const (
	minTopK     = 1
	maxTopK     = 20
	defaultTopK = 5
)

type ingestRequest struct {
	Collection string `json:"collection"`
	PageSize   int    `json:"page_size"`
	StartPage  int    `json:"start_page"`
	EndPage    int    `json:"end_page"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Collection == "" {
		req.Collection = s.settings.SourceCollection
	}
	if req.PageSize < 1 {
		req.PageSize = s.settings.PageSize
	}

	summary, err := s.pipeline.Run(c.Request.Context(), req.Collection, req.PageSize, req.StartPage, req.EndPage)
	if err != nil {
		s.logger.Error("ingestion run failed", "collection", req.Collection, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleProgress(c *gin.Context) {
	collection := c.DefaultQuery("collection", s.settings.SourceCollection)

	progress, err := s.pipeline.Progress(c.Request.Context(), collection)
	if err != nil {
		s.logger.Error("progress query failed", "collection", collection, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

type vectorDocumentPayload struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata"`
}

type insertVectorsRequest struct {
	Documents []vectorDocumentPayload `json:"documents"`
}

func (s *Server) handleInsertVectors(c *gin.Context) {
	var req insertVectorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	docs := make([]*core.VectorDocument, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = &core.VectorDocument{
			ID:        d.ID,
			Text:      d.Text,
			Embedding: d.Embedding,
			Metadata:  d.Metadata,
		}
	}

	inserted, err := s.vectorRepo.InsertVectors(c.Request.Context(), docs)
	if err != nil {
		s.logger.Error("vector insert failed", "count", len(docs), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

type updateVectorRequest struct {
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"embedding"`
}

func (s *Server) handleUpdateVector(c *gin.Context) {
	id := c.Param("id")

	var req updateVectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := s.vectorRepo.UpdateVector(c.Request.Context(), id, req.Metadata, req.Embedding); err != nil {
		s.logger.Error("vector update failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Server) handleDeleteVector(c *gin.Context) {
	id := c.Param("id")

	if err := s.vectorRepo.DeleteVector(c.Request.Context(), id); err != nil {
		s.logger.Error("vector delete failed", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")

	topK := defaultTopK
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "top_k must be an integer"})
			return
		}
		topK = parsed
	}
	if topK < minTopK {
		topK = minTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	results, err := s.searcher.FindSimilar(c.Request.Context(), query, topK)
	if err != nil {
		s.logger.Error("search failed", "query", query, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type embeddingsRequest struct {
	Records []core.Fields `json:"records"`
}

// handleEmbeddings embeds a batch of ad hoc records without persisting them.
func (s *Server) handleEmbeddings(c *gin.Context) {
	var req embeddingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	embeddings := make([][]float32, len(req.Records))
	for i, fields := range req.Records {
		record := &core.Record{
			Key:    recordKey(fields),
			Fields: fields,
		}
		embedding, err := s.pipeline.Embedding(c.Request.Context(), record)
		if err != nil {
			s.logger.Error("ad hoc embedding failed", "key", record.Key, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		embeddings[i] = embedding
	}
	c.JSON(http.StatusOK, gin.H{"embeddings": embeddings})
}

// recordKey picks a stable key for an ad hoc record: the id or name field
// when present, otherwise a content hash of the fields.
func recordKey(fields core.Fields) string {
	for _, candidate := range []string{"id", "name"} {
		if value, ok := fields.Get(candidate); ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	data, err := fields.MarshalJSON()
	if err != nil {
		return core.IDFromContent("")
	}
	return core.IDFromContent(string(data))
}
