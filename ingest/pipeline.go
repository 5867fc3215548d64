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

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/kanddle/modelvec/ai"
	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/normalize"
	"github.com/kanddle/modelvec/storage"
	"github.com/panjf2000/ants/v2"
)

// Run status values reported in a Summary.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Status         string `json:"status"`
	TotalProcessed int    `json:"total_processed"`
	PagesProcessed int    `json:"pages_processed"`
	TotalPages     int    `json:"total_pages"`
}

// Progress compares the source collection against the vector collection.
type Progress struct {
	TotalDocuments     int     `json:"total_documents"`
	ProcessedDocuments int     `json:"processed_documents"`
	RemainingDocuments int     `json:"remaining_documents"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// Pipeline orchestrates paginated ingestion of source records into the
// vector store. Pages are processed strictly sequentially; normalization
// within a page runs on the worker pool.
type Pipeline struct {
	sourceRepository storage.SourceRepository
	vectorRepository storage.VectorRepository
	embedder         ai.Embedder
	normalizePool    *ants.Pool
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for within-page normalization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.normalizePool != nil {
			p.normalizePool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.normalizePool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	sourceRepository storage.SourceRepository,
	vectorRepository storage.VectorRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if sourceRepository == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if vectorRepository == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		sourceRepository: sourceRepository,
		vectorRepository: vectorRepository,
		embedder:         provider.Embedder(),
		normalizePool:    pool,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run ingests the named source collection page by page. startPage is clamped
// to at least 1 and endPage to at most the total page count; zero values take
// the defaults. An empty page ends the run early as completed. A batch
// failure aborts the run at the failing page; prior pages' inserts remain.
func (p *Pipeline) Run(ctx context.Context, collection string, pageSize, startPage, endPage int) (*Summary, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be positive", storage.ErrInvalidQuery)
	}

	count, err := p.sourceRepository.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	totalPages := (count + pageSize - 1) / pageSize

	if startPage < 1 {
		startPage = 1
	}
	if endPage < 1 || endPage > totalPages {
		endPage = totalPages
	}

	summary := &Summary{
		Status:     StatusCompleted,
		TotalPages: totalPages,
	}

	p.logger.Info("starting ingestion run",
		"collection", collection,
		"total_documents", count,
		"total_pages", totalPages,
		"start_page", startPage,
		"end_page", endPage,
		"page_size", pageSize)

	for page := startPage; page <= endPage; page++ {
		records, err := p.sourceRepository.FetchPage(ctx, collection, page, pageSize)
		if err != nil {
			summary.Status = StatusFailed
			p.logger.Error("error fetching page", "page", page, "page_size", pageSize, "err", err)
			return summary, err
		}
		if len(records) == 0 {
			p.logger.Info("empty page, ending run", "page", page)
			break
		}

		if err := p.processBatch(ctx, collection, records); err != nil {
			summary.Status = StatusFailed
			p.logger.Error("error processing batch", "page", page, "batch_size", len(records), "err", err)
			return summary, err
		}

		summary.TotalProcessed += len(records)
		summary.PagesProcessed++
		p.logger.Debug("page processed", "page", page, "records", len(records))
	}

	p.logger.Info("ingestion run complete",
		"total_processed", summary.TotalProcessed,
		"pages_processed", summary.PagesProcessed)
	return summary, nil
}

// processBatch normalizes, embeds and upserts one page of records.
func (p *Pipeline) processBatch(ctx context.Context, collection string, records []*core.Record) error {
	texts := make([]string, len(records))

	var wg sync.WaitGroup
	for i, record := range records {
		i, record := i, record
		wg.Add(1)
		task := func() {
			defer wg.Done()
			texts[i] = normalize.Flatten(record.Fields)
		}
		if err := p.normalizePool.Submit(task); err != nil {
			// Pool unavailable, run inline
			task()
		}
	}
	wg.Wait()

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(records), len(embeddings))
	}

	docs := make([]*core.VectorDocument, len(records))
	for i, record := range records {
		docs[i] = &core.VectorDocument{
			ID:        record.Key,
			Text:      texts[i],
			Embedding: embeddings[i],
			Metadata:  map[string]string{"source": collection},
		}
	}

	_, err = p.vectorRepository.InsertVectors(ctx, docs)
	return err
}

// Embedding normalizes a single record and returns its embedding without
// touching the vector store.
func (p *Pipeline) Embedding(ctx context.Context, record *core.Record) ([]float32, error) {
	if err := core.ValidateRecord(record); err != nil {
		return nil, err
	}
	text := normalize.Flatten(record.Fields)
	return p.embedder.EmbedText(ctx, text)
}

// Progress compares the source collection's document count against the
// vector collection's. Percentage is 0 when the source is empty.
func (p *Pipeline) Progress(ctx context.Context, collection string) (*Progress, error) {
	total, err := p.sourceRepository.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	processed, err := p.vectorRepository.Count(ctx)
	if err != nil {
		return nil, err
	}

	progress := &Progress{
		TotalDocuments:     total,
		ProcessedDocuments: processed,
		RemainingDocuments: total - processed,
	}
	if progress.RemainingDocuments < 0 {
		progress.RemainingDocuments = 0
	}
	if total > 0 {
		progress.ProgressPercentage = float64(processed) / float64(total) * 100
	}
	return progress, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.normalizePool != nil {
		p.normalizePool.Release()
	}
}
