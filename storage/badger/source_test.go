package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/kanddle/modelvec/core"
	"github.com/kanddle/modelvec/storage"
)

func makeTestRecord(i int) *core.Record {
	return &core.Record{
		Key: fmt.Sprintf("model-%03d", i),
		Fields: core.Fields{
			{Key: "name", Value: fmt.Sprintf("model-%03d", i)},
			{Key: "framework", Value: "pytorch"},
		},
	}
}

func TestSourceRecordBasics(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		vectorRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	inserted, err := sourceRepo.InsertRecords(ctx, "source_data", makeTestRecord(1))
	if err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("Expected 1 inserted, got %d", inserted)
	}

	retrieved, err := sourceRepo.Get(ctx, "source_data", "model-001")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Key != "model-001" {
		t.Fatalf("Expected key 'model-001', got '%s'", retrieved.Key)
	}
	if name, ok := retrieved.Fields.Get("name"); !ok || name != "model-001" {
		t.Fatalf("Expected name 'model-001', got '%v'", name)
	}
}

func TestSourceGetMissing(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	_, err = sourceRepo.Get(context.Background(), "source_data", "nope")
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSourceInsertEmptyBatch(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	_, err = sourceRepo.InsertRecords(context.Background(), "source_data")
	if err != storage.ErrEmptyBatch {
		t.Fatalf("Expected ErrEmptyBatch, got %v", err)
	}
}

func TestSourcePagination(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// 95 records at page size 20 span 5 pages, the last holding 15
	records := make([]*core.Record, 0, 95)
	for i := 0; i < 95; i++ {
		records = append(records, makeTestRecord(i))
	}
	if _, err := sourceRepo.InsertRecords(ctx, "source_data", records...); err != nil {
		t.Fatalf("Failed to insert records: %v", err)
	}

	count, err := sourceRepo.Count(ctx, "source_data")
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 95 {
		t.Fatalf("Expected count 95, got %d", count)
	}

	for page := 1; page <= 4; page++ {
		got, err := sourceRepo.FetchPage(ctx, "source_data", page, 20)
		if err != nil {
			t.Fatalf("Failed to fetch page %d: %v", page, err)
		}
		if len(got) != 20 {
			t.Fatalf("Expected 20 records on page %d, got %d", page, len(got))
		}
	}

	last, err := sourceRepo.FetchPage(ctx, "source_data", 5, 20)
	if err != nil {
		t.Fatalf("Failed to fetch last page: %v", err)
	}
	if len(last) != 15 {
		t.Fatalf("Expected 15 records on last page, got %d", len(last))
	}

	// A page past the end is empty, not an error
	past, err := sourceRepo.FetchPage(ctx, "source_data", 6, 20)
	if err != nil {
		t.Fatalf("Failed to fetch page past end: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("Expected empty page past end, got %d records", len(past))
	}
}

func TestSourcePaginationOrderStable(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	records := make([]*core.Record, 0, 30)
	for i := 0; i < 30; i++ {
		records = append(records, makeTestRecord(i))
	}
	if _, err := sourceRepo.InsertRecords(ctx, "source_data", records...); err != nil {
		t.Fatalf("Failed to insert records: %v", err)
	}

	page1, err := sourceRepo.FetchPage(ctx, "source_data", 1, 10)
	if err != nil {
		t.Fatalf("Failed to fetch page 1: %v", err)
	}
	page2, err := sourceRepo.FetchPage(ctx, "source_data", 2, 10)
	if err != nil {
		t.Fatalf("Failed to fetch page 2: %v", err)
	}

	if page1[0].Key != "model-000" {
		t.Fatalf("Expected first record 'model-000', got '%s'", page1[0].Key)
	}
	if page2[0].Key != "model-010" {
		t.Fatalf("Expected page 2 to start at 'model-010', got '%s'", page2[0].Key)
	}

	// Pages never overlap
	seen := map[string]bool{}
	for _, r := range page1 {
		seen[r.Key] = true
	}
	for _, r := range page2 {
		if seen[r.Key] {
			t.Fatalf("Record '%s' appeared on both pages", r.Key)
		}
	}
}

func TestSourceFetchPageInvalidArgs(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := sourceRepo.FetchPage(ctx, "source_data", 0, 10); err != storage.ErrInvalidQuery {
		t.Fatalf("Expected ErrInvalidQuery for page 0, got %v", err)
	}
	if _, err := sourceRepo.FetchPage(ctx, "source_data", 1, 0); err != storage.ErrInvalidQuery {
		t.Fatalf("Expected ErrInvalidQuery for page size 0, got %v", err)
	}
}

func TestSourceCollectionsIsolated(t *testing.T) {
	sourceRepo, vectorRepo, backend, err := NewMemoryRepositories("vector_data")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { vectorRepo.Close(); sourceRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := sourceRepo.InsertRecords(ctx, "source_data", makeTestRecord(1)); err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}

	count, err := sourceRepo.Count(ctx, "other_collection")
	if err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty collection, got %d records", count)
	}
}
