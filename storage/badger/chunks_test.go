package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/storage"
)

func TestChunkBasics(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := &core.Chunk{
		DocumentID: "wcag-1.4.3",
		Text:       "Text must have a contrast ratio of at least 4.5:1.",
		Vector:     []float32{0.6, 0.8},
		Meta: core.SourceMeta{
			AuthorID:  "w3c",
			Published: time.Now().UTC(),
			DocType:   core.DocTypeStandards,
		},
	}

	added, err := chunkRepo.AddChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(added))
	}

	if added[0].ID == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := chunkRepo.GetChunk(ctx, core.DocTypeStandards, added[0].ID)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}

	if retrieved.DocumentID != "wcag-1.4.3" {
		t.Fatalf("Expected 'wcag-1.4.3', got '%s'", retrieved.DocumentID)
	}
}

func TestChunkContentIDIdempotent(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	meta := core.SourceMeta{AuthorID: "w3c", DocType: core.DocTypeStandards}
	first := &core.Chunk{DocumentID: "d1", Text: "same text", Vector: []float32{1, 0}, Meta: meta}
	second := &core.Chunk{DocumentID: "d1", Text: "same text", Vector: []float32{1, 0}, Meta: meta}

	if _, err := chunkRepo.AddChunks(ctx, first); err != nil {
		t.Fatalf("Failed to add first chunk: %v", err)
	}
	if _, err := chunkRepo.AddChunks(ctx, second); err != nil {
		t.Fatalf("Failed to add second chunk: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("Expected identical content IDs, got %d and %d", first.ID, second.ID)
	}

	count, err := chunkRepo.CountPartition(ctx, core.DocTypeStandards)
	if err != nil {
		t.Fatalf("Failed to count partition: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 stored chunk after re-ingestion, got %d", count)
	}
}

func TestChunkPartitionIsolation(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{DocumentID: "std-1", Text: "contrast minimum", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: core.DocTypeStandards}},
		{DocumentID: "blog-1", Text: "fixing contrast issues", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: core.DocTypeExpertBlog}},
	}
	if _, err := chunkRepo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	hits, err := chunkRepo.SearchPartition(ctx, core.DocTypeStandards, []float32{1, 0}, 0.0, 10)
	if err != nil {
		t.Fatalf("Failed to search partition: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit from standards partition, got %d", len(hits))
	}
	if hits[0].DocumentID != "std-1" {
		t.Fatalf("Expected 'std-1', got '%s'", hits[0].DocumentID)
	}
	if hits[0].Partition != core.DocTypeStandards {
		t.Fatalf("Expected standards partition, got '%s'", hits[0].Partition)
	}
}

func TestSearchPartitionOrderingAndLimit(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{DocumentID: "low", Text: "low similarity", Vector: []float32{0.2, 0.98}, Meta: core.SourceMeta{DocType: core.DocTypeStandards}},
		{DocumentID: "high", Text: "high similarity", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: core.DocTypeStandards}},
		{DocumentID: "mid", Text: "mid similarity", Vector: []float32{0.7, 0.71}, Meta: core.SourceMeta{DocType: core.DocTypeStandards}},
	}
	if _, err := chunkRepo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	hits, err := chunkRepo.SearchPartition(ctx, core.DocTypeStandards, []float32{1, 0}, 0.0, 2)
	if err != nil {
		t.Fatalf("Failed to search partition: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocumentID != "high" || hits[1].DocumentID != "mid" {
		t.Fatalf("Expected [high mid], got [%s %s]", hits[0].DocumentID, hits[1].DocumentID)
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Fatal("Expected hits ordered by similarity descending")
	}
}

func TestSearchPartitionMinSimilarity(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{DocumentID: "close", Text: "close", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: core.DocTypeExpertBlog}},
		{DocumentID: "far", Text: "far", Vector: []float32{0, 1}, Meta: core.SourceMeta{DocType: core.DocTypeExpertBlog}},
	}
	if _, err := chunkRepo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	hits, err := chunkRepo.SearchPartition(ctx, core.DocTypeExpertBlog, []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search partition: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit above threshold, got %d", len(hits))
	}
	if hits[0].DocumentID != "close" {
		t.Fatalf("Expected 'close', got '%s'", hits[0].DocumentID)
	}
}

func TestDeleteChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := &core.Chunk{DocumentID: "d1", Text: "doomed", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: core.DocTypeAuditTicket}}
	if _, err := chunkRepo.AddChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	if err := chunkRepo.DeleteChunks(ctx, core.DocTypeAuditTicket, chunk.ID); err != nil {
		t.Fatalf("Failed to delete chunk: %v", err)
	}

	_, err = chunkRepo.GetChunk(ctx, core.DocTypeAuditTicket, chunk.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// Deleting a missing chunk reports not found
	err = chunkRepo.DeleteChunks(ctx, core.DocTypeAuditTicket, chunk.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestAddChunkRejectsUnknownPartition(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := &core.Chunk{DocumentID: "d1", Text: "text", Vector: []float32{1, 0}, Meta: core.SourceMeta{DocType: "mystery"}}
	if _, err := chunkRepo.AddChunks(ctx, chunk); !errors.Is(err, core.ErrInvalidDocumentType) {
		t.Fatalf("Expected ErrInvalidDocumentType, got %v", err)
	}
}
