package storage

import (
	"context"

	"github.com/poiesic/ontosearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing indexed document chunks.
// Chunks are grouped into partitions by document type; every read and
// search operation is scoped to a single partition.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to their partitions.
	// For chunks with ID=0, generates content-based IDs from the chunk text,
	// so re-ingesting identical text is idempotent.
	// Sets InsertedAt timestamp if not already set.
	// Returns the chunks with generated IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by partition and ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, partition core.DocumentType, id core.ID) (*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs within a partition.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, partition core.DocumentType, ids ...core.ID) error

	// SearchPartition finds chunks in one partition similar to the given vector.
	// Returns hits with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	SearchPartition(ctx context.Context, partition core.DocumentType, vector []float32, minSimilarity float64, limit int) ([]core.DocumentHit, error)

	// CountPartition returns the number of chunks stored in a partition.
	CountPartition(ctx context.Context, partition core.DocumentType) (int, error)
}

// AuthorityRepository provides operations for managing author trust records.
type AuthorityRepository interface {
	Repository

	// PutAuthorities stores one or more authority records, replacing any
	// existing record for the same author.
	PutAuthorities(ctx context.Context, records ...*core.AuthorityRecord) error

	// GetAuthority retrieves the authority record for an author.
	// Returns ErrNotFound if no record exists.
	GetAuthority(ctx context.Context, authorID string) (*core.AuthorityRecord, error)

	// ListAuthorities retrieves all authority records, ordered by author ID.
	ListAuthorities(ctx context.Context) ([]*core.AuthorityRecord, error)
}
