package ontosearch

import (
	"context"
	"sync"

	"github.com/poiesic/ontosearch/ai"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/search"
	"github.com/poiesic/ontosearch/storage"
)

// embedCacheLimit bounds the per-index embedding cache. The fan-out asks for
// the same variant text once per routed partition; caching collapses those
// into one embedding call.
const embedCacheLimit = 256

// ChunkIndex adapts a chunk repository plus an embedder into the fan-out's
// vector index. Embedding happens here so the fan-out stays provider-agnostic.
type ChunkIndex struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder

	mu    sync.Mutex
	cache map[string][]float32
}

var _ search.VectorIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates a vector index over stored chunks.
func NewChunkIndex(chunks storage.ChunkRepository, embedder ai.Embedder) (*ChunkIndex, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &ChunkIndex{
		chunks:   chunks,
		embedder: embedder,
		cache:    make(map[string][]float32),
	}, nil
}

// Search embeds the query text and scans the partition for similar chunks.
// The similarity floor is applied downstream by the fan-out.
func (x *ChunkIndex) Search(ctx context.Context, partition core.DocumentType, text string, limit int) ([]core.DocumentHit, error) {
	vector, err := x.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return x.chunks.SearchPartition(ctx, partition, vector, 0, limit)
}

func (x *ChunkIndex) embed(ctx context.Context, text string) ([]float32, error) {
	x.mu.Lock()
	if vector, ok := x.cache[text]; ok {
		x.mu.Unlock()
		return vector, nil
	}
	x.mu.Unlock()

	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	if len(x.cache) >= embedCacheLimit {
		x.cache = make(map[string][]float32)
	}
	x.cache[text] = vector
	x.mu.Unlock()

	return vector, nil
}
