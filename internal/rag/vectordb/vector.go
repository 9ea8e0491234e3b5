package vectordb

import (
	"context"

	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
)

// Store is the vector index contract. The index only ever holds one
// generation of a collection; Recreate destroys the previous one.
type Store interface {
	Recreate(ctx context.Context, collection string, dimension uint64) error
	UpsertBatch(ctx context.Context, collection string, chunks []chunkmodel.EnrichedChunk, vectors [][]float32) error
	Query(ctx context.Context, collection string, vector []float32, topK uint64) ([]chunkmodel.ScoredChunk, error)
	Count(ctx context.Context, collection string) (uint64, error)
}
