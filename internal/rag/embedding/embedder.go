package embedding

import "context"

// Embedder produces fixed-length vectors. The same implementation must
// serve both index build time and query time; mixing embedding models
// silently produces meaningless similarity scores.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
