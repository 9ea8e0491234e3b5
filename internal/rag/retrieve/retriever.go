package retrieve

import (
	"context"
	"time"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/metrics"
	"github.com/meridianhomes/homechat/internal/rag/embedding"
	"github.com/meridianhomes/homechat/internal/rag/vectordb"
	"github.com/meridianhomes/homechat/pkg/applog"
)

type Retriever struct {
	embedder   embedding.Embedder
	store      vectordb.Store
	collection string
	logger     *applog.Logger
}

func New(embedder embedding.Embedder, store vectordb.Store) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: config.KnowledgeCollection,
		logger:     applog.NewLogger("Retriever"),
	}
}

// Retrieve embeds the question with the same embedder the index was
// built with and runs a top-K nearest-neighbor lookup. Zero matches is
// a valid, empty result.
func (r *Retriever) Retrieve(ctx context.Context, query chunkmodel.Query) ([]chunkmodel.ScoredChunk, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	topK := query.TopK
	if topK < 1 {
		topK = config.DefaultTopK
	} else if topK > config.MaxTopK {
		topK = config.MaxTopK
	}

	start := time.Now()
	vector, err := r.embedder.GetEmbedding(ctx, query.Text)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Error("Query embedding failed", "error", err)
		return nil, err
	}

	start = time.Now()
	matches, err := r.store.Query(ctx, r.collection, vector, uint64(topK))
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, err
	}

	log.Debug("Retrieved chunks", "topK", topK, "matches", len(matches))
	return matches, nil
}
