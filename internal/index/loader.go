package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/metrics"
	"github.com/meridianhomes/homechat/internal/pipeline/corpus"
	"github.com/meridianhomes/homechat/internal/rag/embedding"
	"github.com/meridianhomes/homechat/internal/rag/vectordb"
	"github.com/meridianhomes/homechat/pkg/applog"
)

// ErrDimensionMismatch means the embedding service returned a vector
// that does not match the collection's configured dimensionality. That
// is a configuration fault and must abort the load, never be retried
// per entry.
var ErrDimensionMismatch = errors.New("embedding dimensionality does not match index configuration")

type Loader struct {
	store      vectordb.Store
	embedder   embedding.Embedder
	collection string
	dimension  int
	logger     *applog.Logger
}

func NewLoader(store vectordb.Store, embedder embedding.Embedder) *Loader {
	return &Loader{
		store:      store,
		embedder:   embedder,
		collection: config.KnowledgeCollection,
		dimension:  int(config.EmbeddingOutputDimensionality),
		logger:     applog.NewLogger("IndexLoader"),
	}
}

// Load replaces the whole index generation with the given catalog:
// delete, recreate, then embed and upsert every chunk. There is no
// incremental path. Queries arriving mid-load may see a missing or
// partially populated collection.
func (l *Loader) Load(ctx context.Context, catalog []chunkmodel.EnrichedChunk) error {
	if err := corpus.VerifyCatalog(catalog); err != nil {
		return err
	}

	if err := l.store.Recreate(ctx, l.collection, uint64(l.dimension)); err != nil {
		return err
	}

	for start := 0; start < len(catalog); start += config.UpsertBatchSize {
		end := start + config.UpsertBatchSize
		if end > len(catalog) {
			end = len(catalog)
		}
		if err := l.loadBatch(ctx, catalog[start:end]); err != nil {
			return err
		}
		l.logger.Debug("Upserted batch", "from", start, "to", end)
	}

	if err := l.verifyMembership(ctx, len(catalog)); err != nil {
		return err
	}

	metrics.SetIndexedChunks(len(catalog))
	l.logger.Info("Index load complete", "collection", l.collection, "chunks", len(catalog))
	return nil
}

func (l *Loader) loadBatch(ctx context.Context, batch []chunkmodel.EnrichedChunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.EmbeddingText()
	}

	vectors, err := l.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(batch))
	}
	for i, v := range vectors {
		if len(v) != l.dimension {
			return fmt.Errorf("%w: chunk %d got %d, want %d", ErrDimensionMismatch, batch[i].Id, len(v), l.dimension)
		}
	}

	if err := l.store.UpsertBatch(ctx, l.collection, batch, vectors); err != nil {
		return fmt.Errorf("upserting batch: %w", err)
	}
	return nil
}

// verifyMembership is the catalog/index join check: every catalog id
// must have landed in the index, nothing more.
func (l *Loader) verifyMembership(ctx context.Context, want int) error {
	count, err := l.store.Count(ctx, l.collection)
	if err != nil {
		return fmt.Errorf("counting index entries: %w", err)
	}
	if int(count) != want {
		return fmt.Errorf("index holds %d entries, catalog holds %d", count, want)
	}
	return nil
}
