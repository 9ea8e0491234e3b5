package corpus

import (
	"context"
	"sort"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/pipeline/segment"
	"github.com/meridianhomes/homechat/pkg/applog"
)

// IDSequence hands out catalog ids. It is deliberately not thread-safe:
// id allocation is a single serialized sequence, and callers wanting
// concurrent enrichment must serialize around it themselves.
type IDSequence struct {
	next int
}

func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

func (s *IDSequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Enricher is the effectful half of the pipeline; the segmenter stays a
// pure function so the two can be tested independently.
type Enricher interface {
	Enrich(ctx context.Context, raw chunkmodel.RawChunk) chunkmodel.Metadata
}

type Builder struct {
	enricher Enricher
	logger   *applog.Logger
}

func NewBuilder(enricher Enricher) *Builder {
	return &Builder{
		enricher: enricher,
		logger:   applog.NewLogger("CorpusBuilder"),
	}
}

// Build segments and enriches every document and assigns each chunk the
// next unused global id. Documents are processed in sorted source order
// so rebuilding against an unchanged corpus reproduces identical ids.
func (b *Builder) Build(ctx context.Context, documents []chunkmodel.Document, ids *IDSequence) ([]chunkmodel.EnrichedChunk, error) {
	ordered := make([]chunkmodel.Document, len(documents))
	copy(ordered, documents)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Source < ordered[j].Source })

	var catalog []chunkmodel.EnrichedChunk
	for _, doc := range ordered {
		rawChunks, err := segment.Segment(doc, config.ChunkSizeWords, config.ChunkOverlapWords, config.MinChunkChars)
		if err != nil {
			return nil, err
		}
		b.logger.Info("Processing document", "source", doc.Source, "rawChunks", len(rawChunks))

		for _, raw := range rawChunks {
			meta := b.enricher.Enrich(ctx, raw)
			catalog = append(catalog, chunkmodel.EnrichedChunk{
				Id:         ids.Next(),
				Source:     raw.DocumentSource,
				Text:       raw.Text,
				Title:      meta.Title,
				Summary:    meta.Summary,
				Keywords:   meta.Keywords,
				Category:   meta.Category,
				Importance: meta.Importance,
			})
		}
	}

	b.logger.Info("Corpus build complete", "documents", len(ordered), "chunks", len(catalog))
	return catalog, nil
}
