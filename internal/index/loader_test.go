package index

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/pipeline/corpus"
)

type mockStore struct {
	recreated  []string
	entries    map[int]chunkmodel.EnrichedChunk
	onRecreate func(ctx context.Context, collection string, dimension uint64) error
	onUpsert   func(ctx context.Context, collection string, chunks []chunkmodel.EnrichedChunk, vectors [][]float32) error
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[int]chunkmodel.EnrichedChunk)}
}

func (m *mockStore) Recreate(ctx context.Context, collection string, dimension uint64) error {
	if m.onRecreate != nil {
		return m.onRecreate(ctx, collection, dimension)
	}
	m.recreated = append(m.recreated, collection)
	m.entries = make(map[int]chunkmodel.EnrichedChunk)
	return nil
}

func (m *mockStore) UpsertBatch(ctx context.Context, collection string, chunks []chunkmodel.EnrichedChunk, vectors [][]float32) error {
	if m.onUpsert != nil {
		return m.onUpsert(ctx, collection, chunks, vectors)
	}
	for _, c := range chunks {
		m.entries[c.Id] = c
	}
	return nil
}

func (m *mockStore) Query(ctx context.Context, collection string, vector []float32, topK uint64) ([]chunkmodel.ScoredChunk, error) {
	return nil, nil
}

func (m *mockStore) Count(ctx context.Context, collection string) (uint64, error) {
	return uint64(len(m.entries)), nil
}

type mockEmbedder struct {
	embedded  []string
	perVector int
	onBatch   func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return make([]float32, m.perVector), nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.onBatch != nil {
		return m.onBatch(ctx, chunks)
	}
	m.embedded = append(m.embedded, chunks...)
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = make([]float32, m.perVector)
	}
	return vectors, nil
}

func sampleCatalog(n int) []chunkmodel.EnrichedChunk {
	catalog := make([]chunkmodel.EnrichedChunk, n)
	for i := range catalog {
		catalog[i] = chunkmodel.EnrichedChunk{
			Id:       i,
			Source:   "guide.pdf",
			Text:     "chunk body",
			Title:    "Title",
			Summary:  "Summary",
			Category: chunkmodel.CategoryGeneral,
		}
	}
	return catalog
}

func TestLoad_ReplacesGenerationAndUpsertsAll(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{perVector: int(config.EmbeddingOutputDimensionality)}

	err := NewLoader(store, embedder).Load(context.Background(), sampleCatalog(150))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(store.recreated) != 1 || store.recreated[0] != config.KnowledgeCollection {
		t.Errorf("Recreate calls: %v", store.recreated)
	}
	if len(store.entries) != 150 {
		t.Errorf("Index holds %d entries, want 150", len(store.entries))
	}
	for id := 0; id < 150; id++ {
		if _, ok := store.entries[id]; !ok {
			t.Errorf("Missing id %d in index", id)
		}
	}
}

func TestLoad_EmbedsCompositeText(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{perVector: int(config.EmbeddingOutputDimensionality)}

	catalog := []chunkmodel.EnrichedChunk{{
		Id: 0, Source: "a.pdf", Text: "the raw text", Title: "The Title", Summary: "The Summary",
	}}
	if err := NewLoader(store, embedder).Load(context.Background(), catalog); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(embedder.embedded) != 1 {
		t.Fatalf("Embedded %d texts", len(embedder.embedded))
	}
	if embedder.embedded[0] != "The Title The Summary the raw text" {
		t.Errorf("Composite embedding text got %q", embedder.embedded[0])
	}
}

func TestLoad_RebuildTwiceSameMembership(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{perVector: int(config.EmbeddingOutputDimensionality)}
	loader := NewLoader(store, embedder)
	catalog := sampleCatalog(42)

	if err := loader.Load(context.Background(), catalog); err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	first := make(map[int]chunkmodel.EnrichedChunk, len(store.entries))
	for id, c := range store.entries {
		first[id] = c
	}

	if err := loader.Load(context.Background(), catalog); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
	if len(store.entries) != len(first) {
		t.Fatalf("Membership changed: %d vs %d", len(store.entries), len(first))
	}
	for id, c := range store.entries {
		if !reflect.DeepEqual(first[id], c) {
			t.Errorf("Payload for id %d changed across rebuilds", id)
		}
	}
}

func TestLoad_DimensionMismatchIsFatal(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{perVector: 8} // wrong size

	err := NewLoader(store, embedder).Load(context.Background(), sampleCatalog(3))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestLoad_RejectsCorruptCatalog(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{perVector: int(config.EmbeddingOutputDimensionality)}

	catalog := sampleCatalog(3)
	catalog[2].Id = 7 // gap

	err := NewLoader(store, embedder).Load(context.Background(), catalog)
	if !errors.Is(err, corpus.ErrCatalogCorrupt) {
		t.Errorf("err = %v, want ErrCatalogCorrupt", err)
	}
	if len(store.recreated) != 0 {
		t.Error("Index must not be touched when the catalog is corrupt")
	}
}

func TestLoad_EmbeddingFailureAborts(t *testing.T) {
	store := newMockStore()
	embedder := &mockEmbedder{
		onBatch: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("service down")
		},
	}

	err := NewLoader(store, embedder).Load(context.Background(), sampleCatalog(2))
	if err == nil || !strings.Contains(err.Error(), "embedding batch failed") {
		t.Errorf("err = %v, want embedding batch failure", err)
	}
}
