package qdrantdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/pkg/applog"
)

var logger *applog.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantClient returns the process-wide Qdrant client, or nil if it
// could not be created.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = applog.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// Recreate drops any existing collection of that name and creates a
// fresh one for the given dimensionality with cosine distance. Readers
// hitting the collection mid-rebuild see the brief unavailability
// window; there is no dual-generation scheme.
func (db *ClientHolder) Recreate(ctx context.Context, collection string, dimension uint64) error {
	if collection == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		if err := db.QObj.DeleteCollection(ctx, collection); err != nil {
			return fmt.Errorf("deleting previous index generation: %w", err)
		}
		logger.Info("Deleted previous index generation", "collection", collection)
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	logger.Info("Created collection", "collection", collection, "dimension", dimension)
	return nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collection string, chunks []chunkmodel.EnrichedChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		keywords := make([]any, len(chunk.Keywords))
		for j, k := range chunk.Keywords {
			keywords[j] = k
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(chunk.Id)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":       chunk.Text,
				"title":      chunk.Title,
				"summary":    chunk.Summary,
				"keywords":   keywords,
				"category":   string(chunk.Category),
				"importance": int64(chunk.Importance),
				"source":     chunk.Source,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, collection string, vector []float32, topK uint64) ([]chunkmodel.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(topK),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]chunkmodel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, chunkmodel.ScoredChunk{
			Chunk: payloadToChunk(hit),
			Score: hit.Score,
		})
	}
	loggr.Debug("Qdrant query done", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) Count(ctx context.Context, collection string) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
}

func payloadToChunk(hit *qdrant.ScoredPoint) chunkmodel.EnrichedChunk {
	var keywords []string
	if list := hit.Payload["keywords"].GetListValue(); list != nil {
		for _, v := range list.Values {
			keywords = append(keywords, v.GetStringValue())
		}
	}

	return chunkmodel.EnrichedChunk{
		Id:         int(hit.Id.GetNum()),
		Source:     hit.Payload["source"].GetStringValue(),
		Text:       hit.Payload["text"].GetStringValue(),
		Title:      hit.Payload["title"].GetStringValue(),
		Summary:    hit.Payload["summary"].GetStringValue(),
		Keywords:   keywords,
		Category:   chunkmodel.Category(hit.Payload["category"].GetStringValue()),
		Importance: int(hit.Payload["importance"].GetIntegerValue()),
	}
}
