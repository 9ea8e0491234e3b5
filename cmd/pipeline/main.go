package main

import (
	"context"
	"flag"
	"os"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/index"
	"github.com/meridianhomes/homechat/internal/pipeline/corpus"
	"github.com/meridianhomes/homechat/internal/pipeline/enrich"
	"github.com/meridianhomes/homechat/internal/pipeline/extract"
	"github.com/meridianhomes/homechat/internal/rag/embedding"
	"github.com/meridianhomes/homechat/internal/rag/embedding/googleembedding"
	"github.com/meridianhomes/homechat/internal/rag/embedding/openaiembedding"
	"github.com/meridianhomes/homechat/internal/rag/llm"
	"github.com/meridianhomes/homechat/internal/rag/llm/gemini"
	"github.com/meridianhomes/homechat/internal/rag/llm/openaillm"
	"github.com/meridianhomes/homechat/internal/rag/vectordb/qdrantdb"
	"github.com/meridianhomes/homechat/pkg/applog"
)

var (
	dataDir     string
	catalogPath string
	skipEnrich  bool
)

func initProvider(ctx context.Context) llm.Provider {
	if config.LLMBackend == "openai" {
		return openaillm.GetOpenAIClient(config.OpenAIModelName, os.Getenv("OPENAI_API_KEY"))
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, os.Getenv("GOOGLE_API_KEY"))
}

func initEmbedder(ctx context.Context) embedding.Embedder {
	if config.LLMBackend == "openai" {
		return openaiembedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, os.Getenv("OPENAI_API_KEY"))
	}
	return googleembedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, os.Getenv("GOOGLE_API_KEY"))
}

func main() {
	applog.Init(config.IS_PROD)
	var logger = applog.NewLogger("pipeline")

	flag.StringVar(&dataDir, "data", config.DefaultDataDir, "directory of source documents")
	flag.StringVar(&catalogPath, "catalog", config.DefaultCatalogPath, "where to write the chunk catalog")
	flag.BoolVar(&skipEnrich, "skip-enrich", false, "use deterministic metadata instead of the model")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	documents, err := extract.LoadDocuments(dataDir)
	if err != nil {
		logger.Error("Could not load documents", "dir", dataDir, "error", err)
		os.Exit(1)
	}
	if len(documents) == 0 {
		logger.Error("No readable documents found", "dir", dataDir)
		os.Exit(1)
	}
	logger.Info("Loaded documents", "count", len(documents))

	var enricher corpus.Enricher
	if skipEnrich {
		logger.Info("Enrichment disabled, using fallback metadata")
		enricher = enrich.FallbackOnly{}
	} else {
		provider := initProvider(serviceContext)
		if provider == nil {
			logger.Error("LLM provider failed to initialize")
			os.Exit(1)
		}
		enricher = enrich.New(provider)
	}

	catalog, err := corpus.NewBuilder(enricher).Build(serviceContext, documents, corpus.NewIDSequence())
	if err != nil {
		logger.Error("Corpus build failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Corpus built", "chunks", len(catalog))

	if err := corpus.SaveCatalog(catalogPath, catalog); err != nil {
		logger.Error("Could not write catalog", "path", catalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("Catalog written", "path", catalogPath)

	vectorDB := qdrantdb.GetQdrantClient(serviceContext)
	embeddingService := initEmbedder(serviceContext)
	if vectorDB == nil || embeddingService == nil {
		logger.Error("Indexing services failed to initialize")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil)
		os.Exit(1)
	}

	if err := index.NewLoader(vectorDB, embeddingService).Load(serviceContext, catalog); err != nil {
		logger.Error("Index load failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Pipeline complete", "chunks", len(catalog), "collection", config.KnowledgeCollection)
}
