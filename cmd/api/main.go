package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/handlers"
	"github.com/meridianhomes/homechat/internal/rag/answer"
	"github.com/meridianhomes/homechat/internal/rag/embedding"
	"github.com/meridianhomes/homechat/internal/rag/embedding/googleembedding"
	"github.com/meridianhomes/homechat/internal/rag/embedding/openaiembedding"
	"github.com/meridianhomes/homechat/internal/rag/llm"
	"github.com/meridianhomes/homechat/internal/rag/llm/gemini"
	"github.com/meridianhomes/homechat/internal/rag/llm/openaillm"
	"github.com/meridianhomes/homechat/internal/rag/retrieve"
	"github.com/meridianhomes/homechat/internal/rag/vectordb/qdrantdb"
	"github.com/meridianhomes/homechat/internal/server"
	"github.com/meridianhomes/homechat/internal/session"
	"github.com/meridianhomes/homechat/pkg/applog"
)

var listenAddr string

func initBackends(ctx context.Context) (llm.Provider, embedding.Embedder) {
	if config.LLMBackend == "openai" {
		apikey := os.Getenv("OPENAI_API_KEY")
		return openaillm.GetOpenAIClient(config.OpenAIModelName, apikey),
			openaiembedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, apikey)
	}
	apikey := os.Getenv("GOOGLE_API_KEY")
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, apikey),
		googleembedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, apikey)
}

func main() {
	applog.Init(config.IS_PROD)
	var logger = applog.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	var sessions session.Store
	if redisSessions := session.GetRedisSessionStore(serviceContext); redisSessions != nil {
		sessions = redisSessions
	} else {
		logger.Error("Redis store is offline, conversations will not survive restarts")
		sessions = session.InitMemoryStore()
	}

	vectorDB := qdrantdb.GetQdrantClient(serviceContext)
	llmProvider, embeddingService := initBackends(serviceContext)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	retriever := retrieve.New(embeddingService, vectorDB)
	composer := answer.NewComposer(retriever, llmProvider)
	handlers.Init(composer, sessions)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
