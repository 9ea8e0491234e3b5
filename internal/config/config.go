package config

import (
	"time"
)

const (
	IS_PROD      = false
	TRACE_ID_KEY = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	ChunkSizeWords    = 400
	ChunkOverlapWords = 50
	MinChunkChars     = 50

	//enrichment
	EnrichMaxOutputTokens   int32   = 300
	EnrichTemperature       float32 = 0.2
	EnrichCallsPerSecond            = 2 //pacing for the external LLM quota
	FallbackTitle                   = "General Information"
	FallbackSummaryChars            = 100
	FallbackImportance              = 5

	//vector index
	EmbeddingOutputDimensionality int32 = 1536
	KnowledgeCollection                 = "meridian-knowledge"
	UpsertBatchSize                     = 100

	//retrieval
	DefaultTopK = 3
	MaxTopK     = 7

	//answering
	AnswerMaxOutputTokens int32   = 400
	AnswerTemperature     float32 = 0.2

	AssistantPersona = "You are a friendly and professional AI assistant for Meridian Homes Australia. " +
		"Answer the customer's question using ONLY the provided context. " +
		"Be warm, helpful and concise. Use dot points where appropriate."
	InContextFallbackLine = "I don't have that information. Please contact Meridian Homes on 1300 555 024 or visit meridianhomes.com.au"
	RefusalMessage        = "No relevant information found. Please contact Meridian Homes on 1300 555 024."
	AnswerErrorPrefix     = "Something went wrong answering that: "

	//catalog
	DefaultCatalogPath = "corpus/chunks.json"
	DefaultDataDir     = "data"

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//llm / embeddings
	LLMBackend           = "gemini" //or "openai"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisSessionStore    = 0
	RedisSessionStoreTTL = 24 * time.Hour
)

// QuickQuestions are surfaced to clients starting a fresh chat.
var QuickQuestions = []string{
	"How long does it take to build a home?",
	"What deposit do I need to pay?",
	"Why should I choose Meridian Homes?",
	"What's included in the base price?",
}
