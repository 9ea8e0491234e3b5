package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/metrics"
	"github.com/meridianhomes/homechat/internal/rag/llm"
	"github.com/meridianhomes/homechat/pkg/applog"
)

const promptTemplate = `CONTEXT:
%s

QUESTION:
%s

ANSWER:`

// ChunkRetriever is what the composer needs from the retrieval side.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query chunkmodel.Query) ([]chunkmodel.ScoredChunk, error)
}

// Composer turns a retrieval result into a conversation update. Every
// invocation ends in exactly one of three outcomes: a grounded answer,
// the fixed refusal, or a visible error turn. Nothing escapes past this
// boundary; the caller always receives a well-formed history.
type Composer struct {
	retriever ChunkRetriever
	provider  llm.Provider
	logger    *applog.Logger
}

func NewComposer(retriever ChunkRetriever, provider llm.Provider) *Composer {
	return &Composer{
		retriever: retriever,
		provider:  provider,
		logger:    applog.NewLogger("AnswerComposer"),
	}
}

// Answer appends a user turn and an assistant turn for the query and
// returns the updated history plus the source summary (empty unless
// requested).
func (c *Composer) Answer(ctx context.Context, query chunkmodel.Query, history []chatmodel.Turn) ([]chatmodel.Turn, string) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	matches, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		metrics.CountAnswer("error")
		return appendTurns(history, query.Text, config.AnswerErrorPrefix+err.Error()), ""
	}

	if len(matches) == 0 {
		log.Info("No grounding material, refusing")
		metrics.CountAnswer("refused")
		return appendTurns(history, query.Text, config.RefusalMessage), ""
	}

	prompt := fmt.Sprintf(promptTemplate, buildContextBlock(matches), query.Text)

	start := time.Now()
	generated, err := c.provider.Generate(ctx, prompt, llm.Options{
		System:          systemInstruction(),
		Temperature:     config.AnswerTemperature,
		MaxOutputTokens: config.AnswerMaxOutputTokens,
	})
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		log.Error("Generation failed", "error", err)
		metrics.CountAnswer("error")
		return appendTurns(history, query.Text, config.AnswerErrorPrefix+err.Error()), ""
	}

	metrics.CountAnswer("grounded")
	sources := ""
	if query.WantSources {
		sources = buildSourceSummary(matches)
	}
	return appendTurns(history, query.Text, generated), sources
}

func appendTurns(history []chatmodel.Turn, question, answer string) []chatmodel.Turn {
	return append(history,
		chatmodel.UserTurn(question),
		chatmodel.AssistantTurn(answer),
	)
}

// buildContextBlock joins the retrieved chunks in retrieval order so
// the model sees the most relevant material first.
func buildContextBlock(matches []chunkmodel.ScoredChunk) string {
	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("[%s] %s\n%s", m.Chunk.Category, m.Chunk.Title, m.Chunk.Text)
	}
	return strings.Join(blocks, "\n\n")
}

func systemInstruction() string {
	return config.AssistantPersona +
		` If the answer is not in the context, say "` + config.InContextFallbackLine + `"`
}

func buildSourceSummary(matches []chunkmodel.ScoredChunk) string {
	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("%s\n%s | %s | importance %d/10",
			m.Chunk.Title, m.Chunk.Source, m.Chunk.Category, m.Chunk.Importance)
	}
	return strings.Join(blocks, "\n\n")
}
