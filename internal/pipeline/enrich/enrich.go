package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/rag/llm"
	"github.com/meridianhomes/homechat/pkg/applog"
)

const promptTemplate = `You are an intelligent document analyst for Meridian Homes.
Analyze the following text chunk and return a JSON object with these exact fields:
- title: A short descriptive title (max 10 words)
- summary: A concise summary (max 50 words)
- keywords: A list of 5 important keywords
- category: One of [%s]
- importance: A score from 1-10 indicating usefulness for customer queries

Text chunk:
%s

Respond ONLY with a valid JSON object. No explanation, no markdown, no extra text.`

// Enricher derives structured metadata for raw chunks through the LLM.
// Calls are paced to respect the provider's throughput quota, and any
// failure degrades to deterministic fallback metadata instead of
// halting the pipeline.
type Enricher struct {
	provider llm.Provider
	pacer    *rate.Limiter
	logger   *applog.Logger
}

func New(provider llm.Provider) *Enricher {
	return &Enricher{
		provider: provider,
		pacer:    rate.NewLimiter(rate.Limit(config.EnrichCallsPerSecond), 1),
		logger:   applog.NewLogger("Enricher"),
	}
}

// FallbackOnly applies the deterministic metadata to every chunk
// without touching the model. Used by the pipeline's -skip-enrich mode.
type FallbackOnly struct{}

func (FallbackOnly) Enrich(ctx context.Context, raw chunkmodel.RawChunk) chunkmodel.Metadata {
	return Fallback(raw.Text)
}

// Enrich never fails: on any call or parse error the fallback metadata
// is returned so one malformed chunk cannot stop a corpus build.
func (e *Enricher) Enrich(ctx context.Context, raw chunkmodel.RawChunk) chunkmodel.Metadata {
	if err := e.pacer.Wait(ctx); err != nil {
		e.logger.Error("Enrichment pacing interrupted", "error", err)
		return Fallback(raw.Text)
	}

	prompt := buildPrompt(raw.Text)
	response, err := e.provider.Generate(ctx, prompt, llm.Options{
		Temperature:     config.EnrichTemperature,
		MaxOutputTokens: config.EnrichMaxOutputTokens,
	})
	if err != nil {
		e.logger.Warn("Enrichment call failed, using fallback", "source", raw.DocumentSource, "chunk", raw.SequenceIndex, "error", err)
		return Fallback(raw.Text)
	}

	meta, err := parseMetadata(response)
	if err != nil {
		e.logger.Warn("Enrichment response unparsable, using fallback", "source", raw.DocumentSource, "chunk", raw.SequenceIndex, "error", err)
		return Fallback(raw.Text)
	}
	return meta
}

// Fallback is the deterministic metadata applied when enrichment cannot
// run. It degrades retrieval quality, never availability.
func Fallback(chunkText string) chunkmodel.Metadata {
	summary := chunkText
	// first N characters, not bytes, so multibyte text stays valid UTF-8
	if runes := []rune(summary); len(runes) > config.FallbackSummaryChars {
		summary = string(runes[:config.FallbackSummaryChars])
	}
	return chunkmodel.Metadata{
		Title:      config.FallbackTitle,
		Summary:    summary,
		Keywords:   []string{},
		Category:   chunkmodel.CategoryGeneral,
		Importance: config.FallbackImportance,
	}
}

func buildPrompt(chunkText string) string {
	names := make([]string, len(chunkmodel.AllCategories))
	for i, c := range chunkmodel.AllCategories {
		names[i] = string(c)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(names, ", "), chunkText)
}

func parseMetadata(response string) (chunkmodel.Metadata, error) {
	cleaned := stripFences(response)

	var decoded struct {
		Title      string   `json:"title"`
		Summary    string   `json:"summary"`
		Keywords   []string `json:"keywords"`
		Category   string   `json:"category"`
		Importance int      `json:"importance"`
	}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return chunkmodel.Metadata{}, fmt.Errorf("decoding metadata: %w", err)
	}
	if decoded.Title == "" {
		return chunkmodel.Metadata{}, fmt.Errorf("metadata missing title")
	}

	importance := decoded.Importance
	if importance < 1 {
		importance = 1
	} else if importance > 10 {
		importance = 10
	}
	keywords := decoded.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return chunkmodel.Metadata{
		Title:      decoded.Title,
		Summary:    decoded.Summary,
		Keywords:   keywords,
		Category:   chunkmodel.ParseCategory(decoded.Category),
		Importance: importance,
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
